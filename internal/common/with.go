// Package common provides the small slice of the teacher's process-wide
// bootstrap ceremony this server still needs once GCE/Cloud-Logging/
// metrics2/auth are off the table: GOMAXPROCS tuning, signal-driven
// cleanup, and wiring a requested log level into internal/sklog.
package common

import (
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/cburgosro9303/vortex-config/internal/sklog"
)

// Opt represents one piece of process initialization, run in order() order
// across two phases (preinit then init), matching the teacher's shape for
// composing independent startup concerns without hardcoding their order at
// every call site.
type Opt interface {
	order() int
	preinit(appName string) error
	init(appName string) error
}

type optSlice []Opt

func (p optSlice) Len() int           { return len(p) }
func (p optSlice) Less(i, j int) bool { return p[i].order() < p[j].order() }
func (p optSlice) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

// baseInitOpt always runs first: GOMAXPROCS tuning, signal-based cleanup,
// and a uid/gid log line for the record.
type baseInitOpt struct{}

func (b *baseInitOpt) order() int { return 0 }

func (b *baseInitOpt) preinit(appName string) error {
	sklog.Infof("%s: base preinit", appName)
	return nil
}

func (b *baseInitOpt) init(appName string) error {
	runtime.GOMAXPROCS(runtime.NumCPU())
	EnableSignalCleanup()
	sklog.Infof("%s: running as %d:%d", appName, os.Getuid(), os.Getgid())
	return nil
}

// logLevelOpt wires a requested minimum severity into internal/sklog.
type logLevelOpt struct {
	level string
}

// LogLevelOpt sets the process's minimum log severity, e.g. from
// cmd/vortex-config's --log-level flag.
func LogLevelOpt(level string) Opt {
	return &logLevelOpt{level: level}
}

func (o *logLevelOpt) order() int { return 1 }

func (o *logLevelOpt) preinit(appName string) error { return nil }

func (o *logLevelOpt) init(appName string) error {
	sklog.SetMinSeverity(o.level)
	return nil
}

// InitWith runs every Opt's preinit phase, then every Opt's init phase, in
// order() order, failing on the first error either phase returns.
func InitWith(appName string, opts ...Opt) error {
	opts = append(opts, &baseInitOpt{})
	sort.Sort(optSlice(opts))

	for i := 0; i < len(opts)-1; i++ {
		if opts[i].order() == opts[i+1].order() {
			return fmt.Errorf("common: only one Opt of each order is allowed")
		}
	}

	for _, o := range opts {
		if err := o.preinit(appName); err != nil {
			return err
		}
	}
	for _, o := range opts {
		if err := o.init(appName); err != nil {
			return err
		}
	}
	return nil
}

// InitWithMust calls InitWith and terminates the process on failure.
func InitWithMust(appName string, opts ...Opt) {
	if err := InitWith(appName, opts...); err != nil {
		sklog.Fatalf("%s: failed to initialize: %s", appName, err)
	}
}
