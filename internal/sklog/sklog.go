// Package sklog is a severity-leveled logging facade used throughout
// this service instead of calling the log package directly, so the
// backend (currently a plain stdlib logger writing to stderr) can be
// swapped without touching call sites.
package sklog

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
)

const (
	DEBUG    = "DEBUG"
	INFO     = "INFO"
	NOTICE   = "NOTICE"
	WARNING  = "WARNING"
	ERROR    = "ERROR"
	CRITICAL = "CRITICAL"
	ALERT    = "ALERT"
)

// MetricsCallback is invoked once per log call with the severity seen,
// letting callers wire up an "errors logged" counter without sklog
// importing a metrics package directly.
type MetricsCallback func(severity string)

var severityRank = map[string]int{
	DEBUG: 0, INFO: 1, NOTICE: 2, WARNING: 3, ERROR: 4, CRITICAL: 5, ALERT: 6,
}

var (
	sawLogWithSeverity MetricsCallback = func(string) {}

	std = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)

	minSeverity = DEBUG
)

// SetMetricsCallback installs a callback invoked on every log call.
func SetMetricsCallback(cb MetricsCallback) {
	if cb == nil {
		cb = func(string) {}
	}
	sawLogWithSeverity = cb
}

// SetMinSeverity sets the minimum severity emitted; calls below it are
// still counted via MetricsCallback but don't reach stderr. Unknown
// values are treated as DEBUG (log everything), matching cmd/vortex-config's
// --log-level bootstrap flag.
func SetMinSeverity(severity string) {
	if _, ok := severityRank[severity]; !ok {
		severity = DEBUG
	}
	minSeverity = severity
}

func Debug(msg ...interface{})            { emit(0, DEBUG, fmt.Sprint(msg...)) }
func Debugf(format string, v ...interface{}) { emit(0, DEBUG, fmt.Sprintf(format, v...)) }
func Debugln(msg ...interface{})          { emit(0, DEBUG, fmt.Sprintln(msg...)) }

func Info(msg ...interface{})             { emit(0, INFO, fmt.Sprint(msg...)) }
func Infof(format string, v ...interface{}) { emit(0, INFO, fmt.Sprintf(format, v...)) }
func Infoln(msg ...interface{})           { emit(0, INFO, fmt.Sprintln(msg...)) }

func Warning(msg ...interface{})             { emit(0, WARNING, fmt.Sprint(msg...)) }
func Warningf(format string, v ...interface{}) { emit(0, WARNING, fmt.Sprintf(format, v...)) }
func Warningln(msg ...interface{})           { emit(0, WARNING, fmt.Sprintln(msg...)) }

func Error(msg ...interface{})             { emit(0, ERROR, fmt.Sprint(msg...)) }
func Errorf(format string, v ...interface{}) { emit(0, ERROR, fmt.Sprintf(format, v...)) }
func Errorln(msg ...interface{})           { emit(0, ERROR, fmt.Sprintln(msg...)) }

// Fatal logs at ALERT severity and terminates the process, mirroring
// the teacher's sklog.Fatal* behavior for unrecoverable startup errors.
func Fatal(msg ...interface{}) {
	emit(0, ALERT, fmt.Sprint(msg...))
	os.Exit(1)
}

func Fatalf(format string, v ...interface{}) {
	emit(0, ALERT, fmt.Sprintf(format, v...))
	os.Exit(1)
}

func emit(depthOffset int, severity, payload string) {
	sawLogWithSeverity(severity)
	if severityRank[severity] < severityRank[minSeverity] {
		return
	}
	stack := CallStack(1, 3+depthOffset)
	loc := "???:1"
	if len(stack) > 0 {
		loc = stack[0].String()
	}
	std.Printf("%s %s %s", severity, loc, payload)
}

type StackTrace struct {
	File string
	Line int
}

func (st StackTrace) String() string {
	return fmt.Sprintf("%s:%d", st.File, st.Line)
}

// CallStack returns up to height stack frames starting at startAt
// (1 = caller of CallStack), trimming file paths to their base name.
func CallStack(height, startAt int) []StackTrace {
	stack := make([]StackTrace, 0, height)
	for i := 0; i < height; i++ {
		_, file, line, ok := runtime.Caller(startAt + i)
		if !ok {
			file = "???"
			line = 1
		} else if slash := strings.LastIndex(file, "/"); slash >= 0 {
			file = file[slash+1:]
		}
		stack = append(stack, StackTrace{File: file, Line: line})
	}
	return stack
}
