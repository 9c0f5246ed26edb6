// Package gitrepo implements the Git-backed repository lifecycle: an
// idempotent clone, fetch, and reference checkout driven through the
// system git binary via internal/executil, with FSM state (NotCloned,
// Cloning, Ready, Updating, Error) serialized by a RWMutex.
package gitrepo

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cburgosro9303/vortex-config/internal/executil"
	"github.com/cburgosro9303/vortex-config/internal/gitref"
	"github.com/cburgosro9303/vortex-config/internal/sklog"
	"github.com/cburgosro9303/vortex-config/internal/vortexerr"
)

// FSMState enumerates the repository lifecycle states from spec.md §3.
type FSMState int

const (
	StateNotCloned FSMState = iota
	StateCloning
	StateReady
	StateUpdating
	StateError
)

func (s FSMState) String() string {
	switch s {
	case StateNotCloned:
		return "NotCloned"
	case StateCloning:
		return "Cloning"
	case StateReady:
		return "Ready"
	case StateUpdating:
		return "Updating"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Config configures a Repository.
type Config struct {
	URI       string
	LocalPath string
	Username  string
	Password  string

	CloneTimeout time.Duration
	FetchTimeout time.Duration

	// PoolWorkers sizes the bounded blocking pool offloading subprocess
	// git calls; defaults to 4.
	PoolWorkers int
}

func (c Config) withDefaults() Config {
	if c.CloneTimeout == 0 {
		c.CloneTimeout = 120 * time.Second
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 30 * time.Second
	}
	if c.PoolWorkers == 0 {
		c.PoolWorkers = 4
	}
	return c
}

// Repository wraps a single Git working copy, guarded by a RWMutex for
// FSM-transition serialization per spec.md §5's shared-resource policy.
type Repository struct {
	cfg  Config
	pool *blockingPool

	mu         sync.RWMutex
	state      FSMState
	errMsg     string
	currentRef *gitref.Ref
}

// New constructs a Repository. Its initial state is Ready if a .git
// directory already exists at cfg.LocalPath, else NotCloned.
func New(cfg Config) *Repository {
	cfg = cfg.withDefaults()
	state := StateNotCloned
	if _, err := os.Stat(filepath.Join(cfg.LocalPath, ".git")); err == nil {
		state = StateReady
	}
	return &Repository{
		cfg:   cfg,
		pool:  newBlockingPool(cfg.PoolWorkers),
		state: state,
	}
}

// State returns the current FSM state.
func (r *Repository) State() FSMState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// LocalPath returns the repository's on-disk location.
func (r *Repository) LocalPath() string { return r.cfg.LocalPath }

// EnsureCloned clones the repository if it has never been cloned,
// no-ops if Ready, and fails with Refreshing or SourceUnavailable for
// the other states, per spec.md §4.5.
func (r *Repository) EnsureCloned(ctx context.Context) error {
	r.mu.RLock()
	state := r.state
	errMsg := r.errMsg
	r.mu.RUnlock()

	switch state {
	case StateReady:
		return nil
	case StateNotCloned:
		return r.clone(ctx)
	case StateCloning, StateUpdating:
		return vortexerr.Refreshing()
	case StateError:
		return vortexerr.SourceUnavailable(errMsg)
	default:
		return vortexerr.Git("unknown repository state")
	}
}

func (r *Repository) clone(ctx context.Context) error {
	r.mu.Lock()
	r.state = StateCloning
	r.mu.Unlock()

	sklog.Infof("cloning repository from %s to %s", redactURI(r.cfg.URI), r.cfg.LocalPath)

	err := r.pool.Submit(ctx, func() error {
		return r.cloneBlocking(ctx)
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state = StateError
		r.errMsg = err.Error()
		if executil.IsTimeout(err) {
			return vortexerr.Wrap(vortexerr.KindTimeout, "clone timed out", err)
		}
		return vortexerr.Wrap(vortexerr.KindGit, "clone failed", err)
	}
	r.state = StateReady
	sklog.Infof("repository cloned successfully")
	return nil
}

func (r *Repository) cloneBlocking(ctx context.Context) error {
	if parent := filepath.Dir(r.cfg.LocalPath); parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("creating parent directory: %w", err)
		}
	}
	uri := r.authenticatedURI()
	return executil.Run(ctx, &executil.Command{
		Name:    "git",
		Args:    []string{"clone", "--depth", "1", uri, r.cfg.LocalPath},
		Timeout: r.cfg.CloneTimeout,
	})
}

// Fetch fetches all refs with pruning. Requires Ready; transitions to
// Updating for the duration. A fetch failure is transient and does not
// poison the FSM: state reverts to Ready either way.
func (r *Repository) Fetch(ctx context.Context) error {
	if err := r.EnsureCloned(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	if r.state == StateUpdating {
		r.mu.Unlock()
		return vortexerr.Refreshing()
	}
	r.state = StateUpdating
	r.mu.Unlock()

	sklog.Infof("fetching updates for repository at %s", r.cfg.LocalPath)
	err := r.pool.Submit(ctx, func() error {
		return executil.Run(ctx, &executil.Command{
			Name:    "git",
			Args:    []string{"fetch", "--all", "--prune"},
			Dir:     r.cfg.LocalPath,
			Timeout: r.cfg.FetchTimeout,
		})
	})

	r.mu.Lock()
	r.state = StateReady
	r.mu.Unlock()

	if err != nil {
		sklog.Warningf("fetch failed: %v", err)
		if executil.IsTimeout(err) {
			return vortexerr.Wrap(vortexerr.KindTimeout, "fetch timed out", err)
		}
		return vortexerr.Wrap(vortexerr.KindGit, "fetch failed", err)
	}
	sklog.Infof("repository fetched successfully")
	return nil
}

// Checkout resolves ref to a commit SHA and updates the working tree to
// match, per spec.md §4.5.
func (r *Repository) Checkout(ctx context.Context, ref gitref.Ref) (string, error) {
	if err := r.EnsureCloned(ctx); err != nil {
		return "", err
	}
	if err := gitref.Validate(ref.Name); err != nil {
		return "", vortexerr.LabelNotFound(ref.Name)
	}

	var sha string
	err := r.pool.Submit(ctx, func() error {
		s, err := r.checkoutBlocking(ctx, ref)
		sha = s
		return err
	})
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	rcopy := ref
	r.currentRef = &rcopy
	r.mu.Unlock()
	return sha, nil
}

func (r *Repository) checkoutBlocking(ctx context.Context, ref gitref.Ref) (string, error) {
	switch ref.Kind {
	case gitref.KindBranch:
		err := executil.Run(ctx, &executil.Command{Name: "git", Args: []string{"checkout", ref.Name}, Dir: r.cfg.LocalPath})
		if err != nil {
			if executil.IsTimeout(err) {
				return "", vortexerr.Wrap(vortexerr.KindTimeout, "checkout timed out", err)
			}
			originRef := "origin/" + ref.Name
			err = executil.Run(ctx, &executil.Command{Name: "git", Args: []string{"checkout", "-B", ref.Name, originRef}, Dir: r.cfg.LocalPath})
			if err != nil {
				if executil.IsTimeout(err) {
					return "", vortexerr.Wrap(vortexerr.KindTimeout, "checkout timed out", err)
				}
				return "", vortexerr.LabelNotFound(ref.Name)
			}
		}
	case gitref.KindTag:
		tagRef := "tags/" + ref.Name
		if err := executil.Run(ctx, &executil.Command{Name: "git", Args: []string{"checkout", tagRef}, Dir: r.cfg.LocalPath}); err != nil {
			if executil.IsTimeout(err) {
				return "", vortexerr.Wrap(vortexerr.KindTimeout, "checkout timed out", err)
			}
			return "", vortexerr.LabelNotFound(ref.Name)
		}
	case gitref.KindCommit:
		if err := executil.Run(ctx, &executil.Command{Name: "git", Args: []string{"checkout", ref.Name}, Dir: r.cfg.LocalPath}); err != nil {
			if executil.IsTimeout(err) {
				return "", vortexerr.Wrap(vortexerr.KindTimeout, "checkout timed out", err)
			}
			return "", vortexerr.LabelNotFound(ref.Name)
		}
	}
	return r.headCommitBlocking(ctx)
}

func (r *Repository) headCommitBlocking(ctx context.Context) (string, error) {
	out, err := executil.RunCombinedOutput(ctx, &executil.Command{
		Name: "git",
		Args: []string{"rev-parse", "HEAD"},
		Dir:  r.cfg.LocalPath,
	})
	if err != nil {
		return "", vortexerr.Wrap(vortexerr.KindGit, "failed to resolve HEAD", err)
	}
	return strings.TrimSpace(out), nil
}

// HeadCommit returns the current HEAD commit SHA.
func (r *Repository) HeadCommit(ctx context.Context) (string, error) {
	if err := r.EnsureCloned(ctx); err != nil {
		return "", err
	}
	var sha string
	err := r.pool.Submit(ctx, func() error {
		s, err := r.headCommitBlocking(ctx)
		sha = s
		return err
	})
	return sha, err
}

// CurrentRef returns the last ref passed to Checkout, if any.
func (r *Repository) CurrentRef() (gitref.Ref, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.currentRef == nil {
		return gitref.Ref{}, false
	}
	return *r.currentRef, true
}

func (r *Repository) authenticatedURI() string {
	if r.cfg.Username == "" || r.cfg.Password == "" {
		return r.cfg.URI
	}
	u, err := url.Parse(r.cfg.URI)
	if err != nil {
		return r.cfg.URI
	}
	u.User = url.UserPassword(r.cfg.Username, r.cfg.Password)
	return u.String()
}

func redactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	u.User = nil
	return u.String()
}
