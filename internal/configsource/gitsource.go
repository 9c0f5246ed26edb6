package configsource

import (
	"context"
	"time"

	"github.com/cburgosro9303/vortex-config/internal/gitref"
	"github.com/cburgosro9303/vortex-config/internal/gitrepo"
	"github.com/cburgosro9303/vortex-config/internal/propertysource"
	"github.com/cburgosro9303/vortex-config/internal/reposync"
	"github.com/cburgosro9303/vortex-config/internal/resolver"
	"github.com/cburgosro9303/vortex-config/internal/sklog"
	"github.com/cburgosro9303/vortex-config/internal/vortexerr"
)

// GitSourceConfig configures a GitSource.
type GitSourceConfig struct {
	Repository   *gitrepo.Repository
	Resolver     *resolver.Resolver
	State        *reposync.State
	DefaultLabel string
}

// GitSource is the Git-backed configsource.Source implementation: it
// checks out the requested label and resolves property sources from
// the resulting working tree, per spec.md §4.7/§4.5.
type GitSource struct {
	repository   *gitrepo.Repository
	resolver     *resolver.Resolver
	state        *reposync.State
	defaultLabel string
}

// NewGitSource constructs a GitSource. It does not clone or check out
// anything itself; call Refresh (or let the first Fetch drive
// EnsureCloned/Checkout) to bring the repository up.
func NewGitSource(cfg GitSourceConfig) *GitSource {
	label := cfg.DefaultLabel
	if label == "" {
		label = "main"
	}
	return &GitSource{
		repository:   cfg.Repository,
		resolver:     cfg.Resolver,
		state:        cfg.State,
		defaultLabel: label,
	}
}

func (s *GitSource) Name() string { return "git" }

func (s *GitSource) DefaultLabel() string { return s.defaultLabel }

func (s *GitSource) SupportsRefresh() bool { return true }

// Fetch checks out the query's label (or the source's default) and
// resolves property sources for (application, profiles) from the
// resulting working tree.
func (s *GitSource) Fetch(ctx context.Context, query Query) (*Result, error) {
	label := query.Label
	if label == "" {
		label = s.defaultLabel
	}
	ref := gitref.Parse(label)

	commit, err := s.repository.Checkout(ctx, ref)
	if err != nil {
		return nil, err
	}

	sources, err := s.resolver.Resolve(query.Application, query.Profiles, label)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, vortexerr.ApplicationNotFound(query.Application)
	}

	var list propertysource.List
	for i := len(sources) - 1; i >= 0; i-- {
		src := sources[i]
		src.Priority = int32(len(sources) - 1 - i)
		list.Add(src)
	}

	return &Result{
		Name:            query.Application,
		Profiles:        query.Profiles,
		Label:           label,
		Version:         commit,
		HasVersion:      true,
		PropertySources: list,
	}, nil
}

// HealthCheck reports the source unavailable if the repository's sync
// state carries an outstanding error, and otherwise verifies the
// repository is actually reachable by resolving HEAD.
func (s *GitSource) HealthCheck(ctx context.Context) error {
	if s.state != nil {
		if !s.state.IsHealthy() {
			if lastErr, ok := s.state.LastError(); ok {
				return vortexerr.SourceUnavailable(lastErr)
			}
		}
	}
	if _, err := s.repository.HeadCommit(ctx); err != nil {
		return err
	}
	return nil
}

// Refresh fetches the latest refs and records the resulting HEAD (or
// failure) in the shared sync state, per spec.md §4.8.
func (s *GitSource) Refresh(ctx context.Context) error {
	sklog.Infof("manual refresh requested for git source")

	if err := s.repository.Fetch(ctx); err != nil {
		if s.state != nil {
			s.state.RecordFailure(err.Error())
		}
		return err
	}

	commit, err := s.repository.HeadCommit(ctx)
	if err != nil {
		if s.state != nil {
			s.state.RecordFailure(err.Error())
		}
		return err
	}

	if s.state != nil {
		s.state.RecordSuccess(commit, time.Now())
	}
	sklog.Infof("refresh complete, now at commit %s", shortSHA(commit))
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
