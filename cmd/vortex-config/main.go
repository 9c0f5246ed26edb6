// Command vortex-config serves Spring-Cloud-Config-compatible
// application configuration backed by a Git repository.
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/cburgosro9303/vortex-config/internal/bootstrap"
	"github.com/cburgosro9303/vortex-config/internal/cache"
	"github.com/cburgosro9303/vortex-config/internal/common"
	"github.com/cburgosro9303/vortex-config/internal/configsource"
	"github.com/cburgosro9303/vortex-config/internal/gitrepo"
	"github.com/cburgosro9303/vortex-config/internal/httpserver"
	"github.com/cburgosro9303/vortex-config/internal/metricsutil"
	"github.com/cburgosro9303/vortex-config/internal/refresh"
	"github.com/cburgosro9303/vortex-config/internal/reposync"
	"github.com/cburgosro9303/vortex-config/internal/resolver"
	"github.com/cburgosro9303/vortex-config/internal/sklog"
)

const appName = "vortex-config"

var (
	overridesFile string
	portFlag      string
	logLevelFlag  string
)

func main() {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Spring-Cloud-Config-compatible HTTP configuration server",
		RunE:  run,
	}
	cmd.PersistentFlags().StringVar(&overridesFile, "config", "", "Path to an optional YAML/JSON overrides file layered over the environment.")
	cmd.PersistentFlags().StringVar(&portFlag, "port", "", "Overrides VORTEX_PORT when set.")
	cmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Minimum severity to log (DEBUG, INFO, NOTICE, WARNING, ERROR, CRITICAL, ALERT).")

	if err := cmd.Execute(); err != nil {
		sklog.Fatalf("%s: %s", appName, err)
	}
}

func run(_ *cobra.Command, _ []string) error {
	cfg, err := bootstrap.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if overridesFile != "" {
		if err := cfg.ApplyOverridesFile(overridesFile); err != nil {
			return fmt.Errorf("applying overrides file %s: %w", overridesFile, err)
		}
	}
	if portFlag != "" {
		cfg.Port = portFlag
	}

	level := logLevelFlag
	if level == "" {
		level = sklog.INFO
	}
	if err := common.InitWith(appName, common.LogLevelOpt(level)); err != nil {
		return fmt.Errorf("initializing process: %w", err)
	}

	repo := gitrepo.New(gitrepo.Config{
		URI:       cfg.GitURI,
		LocalPath: cfg.GitLocalPath,
		Username:  cfg.GitUsername,
		Password:  cfg.GitPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := repo.EnsureCloned(ctx); err != nil {
		cancel()
		return fmt.Errorf("cloning %s: %w", cfg.GitURI, err)
	}
	cancel()

	state := reposync.New()
	source := configsource.NewGitSource(configsource.GitSourceConfig{
		Repository:   repo,
		Resolver:     resolver.New(repo.LocalPath(), cfg.GitSearchPaths),
		State:        state,
		DefaultLabel: cfg.GitDefaultLabel,
	})

	metrics := metricsutil.New()

	var c *cache.Cache
	if cfg.CacheEnabled {
		c, err = cache.New(cache.Config{
			TTL:         time.Duration(cfg.CacheTTLSeconds) * time.Second,
			MaxCapacity: cfg.CacheMaxCapacity,
		}, metrics.CacheRecorder())
		if err != nil {
			return fmt.Errorf("constructing cache: %w", err)
		}
		c.Start()
	}

	scheduler := refresh.NewScheduler(source, state, refresh.Config{})
	scheduler.Start()

	srv := httpserver.NewServer(source, c, metrics)

	httpSrv := &http.Server{
		Addr:         cfg.Host + ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	common.AtExit(func() {
		scheduler.Stop()
		if c != nil {
			c.Stop()
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			sklog.Errorf("%s: error during shutdown: %s", appName, err)
		}
	})

	sklog.Infof("%s: listening on %s", appName, httpSrv.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}
