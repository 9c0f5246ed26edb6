// Package httpsource implements a configsource.Source that proxies
// fetches to a remote Spring-Cloud-Config-compatible HTTP endpoint,
// retrying transient failures with exponential backoff. It exists
// alongside internal/configsource's Git-backed implementation to prove
// the cache and scheduler depend only on the configsource.Source
// interface, never on Git specifically.
package httpsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/cburgosro9303/vortex-config/internal/configsource"
	"github.com/cburgosro9303/vortex-config/internal/configvalue"
	"github.com/cburgosro9303/vortex-config/internal/propertysource"
	"github.com/cburgosro9303/vortex-config/internal/sklog"
	"github.com/cburgosro9303/vortex-config/internal/vortexerr"
)

// Config configures a Source pointed at an upstream config server.
type Config struct {
	BaseURL      string
	Client       *http.Client
	DefaultLabel string

	// MaxElapsedTime bounds the total time spent retrying a single Fetch.
	// On giving up, Fetch returns the last upstream error; it returns
	// vortexerr.Timeout only when that error is not a vortexerr.Error.
	MaxElapsedTime time.Duration
}

func (c Config) withDefaults() Config {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if c.DefaultLabel == "" {
		c.DefaultLabel = "main"
	}
	if c.MaxElapsedTime == 0 {
		c.MaxElapsedTime = 30 * time.Second
	}
	return c
}

// Source fetches configuration from a remote HTTP config server,
// retrying transient upstream errors via github.com/cenkalti/backoff/v4.
type Source struct {
	cfg Config
}

// New constructs an httpsource.Source.
func New(cfg Config) *Source {
	return &Source{cfg: cfg.withDefaults()}
}

func (s *Source) Name() string { return "http" }

func (s *Source) DefaultLabel() string { return s.cfg.DefaultLabel }

func (s *Source) SupportsRefresh() bool { return false }

// Refresh is a no-op: this source has no local state to bring current,
// every Fetch already talks to the upstream directly.
func (s *Source) Refresh(ctx context.Context) error { return nil }

// Fetch requests `{baseURL}/{app}/{profiles}/{label}` in Spring Cloud
// Config's native JSON response shape, retrying transient failures.
func (s *Source) Fetch(ctx context.Context, query configsource.Query) (*configsource.Result, error) {
	label := query.Label
	if label == "" {
		label = s.cfg.DefaultLabel
	}

	var result *configsource.Result
	operation := func() error {
		r, err := s.doFetch(ctx, query, label)
		if err != nil {
			if verr, ok := vortexerr.As(err); ok && !verr.IsTransient() {
				return backoff.Permanent(err)
			}
			return err
		}
		result = r
		return nil
	}

	policy := backoff.WithContext(s.newBackOff(), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if _, ok := err.(*backoff.PermanentError); ok {
			return nil, errorsUnwrapPermanent(err)
		}
		if verr, ok := vortexerr.As(err); ok {
			return nil, verr
		}
		return nil, vortexerr.Timeout(s.cfg.MaxElapsedTime.Seconds())
	}
	return result, nil
}

func (s *Source) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = s.cfg.MaxElapsedTime
	return b
}

func errorsUnwrapPermanent(err error) error {
	if pe, ok := err.(*backoff.PermanentError); ok {
		return pe.Err
	}
	return err
}

func (s *Source) doFetch(ctx context.Context, query configsource.Query, label string) (*configsource.Result, error) {
	u := s.requestURL(query, label)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, vortexerr.Wrap(vortexerr.KindIo, "building upstream request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.cfg.Client.Do(req)
	if err != nil {
		return nil, vortexerr.Wrap(vortexerr.KindSourceUnavailable, "upstream request failed", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, vortexerr.ApplicationNotFound(query.Application)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return nil, vortexerr.SourceUnavailable(fmt.Sprintf("upstream returned %d", resp.StatusCode))
	case http.StatusRequestTimeout:
		return nil, vortexerr.Timeout(s.cfg.MaxElapsedTime.Seconds())
	default:
		return nil, vortexerr.Wrap(vortexerr.KindSourceUnavailable, fmt.Sprintf("upstream returned %d", resp.StatusCode), nil)
	}

	var body upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, vortexerr.Parse(u, err.Error())
	}

	var list propertysource.List
	for i := len(body.PropertySources) - 1; i >= 0; i-- {
		ps := body.PropertySources[i]
		value, err := jsonMapToValue(ps.Source)
		if err != nil {
			return nil, vortexerr.Parse(ps.Name, err.Error())
		}
		list.Add(propertysource.Source{
			Name:     ps.Name,
			Origin:   ps.Name,
			Priority: int32(len(body.PropertySources) - 1 - i),
			Config:   value,
		})
	}

	return &configsource.Result{
		Name:            query.Application,
		Profiles:        query.Profiles,
		Label:           label,
		Version:         body.Version,
		HasVersion:      body.Version != "",
		PropertySources: list,
	}, nil
}

func (s *Source) requestURL(query configsource.Query, label string) string {
	profiles := strings.Join(query.Profiles, ",")
	if profiles == "" {
		profiles = "default"
	}
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	return fmt.Sprintf("%s/%s/%s/%s", base, url.PathEscape(query.Application), url.PathEscape(profiles), url.PathEscape(label))
}

// HealthCheck issues a GET to `{baseURL}/health`; a transport error or a
// 5xx status is reported as SourceUnavailable.
func (s *Source) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(s.cfg.BaseURL, "/")+"/health", nil)
	if err != nil {
		return vortexerr.Wrap(vortexerr.KindIo, "building health check request", err)
	}
	resp, err := s.cfg.Client.Do(req)
	if err != nil {
		sklog.Warningf("http source health check failed: %v", err)
		return vortexerr.SourceUnavailable(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return vortexerr.SourceUnavailable(fmt.Sprintf("upstream health check returned %d", resp.StatusCode))
	}
	return nil
}

// upstreamResponse mirrors the Spring Cloud Config JSON response shape
// this source consumes.
type upstreamResponse struct {
	Name            string                   `json:"name"`
	Profiles        []string                 `json:"profiles"`
	Label           string                   `json:"label"`
	Version         string                   `json:"version"`
	PropertySources []upstreamPropertySource `json:"propertySources"`
}

type upstreamPropertySource struct {
	Name   string                 `json:"name"`
	Source map[string]interface{} `json:"source"`
}

// jsonMapToValue converts the flattened dotted-key map Spring Cloud
// Config servers emit per property source ({"server.port": 8080, ...})
// back into a nested configvalue.Value tree. Go's encoding/json does
// not preserve object key order once decoded into map[string]interface{},
// so keys are sorted for determinism; the upstream's own declared order
// cannot be recovered this way, unlike the order-preserving local-file
// codecs in internal/configcodec.
func jsonMapToValue(m map[string]interface{}) (*configvalue.Value, error) {
	flat := make(map[string]*configvalue.Value, len(m))
	order := make([]string, 0, len(m))
	for k, v := range m {
		val, err := goValueToConfigValue(v)
		if err != nil {
			return nil, err
		}
		flat[k] = val
		order = append(order, k)
	}
	sort.Strings(order)
	return configvalue.Unflatten(flat, order), nil
}

func goValueToConfigValue(v interface{}) (*configvalue.Value, error) {
	switch t := v.(type) {
	case nil:
		return configvalue.Null(), nil
	case bool:
		return configvalue.Bool(t), nil
	case string:
		return configvalue.String(t), nil
	case float64:
		return configvalue.Float(t), nil
	case []interface{}:
		arr := make([]*configvalue.Value, len(t))
		for i, e := range t {
			ev, err := goValueToConfigValue(e)
			if err != nil {
				return nil, err
			}
			arr[i] = ev
		}
		return configvalue.Array(arr...), nil
	default:
		return configvalue.String(fmt.Sprint(t)), nil
	}
}
