package bootstrap

import (
	"os"

	sigsyaml "sigs.k8s.io/yaml"

	"github.com/cburgosro9303/vortex-config/internal/sklog"
)

// fileOverrides mirrors Config with every field optional, so a local
// overrides file only needs to name the settings it wants to change.
// Parsed with sigs.k8s.io/yaml, which accepts both YAML and JSON input
// (valid JSON is valid YAML) by converting to JSON and decoding against
// these json tags.
type fileOverrides struct {
	Host *string `json:"host,omitempty"`
	Port *string `json:"port,omitempty"`

	GitURI          *string  `json:"gitUri,omitempty"`
	GitLocalPath    *string  `json:"gitLocalPath,omitempty"`
	GitDefaultLabel *string  `json:"gitDefaultLabel,omitempty"`
	GitSearchPaths  []string `json:"gitSearchPaths,omitempty"`
	GitUsername     *string  `json:"gitUsername,omitempty"`
	GitPassword     *string  `json:"gitPassword,omitempty"`

	CacheEnabled     *bool `json:"cacheEnabled,omitempty"`
	CacheTTLSeconds  *int  `json:"cacheTtlSeconds,omitempty"`
	CacheMaxCapacity *int  `json:"cacheMaxCapacity,omitempty"`
}

// ApplyOverridesFile reads path, if it exists, and layers its settings
// on top of c. A missing file is not an error: the override file is
// optional instance-specific tuning, not a required bootstrap input.
func (c *Config) ApplyOverridesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var o fileOverrides
	if err := sigsyaml.Unmarshal(data, &o); err != nil {
		return err
	}

	sklog.Infof("applying config overrides from %s", path)
	c.applyOverrides(o)
	return c.validate()
}

func (c *Config) applyOverrides(o fileOverrides) {
	if o.Host != nil {
		c.Host = *o.Host
	}
	if o.Port != nil {
		c.Port = *o.Port
	}
	if o.GitURI != nil {
		c.GitURI = *o.GitURI
	}
	if o.GitLocalPath != nil {
		c.GitLocalPath = *o.GitLocalPath
	}
	if o.GitDefaultLabel != nil {
		c.GitDefaultLabel = *o.GitDefaultLabel
	}
	if o.GitSearchPaths != nil {
		c.GitSearchPaths = o.GitSearchPaths
	}
	if o.GitUsername != nil {
		c.GitUsername = *o.GitUsername
	}
	if o.GitPassword != nil {
		c.GitPassword = *o.GitPassword
	}
	if o.CacheEnabled != nil {
		c.CacheEnabled = *o.CacheEnabled
	}
	if o.CacheTTLSeconds != nil {
		c.CacheTTLSeconds = *o.CacheTTLSeconds
	}
	if o.CacheMaxCapacity != nil {
		c.CacheMaxCapacity = *o.CacheMaxCapacity
	}
}
