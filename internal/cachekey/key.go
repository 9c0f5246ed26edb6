// Package cachekey defines the cache's addressing scheme: application,
// profiles, and label, normalized to lower case for case-insensitive
// lookup and stringified for glob-pattern invalidation.
package cachekey

import "strings"

// Key identifies one cached effective-configuration entry.
type Key struct {
	App      string
	Profiles string
	Label    string
}

// New builds a normalized Key: every component is lower-cased and
// profiles are comma-joined with surrounding whitespace trimmed, so
// Key("App", "PROD", "Main") == Key("app", "prod", "main").
func New(app string, profiles []string, label string) Key {
	trimmed := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p = strings.TrimSpace(p); p != "" {
			trimmed = append(trimmed, strings.ToLower(p))
		}
	}
	return Key{
		App:      strings.ToLower(strings.TrimSpace(app)),
		Profiles: strings.Join(trimmed, ","),
		Label:    strings.ToLower(strings.TrimSpace(label)),
	}
}

// String renders the key as "app:profiles:label", the form glob
// patterns match against.
func (k Key) String() string {
	return k.App + ":" + k.Profiles + ":" + k.Label
}
