// Package resolver implements Spring Cloud Config's file-naming
// convention: given (application, profiles, label) it produces the
// ordered list of property sources a repository snapshot contains,
// highest precedence first.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cburgosro9303/vortex-config/internal/configcodec"
	"github.com/cburgosro9303/vortex-config/internal/propertysource"
	"github.com/cburgosro9303/vortex-config/internal/vortexerr"
)

// Resolver resolves configuration files beneath a repository snapshot.
type Resolver struct {
	basePath    string
	searchPaths []string
}

func New(basePath string, searchPaths []string) *Resolver {
	return &Resolver{basePath: basePath, searchPaths: searchPaths}
}

// Resolve returns property sources for (application, profiles) found
// under the resolver's search paths, highest precedence first:
// {app}-{profile} (last profile wins), {app}, application-{profile},
// application — generated lowest-to-highest then reversed, per
// spec.md §4.6.
func (r *Resolver) Resolve(application string, profiles []string, label string) ([]propertysource.Source, error) {
	var sources []propertysource.Source

	effectiveSearchPaths := r.searchPaths
	if len(effectiveSearchPaths) == 0 {
		effectiveSearchPaths = []string{""}
	}

	for _, sp := range effectiveSearchPaths {
		base := r.basePath
		if sp != "" {
			base = filepath.Join(r.basePath, sp)
		}

		if src, ok, err := r.tryRead(base, "application", "", label); err != nil {
			return nil, err
		} else if ok {
			sources = append(sources, src)
		}
		for _, profile := range profiles {
			if src, ok, err := r.tryRead(base, "application", profile, label); err != nil {
				return nil, err
			} else if ok {
				sources = append(sources, src)
			}
		}
		if src, ok, err := r.tryRead(base, application, "", label); err != nil {
			return nil, err
		} else if ok {
			sources = append(sources, src)
		}
		for _, profile := range profiles {
			if src, ok, err := r.tryRead(base, application, profile, label); err != nil {
				return nil, err
			} else if ok {
				sources = append(sources, src)
			}
		}
	}

	for i, j := 0, len(sources)-1; i < j; i, j = i+1, j-1 {
		sources[i], sources[j] = sources[j], sources[i]
	}
	return sources, nil
}

func (r *Resolver) tryRead(base, name, profile, label string) (propertysource.Source, bool, error) {
	filename := name
	if profile != "" {
		filename = name + "-" + profile
	}

	for _, ext := range configcodec.Extensions() {
		path := filepath.Join(base, filename+"."+ext)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return propertysource.Source{}, false, vortexerr.Io(err)
		}
		format, _ := configcodec.FormatForExtension(ext)
		value, err := configcodec.Parse(format, content)
		if err != nil {
			return propertysource.Source{}, false, vortexerr.Parse(path, err.Error())
		}

		return propertysource.Source{
			Name:   r.makeSourceName(path, label),
			Origin: path,
			Config: value,
		}, true, nil
	}
	return propertysource.Source{}, false, nil
}

func (r *Resolver) makeSourceName(path, label string) string {
	rel, err := filepath.Rel(r.basePath, path)
	if err != nil {
		rel = path
	}
	return fmt.Sprintf("git:%s:%s", label, filepath.ToSlash(rel))
}

// ListConfigFiles walks every search path recursively, skipping hidden
// directories and node_modules/target, and returns every file whose
// extension matches a known codec, for the on-disk-layout inventory in
// spec.md §6.4.
func (r *Resolver) ListConfigFiles() ([]string, error) {
	var files []string

	effectiveSearchPaths := r.searchPaths
	if len(effectiveSearchPaths) == 0 {
		effectiveSearchPaths = []string{""}
	}

	for _, sp := range effectiveSearchPaths {
		base := r.basePath
		if sp != "" {
			base = filepath.Join(r.basePath, sp)
		}
		if _, err := os.Stat(base); err != nil {
			continue
		}
		if err := findConfigFiles(base, &files); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func findConfigFiles(dir string, files *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return vortexerr.Io(err)
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			name := entry.Name()
			if strings.HasPrefix(name, ".") || name == "node_modules" || name == "target" {
				continue
			}
			if err := findConfigFiles(path, files); err != nil {
				return err
			}
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(entry.Name()), ".")
		if _, ok := configcodec.FormatForExtension(ext); ok {
			*files = append(*files, path)
		}
	}
	return nil
}
