// Package config loads the engine's startup configuration document: a key-value document
// carrying engine_path, shader_path, and arbitrary string/string-array properties addressable
// by name. Read once at startup; nothing in this package mutates a Config after Load returns.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// raw mirrors the on-disk TOML document shape. Properties is skipped by the struct decode;
// Load decodes the whole document a second time into a map and stores it there, so
// string_property/string_array_property can address anything the document carries, not
// just the two well-known keys.
type raw struct {
	EnginePath string         `toml:"engine_path"`
	ShaderPath []string       `toml:"shader_path"`
	Properties map[string]any `toml:"-"`
}

// Config is the parsed, macro-expanded configuration document.
type Config struct {
	// EnginePath is the absolute engine root path, macro-preprocessed (environment
	// variables of the form ${NAME} are expanded against os.Environ, the idiomatic Go
	// substitute for the shader pipeline's WGSL-only @oxy:-annotation preprocessor — see DESIGN.md).
	EnginePath string

	// ShaderPath is the list of shader search roots, each resolved against EnginePath and
	// the project's working directory.
	ShaderPath []string

	properties map[string]any
}

// Load reads and parses the TOML document at path. It is intended to run once at process
// startup; callers that need per-request reloading should re-invoke Load rather than mutate
// the returned Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	var r raw
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	r.Properties = doc

	enginePath := os.Expand(r.EnginePath, lookupEnv)
	projectRoot, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: resolve project root: %w", err)
	}

	resolved := make([]string, 0, len(r.ShaderPath))
	for _, sp := range r.ShaderPath {
		sp = os.Expand(sp, lookupEnv)
		resolved = append(resolved, resolveShaderRoot(sp, enginePath, projectRoot)...)
	}

	return &Config{
		EnginePath: enginePath,
		ShaderPath: resolved,
		properties: doc,
	}, nil
}

// lookupEnv backs the ${NAME} macro expansion os.Expand performs on engine_path and each
// shader_path entry, generalized from the shader pipeline's WGSL-only @oxy:-annotation preprocessor
// (engine/renderer/shader/pre_processor.go) to plain environment-variable substitution, since
// config strings carry no WGSL syntax for that preprocessor to act on. See DESIGN.md for why
// this is stdlib rather than a pack dependency.
func lookupEnv(name string) string {
	return os.Getenv(name)
}

// resolveShaderRoot expands one shader_path entry into its engine-relative and
// project-relative absolute forms. A bare absolute path is returned unchanged.
func resolveShaderRoot(entry, enginePath, projectRoot string) []string {
	if filepath.IsAbs(entry) {
		return []string{entry}
	}
	out := make([]string, 0, 2)
	if enginePath != "" {
		out = append(out, filepath.Join(enginePath, entry))
	}
	out = append(out, filepath.Join(projectRoot, entry))
	return out
}

// StringProperty returns the document's top-level string property named name.
func (c *Config) StringProperty(name string) (string, bool) {
	v, ok := c.properties[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StringArrayProperty returns the document's top-level string-array property named name.
func (c *Config) StringArrayProperty(name string) ([]string, bool) {
	v, ok := c.properties[name]
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
