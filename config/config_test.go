package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadResolvesShaderPaths(t *testing.T) {
	path := writeTemp(t, `
engine_path = "/opt/engine"
shader_path = ["shaders", "/abs/shaders"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EnginePath != "/opt/engine" {
		t.Fatalf("EnginePath = %q", cfg.EnginePath)
	}
	if len(cfg.ShaderPath) != 3 {
		t.Fatalf("ShaderPath = %v, want 3 entries (engine-relative, project-relative, absolute)", cfg.ShaderPath)
	}
	if cfg.ShaderPath[2] != "/abs/shaders" {
		t.Fatalf("absolute shader path not preserved: %v", cfg.ShaderPath)
	}
}

func TestLoadExpandsEnvMacros(t *testing.T) {
	t.Setenv("OXY_ENGINE_ROOT", "/srv/oxy")
	path := writeTemp(t, `engine_path = "${OXY_ENGINE_ROOT}/engine"`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EnginePath != "/srv/oxy/engine" {
		t.Fatalf("EnginePath = %q, want macro expanded", cfg.EnginePath)
	}
}

func TestStringProperties(t *testing.T) {
	path := writeTemp(t, `
engine_path = "/opt/engine"
window_title = "Oxy Sandbox"
search_names = ["models", "textures"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if v, ok := cfg.StringProperty("window_title"); !ok || v != "Oxy Sandbox" {
		t.Fatalf("StringProperty(window_title) = %q, %v", v, ok)
	}
	if _, ok := cfg.StringProperty("missing"); ok {
		t.Fatalf("StringProperty(missing) reported ok")
	}

	if v, ok := cfg.StringArrayProperty("search_names"); !ok || len(v) != 2 || v[0] != "models" {
		t.Fatalf("StringArrayProperty(search_names) = %v, %v", v, ok)
	}
}
