package config

import (
	"os"
	"path/filepath"
	"testing"
)

func workspace(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tempDir, ".riskgate"), 0700); err != nil {
		t.Fatalf("mkdir .riskgate: %v", err)
	}
	return tempDir
}

func TestLoadMissingUsesDefaults(t *testing.T) {
	cfg, err := Load(workspace(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.AI.Provider != "ollama" || cfg.Similarity.Backend != BackendLexical || cfg.Analysis.MinChars != 40 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if !cfg.Analysis.Remediation || cfg.Analysis.MaxFixes != 5 {
		t.Errorf("expected remediation on with 5 fixes, got %+v", cfg.Analysis)
	}
}

func TestSaveAndLoad(t *testing.T) {
	root := workspace(t)
	input := Default()
	input.AI = AIConfig{Provider: "mock", Model: "test-model"}
	input.Similarity.Backend = BackendEmbedding
	input.Similarity.RedisURL = "redis://localhost:6379/0"

	if err := Save(root, input); err != nil {
		t.Fatalf("save config: %v", err)
	}
	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AI.Provider != "mock" || cfg.AI.Model != "test-model" {
		t.Errorf("unexpected AI config: %+v", cfg.AI)
	}
	if cfg.Similarity.Backend != BackendEmbedding || cfg.Similarity.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("unexpected similarity config: %+v", cfg.Similarity)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	root := workspace(t)
	data := "analysis:\n  max_chars: 1000\n"
	if err := os.WriteFile(filepath.Join(root, ".riskgate", "riskgate.yaml"), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Analysis.MaxChars != 1000 || cfg.Analysis.MinChars != 40 {
		t.Errorf("expected partial override, got %+v", cfg.Analysis)
	}
	if l := cfg.Limits(); l.MaxChars != 1000 || l.MinChars != 40 {
		t.Errorf("unexpected limits %+v", l)
	}
	if cfg.AI.Model != "llama3" {
		t.Errorf("expected default model, got %s", cfg.AI.Model)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "::bad"},
		{"unknown backend", "similarity:\n  backend: quantum\n"},
		{"inverted limits", "analysis:\n  min_chars: 100\n  max_chars: 10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := workspace(t)
			if err := os.WriteFile(filepath.Join(root, ".riskgate", "riskgate.yaml"), []byte(tt.data), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(root); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSaveNil(t *testing.T) {
	if err := Save(workspace(t), nil); err == nil {
		t.Error("expected error for nil config")
	}
}
