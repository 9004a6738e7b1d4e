package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/rainier/internal/model"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"contracts/msa.pdf", "msa"},
		{"/tmp/Master Services Agreement.pdf", "Master-Services-Agreement"},
		{"https://example.com/docs/sow.pdf", "sow"},
		{`C:\contracts\nda.txt`, "nda"},
		{"weird:name?.pdf", "weird_name_"},
		{"", "contract"},
		{"/", "contract"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := sanitizeFilename(strings.Repeat("a", 150) + ".pdf")
	if len(long) != 100 {
		t.Errorf("expected stem truncated to 100 chars, got %d", len(long))
	}
}

func TestUniqueSlug(t *testing.T) {
	used := make(map[string]int)

	got := []string{
		uniqueSlug("msa", used),
		uniqueSlug("msa", used),
		uniqueSlug("nda", used),
		uniqueSlug("msa", used),
	}
	want := []string{"msa", "msa-2", "nda", "msa-3"}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slug %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBatchPaths(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "contracts.list")
	if err := os.WriteFile(list, []byte("# review queue\na.pdf\n\nb.pdf\na.pdf\n"), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := batchPaths([]string{list})
	if err != nil {
		t.Fatalf("batchPaths failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %v", paths)
	}
	if paths[0] != filepath.Join(dir, "a.pdf") || paths[1] != filepath.Join(dir, "b.pdf") {
		t.Errorf("unexpected paths: %v", paths)
	}

	// A single contract is not a list file
	paths, err = batchPaths([]string{"notes.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != "notes.txt" {
		t.Errorf("expected notes.txt passed through, got %v", paths)
	}

	if _, err := batchPaths([]string{filepath.Join(dir, "missing.lst")}); err == nil {
		t.Error("expected error for missing list file")
	}
}

func TestBatchWorkers(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Concurrency.Workers = 3

	if got := batchWorkers(8, cfg); got != 8 {
		t.Errorf("flag should win, got %d", got)
	}
	if got := batchWorkers(0, cfg); got != 3 {
		t.Errorf("config should be used, got %d", got)
	}
	cfg.Concurrency.Workers = 0
	if got := batchWorkers(0, cfg); got < 1 {
		t.Errorf("expected CPU count fallback, got %d", got)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(viper.New())
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	def := model.DefaultConfig()
	if cfg.Server.Addr != def.Server.Addr {
		t.Errorf("addr = %q, want %q", cfg.Server.Addr, def.Server.Addr)
	}
	if cfg.LLM.Provider != "" {
		t.Errorf("expected answering disabled by default, got provider %q", cfg.LLM.Provider)
	}
	if len(cfg.Questions.Indices) != 4 {
		t.Errorf("expected 4 question indices, got %v", cfg.Questions.Indices)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  addr: ":8080"
  max_upload_bytes: 1048576
llm:
  provider: ollama
  model: llama3
cache:
  memory_ttl: 90s
questions:
  indices: [2, 5]
output:
  include_contract: false
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" || cfg.Server.MaxUploadBytes != 1<<20 {
		t.Errorf("server overrides not applied: %+v", cfg.Server)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.Model != "llama3" {
		t.Errorf("llm overrides not applied: %+v", cfg.LLM)
	}
	if cfg.Cache.MemoryTTL != 90*time.Second {
		t.Errorf("memory ttl = %v, want 90s", cfg.Cache.MemoryTTL)
	}
	if len(cfg.Questions.Indices) != 2 || cfg.Questions.Indices[1] != 5 {
		t.Errorf("indices = %v, want [2 5]", cfg.Questions.Indices)
	}
	if cfg.Output.IncludeContract {
		t.Error("expected include_contract=false")
	}

	// Untouched sections keep their defaults
	if cfg.Server.Title != "Project Rainier" {
		t.Errorf("title = %q, want default", cfg.Server.Title)
	}
	if cfg.LLM.MaxTokens != model.DefaultConfig().LLM.MaxTokens {
		t.Errorf("max tokens = %d, want default", cfg.LLM.MaxTokens)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(content), "# Rainier Configuration File") {
		t.Error("expected header comment")
	}
	if strings.Contains(string(content), "api_key") {
		t.Error("API key must not be written to the config file")
	}

	// The written file loads back to the defaults
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read written config: %v", err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	def := model.DefaultConfig()
	if cfg.Cache.DiskTTL != def.Cache.DiskTTL {
		t.Errorf("disk ttl = %v, want %v", cfg.Cache.DiskTTL, def.Cache.DiskTTL)
	}
	if cfg.Server.RequestsPerMin != def.Server.RequestsPerMin {
		t.Errorf("requests per minute = %d, want %d", cfg.Server.RequestsPerMin, def.Server.RequestsPerMin)
	}

	// Never overwrite
	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestRenderStdout_UnknownFormat(t *testing.T) {
	report := &model.Report{Filename: "msa.pdf"}

	var buf bytes.Buffer
	if err := renderStdout(&buf, nil, report, "none"); err != nil {
		t.Errorf("none format should succeed: %v", err)
	}
	if buf.Len() != 0 {
		t.Error("none format should print nothing")
	}
	if err := renderStdout(&buf, nil, report, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	progress := progressBar(&buf)

	progress(45, "flag")
	progress(100, "done")

	out := buf.String()
	if !strings.Contains(out, " 45% flag") {
		t.Errorf("missing 45%% line: %q", out)
	}
	if !strings.Contains(out, "["+strings.Repeat("#", 40)+"] 100% done") {
		t.Errorf("missing full bar: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("expected newline after completion")
	}
}

func TestPrintCategoriesAndQuestions(t *testing.T) {
	var buf bytes.Buffer
	err := printCategories(&buf, []model.Category{
		{ID: "Payment", Name: "Payment Term", Phrases: []string{"payment", "invoice"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "payment, invoice") || !strings.HasPrefix(buf.String(), "ID") {
		t.Errorf("unexpected categories output: %q", buf.String())
	}

	buf.Reset()
	if err := printQuestions(&buf, []model.Question{{Index: 2, Text: "What is the agreement date?"}}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[2] What is the agreement date?\n" {
		t.Errorf("unexpected questions output: %q", buf.String())
	}
}
