// config_test.go - Tests fuer die Environment-Konfiguration
package envconfig

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHost(t *testing.T) {
	cases := map[string]struct {
		value  string
		expect string
	}{
		"empty":               {"", "http://127.0.0.1:11435"},
		"only address":        {"1.2.3.4", "http://1.2.3.4:11435"},
		"only port":           {":1234", "http://:1234"},
		"address and port":    {"1.2.3.4:1234", "http://1.2.3.4:1234"},
		"hostname":            {"example.com", "http://example.com:11435"},
		"hostname and port":   {"example.com:1234", "http://example.com:1234"},
		"zero port":           {":0", "http://:0"},
		"too large port":      {":66000", "http://:11435"},
		"too small port":      {":-1", "http://:11435"},
		"ipv6 localhost":      {"[::1]", "http://[::1]:11435"},
		"ipv6 with port":      {"[::1]:1337", "http://[::1]:1337"},
		"https default port":  {"https://example.com", "https://example.com:443"},
		"http with path":      {"http://example.com:8080/toolfence", "http://example.com:8080/toolfence"},
		"quoted with spaces":  {`"  1.2.3.4:1234 "`, "http://1.2.3.4:1234"},
	}

	for name, tt := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("TOOLFENCE_HOST", tt.value)
			if host := Host(); host.String() != tt.expect {
				t.Errorf("%s: erwartet %s, bekam %s", name, tt.expect, host.String())
			}
		})
	}
}

func TestOrigins(t *testing.T) {
	t.Setenv("TOOLFENCE_ORIGINS", "http://10.0.0.1,https://example.com")
	origins := AllowedOrigins()
	if diff := cmp.Diff([]string{"http://10.0.0.1", "https://example.com"}, origins[:2]); diff != "" {
		t.Errorf("Eigene Origins fehlen (-want +got):\n%s", diff)
	}

	t.Setenv("TOOLFENCE_ORIGINS", "")
	if origins := AllowedOrigins(); origins[0] != "http://localhost" {
		t.Errorf("Erster Standard-Origin = %q", origins[0])
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"false": slog.LevelInfo,
		"0":     slog.LevelInfo,
		"true":  slog.LevelDebug,
		"1":     slog.LevelDebug,
		"2":     slog.Level(-8),
	}

	for value, expect := range cases {
		t.Setenv("TOOLFENCE_DEBUG", value)
		if got := LogLevel(); got != expect {
			t.Errorf("TOOLFENCE_DEBUG=%q: erwartet %v, bekam %v", value, expect, got)
		}
	}
}

func TestBackendAndUpstream(t *testing.T) {
	t.Setenv("TOOLFENCE_UPSTREAM", "")

	t.Setenv("TOOLFENCE_BACKEND", "")
	if Backend() != BackendOllama || Upstream() != "http://127.0.0.1:11434" {
		t.Errorf("Default: %s %s", Backend(), Upstream())
	}

	t.Setenv("TOOLFENCE_BACKEND", "OpenAI")
	if Backend() != BackendOpenAI || Upstream() != "https://api.openai.com/v1" {
		t.Errorf("OpenAI: %s %s", Backend(), Upstream())
	}

	t.Setenv("TOOLFENCE_BACKEND", "llamafile")
	if Backend() != BackendOllama {
		t.Errorf("Unbekanntes Backend sollte auf ollama fallen, bekam %s", Backend())
	}

	t.Setenv("TOOLFENCE_UPSTREAM", "http://gpu-box:11434/")
	if got := Upstream(); got != "http://gpu-box:11434" {
		t.Errorf("Upstream = %q", got)
	}
}

func TestLimits(t *testing.T) {
	t.Setenv("TOOLFENCE_MAX_PREFIX", "")
	if MaxPrefix() != 500 {
		t.Errorf("MaxPrefix Default = %d", MaxPrefix())
	}

	t.Setenv("TOOLFENCE_MAX_PREFIX", "42")
	if MaxPrefix() != 42 {
		t.Errorf("MaxPrefix = %d", MaxPrefix())
	}

	t.Setenv("TOOLFENCE_MAX_FENCE_BYTES", "viel")
	if MaxFenceBytes() != 64*1024 {
		t.Errorf("Ungueltiger Wert sollte Default liefern, bekam %d", MaxFenceBytes())
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"true":  true,
		"false": false,
		"1":     true,
		"0":     false,
		"ja":    true,
	}

	for value, expect := range cases {
		t.Setenv("TOOLFENCE_STRICT", value)
		if got := Strict(); got != expect {
			t.Errorf("TOOLFENCE_STRICT=%q: erwartet %v, bekam %v", value, expect, got)
		}
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TOOLFENCE_MODEL=qwen3:8b\nTOOLFENCE_MODE=bare\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TOOLFENCE_MODEL", "")
	os.Unsetenv("TOOLFENCE_MODEL")
	t.Setenv("TOOLFENCE_MODE", "fenced")

	if err := LoadDotEnv(path, filepath.Join(dir, "fehlt.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}

	if Model() != "qwen3:8b" {
		t.Errorf("Model = %q", Model())
	}
	// gesetzte Variablen gewinnen
	if Mode() != "fenced" {
		t.Errorf("Mode = %q", Mode())
	}
	os.Unsetenv("TOOLFENCE_MODEL")
}

func TestValues(t *testing.T) {
	vals := Values()
	for _, key := range []string{"TOOLFENCE_HOST", "TOOLFENCE_BACKEND", "TOOLFENCE_MODE"} {
		if _, ok := vals[key]; !ok {
			t.Errorf("%s fehlt in Values()", key)
		}
	}
	if _, ok := vals["OPENAI_API_KEY"]; ok {
		t.Error("API-Key darf nicht in Values() auftauchen")
	}
}
