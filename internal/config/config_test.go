package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFindConfigPath(t *testing.T) {
	homeDir := t.TempDir()

	tests := []struct {
		name     string
		setup    func() string
		wantPath string
		wantErr  bool
	}{
		{
			name: "explicit path missing",
			setup: func() string {
				return filepath.Join(homeDir, "does-not-exist.toml")
			},
			wantErr: true,
		},
		{
			name: "find in config dir",
			setup: func() string {
				configDir := filepath.Join(homeDir, ".config", "ghorg")
				os.MkdirAll(configDir, 0755)
				configPath := filepath.Join(configDir, "config.toml")
				os.WriteFile(configPath, []byte("[organizations]\norgs = []"), 0644)
				return ""
			},
			wantPath: filepath.Join(homeDir, ".config", "ghorg", "config.toml"),
		},
		{
			name: "explicit path exists",
			setup: func() string {
				p := filepath.Join(homeDir, "explicit.toml")
				os.WriteFile(p, []byte(""), 0644)
				return p
			},
			wantPath: filepath.Join(homeDir, "explicit.toml"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", homeDir)
			t.Chdir(t.TempDir())

			explicitPath := tt.setup()

			path, err := FindConfigPath(explicitPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindConfigPath() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && path != tt.wantPath {
				t.Errorf("FindConfigPath() = %v, want %v", path, tt.wantPath)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	configContent := `[organizations]
orgs = ["google", "abc"]

[github]
token = "config_token"
base_url = "https://ghe.example.com/api/v3"

[cache]
ttl = "1h30m"

[delays]
max_delay = "3s"
routines = 8
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	orgs := cfg.GetOrganizations()
	if len(orgs) != 2 || orgs[0] != "google" || orgs[1] != "abc" {
		t.Errorf("GetOrganizations() = %v, want [google abc]", orgs)
	}
	if cfg.GitHub.Token != "config_token" {
		t.Errorf("GitHub.Token = %q, want config_token", cfg.GitHub.Token)
	}
	if cfg.GetBaseURL() != "https://ghe.example.com/api/v3" {
		t.Errorf("GetBaseURL() = %q", cfg.GetBaseURL())
	}
	if cfg.GetCacheTTL() != 90*time.Minute {
		t.Errorf("GetCacheTTL() = %v, want 1h30m", cfg.GetCacheTTL())
	}
	if cfg.GetMaxDelay() != 3*time.Second {
		t.Errorf("GetMaxDelay() = %v, want 3s", cfg.GetMaxDelay())
	}
	if cfg.GetRoutines() != 8 {
		t.Errorf("GetRoutines() = %d, want 8", cfg.GetRoutines())
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}

	if cfg.GetCacheTTL() != DefaultCacheTTL {
		t.Errorf("GetCacheTTL() = %v, want %v", cfg.GetCacheTTL(), DefaultCacheTTL)
	}
	if cfg.GetMaxDelay() != DefaultMaxDelay {
		t.Errorf("GetMaxDelay() = %v, want %v", cfg.GetMaxDelay(), DefaultMaxDelay)
	}
	if cfg.GetRoutines() != DefaultRoutines {
		t.Errorf("GetRoutines() = %d, want %d", cfg.GetRoutines(), DefaultRoutines)
	}
}

func TestLoadRejectsInvalidDurations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad ttl", content: "[cache]\nttl = \"soon\"\n"},
		{name: "negative ttl", content: "[cache]\nttl = \"-1h\"\n"},
		{name: "bad max delay", content: "[delays]\nmax_delay = \"10\"\n"},
		{name: "negative routines", content: "[delays]\nroutines = -2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			if _, err := LoadFile(configPath); err == nil {
				t.Fatal("LoadFile() expected error")
			}
		})
	}
}

// stubGHToken replaces the gh CLI lookup for one test and counts its calls.
func stubGHToken(t *testing.T, token string, err error) *int {
	t.Helper()

	calls := 0
	prev := getGitHubCLIAuthToken
	getGitHubCLIAuthToken = sync.OnceValues(func() (string, error) {
		calls++
		return token, err
	})
	t.Cleanup(func() { getGitHubCLIAuthToken = prev })

	return &calls
}

func TestGetGitHubToken(t *testing.T) {
	ghMissing := errors.New("gh: not found")

	tests := []struct {
		name    string
		ghToken string
		ghErr   error
		config  string
		env     string
		want    string
	}{
		{name: "uses gh cli token when available", ghToken: "gh_test_token_12345", config: "config_token", env: "env_token", want: "gh_test_token_12345"},
		{name: "falls back to config token", ghErr: ghMissing, config: "config_token", env: "env_token", want: "config_token"},
		{name: "falls back to env var", ghErr: ghMissing, env: "env_token", want: "env_token"},
		{name: "empty gh token falls through", config: "config_token", want: "config_token"},
		{name: "returns empty string when no token available", ghErr: ghMissing, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubGHToken(t, tt.ghToken, tt.ghErr)
			t.Setenv("GITHUB_TOKEN", tt.env)

			cfg := &Config{GitHub: GitHubConfig{Token: tt.config}}
			if got := cfg.GetGitHubToken(); got != tt.want {
				t.Errorf("GetGitHubToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGitHubCLITokenFailureIsRemembered(t *testing.T) {
	calls := stubGHToken(t, "", errors.New("gh: not logged in"))
	t.Setenv("GITHUB_TOKEN", "env_token")

	cfg := &Config{}
	for i := 0; i < 5; i++ {
		if got := cfg.GetGitHubToken(); got != "env_token" {
			t.Fatalf("GetGitHubToken() = %q, want env_token", got)
		}
	}

	if *calls != 1 {
		t.Fatalf("gh auth token ran %d times, want 1", *calls)
	}
}

func TestLoadExplicitPathMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)

	// A default file must not stand in for the one the user named.
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[organizations]\norgs = [\"google\"]\n"), 0644); err != nil {
		t.Fatalf("failed to write default config: %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("Load() expected error for missing explicit path")
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if orgs := cfg.GetOrganizations(); len(orgs) != 1 || orgs[0] != "google" {
		t.Fatalf("GetOrganizations() = %v, want [google]", orgs)
	}
}

func TestLoadWithoutAnyConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.GetOrganizations()) != 0 {
		t.Fatalf("GetOrganizations() = %v, want none", cfg.GetOrganizations())
	}

	if _, err := FindConfigPath(""); !errors.Is(err, ErrNoConfig) {
		t.Fatalf("FindConfigPath() error = %v, want ErrNoConfig", err)
	}
}
