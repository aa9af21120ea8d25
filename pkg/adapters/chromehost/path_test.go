package chromehost

import (
	"runtime"
	"testing"
)

func TestResolveChromePath_ExplicitPath(t *testing.T) {
	t.Setenv("CHROME_PATH", "/env/chrome")

	result := ResolveChromePath("/custom/path/to/chrome")
	if result != "/custom/path/to/chrome" {
		t.Errorf("expected explicit path to be returned, got %s", result)
	}
}

func TestResolveChromePath_EnvVar(t *testing.T) {
	t.Setenv("CHROME_PATH", "/env/chrome")

	result := ResolveChromePath("")
	if result != "/env/chrome" {
		t.Errorf("expected CHROME_PATH to be used, got %s", result)
	}
}

func TestResolveChromePath_NotFound(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("only Linux resolves Chrome purely through PATH")
	}
	t.Setenv("CHROME_PATH", "")
	t.Setenv("PATH", "")

	if result := ResolveChromePath(""); result != "" {
		t.Errorf("expected empty result with empty PATH, got %s", result)
	}
}

func TestResolveExecutable(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPath bool
	}{
		{"existing command", "sh", true},
		{"non-existing command", "definitely-not-a-real-command-xyz123", false},
		{"existing full path", "/bin/sh", true},
		{"non-existing full path", "/definitely/not/a/real/path/chrome", false},
	}

	if runtime.GOOS == "windows" {
		t.Skip("Unix paths only")
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := resolveExecutable(tt.input)
			if tt.wantPath && result == "" {
				t.Errorf("expected path for %s, got empty", tt.input)
			}
			if !tt.wantPath && result != "" {
				t.Errorf("expected empty for %s, got %s", tt.input, result)
			}
		})
	}
}
