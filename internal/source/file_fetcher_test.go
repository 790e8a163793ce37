package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing rule file: %v", err)
	}
	return path
}

func TestFileFetcher(t *testing.T) {
	path := writeRules(t, `
rules:
  - name: readers
    match:
      expr: 'scope == "read"'
      allow_any: true
    grant:
      resource_prefix: http://localhost:3000/
      scopes: ["read"]
`)

	fetcher, err := NewFileFetcher(path)
	if err != nil {
		t.Fatalf("NewFileFetcher() failed: %v", err)
	}

	rules, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if len(rules) != 1 || rules[0].Name != "readers" {
		t.Fatalf("Fetch() = %v, want the readers rule", rules)
	}
	if rules[0].Match.CompiledExpr == nil {
		t.Error("Fetch() did not compile the rule expression")
	}
}

func TestFileFetcher_Errors(t *testing.T) {
	t.Run("Empty Path", func(t *testing.T) {
		if _, err := NewFileFetcher(""); err == nil {
			t.Error("NewFileFetcher(\"\") should fail")
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		fetcher, err := NewFileFetcher(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("NewFileFetcher() failed: %v", err)
		}
		if _, err := fetcher.Fetch(context.Background()); err == nil {
			t.Error("Fetch() should fail for a missing file")
		}
	})

	t.Run("Invalid Rules Never Load", func(t *testing.T) {
		path := writeRules(t, `
rules:
  - name: ""
    grant:
      resource_prefix: http://localhost:3000/
      scopes: ["read"]
`)
		fetcher, err := NewFileFetcher(path)
		if err != nil {
			t.Fatalf("NewFileFetcher() failed: %v", err)
		}
		if _, err := fetcher.Fetch(context.Background()); err == nil {
			t.Error("Fetch() should reject invalid rules")
		}
	})
}
