package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint("token-a")
	if a == "" || a == "token-a" {
		t.Fatalf("Fingerprint() = %q, want a non-reversible digest", a)
	}
	if Fingerprint("token-a") != a {
		t.Error("Fingerprint() is not stable for the same input")
	}
	if Fingerprint("token-b") == a {
		t.Error("Fingerprint() collides for different inputs")
	}
}

func TestInMemoryAuditor(t *testing.T) {
	auditor := NewInMemoryAuditor()
	for i := 0; i < 5; i++ {
		err := auditor.Log(core.AuditEntry{
			ID:      strconv.Itoa(i),
			Time:    time.Now(),
			Action:  "token.request",
			Success: i%2 == 0,
		})
		if err != nil {
			t.Fatalf("Log() failed: %v", err)
		}
	}

	t.Run("GetRecent Returns The Tail", func(t *testing.T) {
		entries, err := auditor.GetRecent(2)
		if err != nil {
			t.Fatalf("GetRecent() failed: %v", err)
		}
		if len(entries) != 2 || entries[0].ID != "3" || entries[1].ID != "4" {
			t.Errorf("GetRecent(2) = %v, want the last two entries", entries)
		}
	})

	t.Run("GetRecent Beyond Size", func(t *testing.T) {
		entries, err := auditor.GetRecent(100)
		if err != nil {
			t.Fatalf("GetRecent() failed: %v", err)
		}
		if len(entries) != 5 {
			t.Errorf("GetRecent(100) returned %d entries, want 5", len(entries))
		}
	})

	t.Run("Find Filters And Limits", func(t *testing.T) {
		entries, err := auditor.Find(func(e core.AuditEntry) bool { return e.Success }, 2)
		if err != nil {
			t.Fatalf("Find() failed: %v", err)
		}
		if len(entries) != 2 || entries[0].ID != "2" || entries[1].ID != "4" {
			t.Errorf("Find() = %v, want the last two successful entries", entries)
		}
	})
}

func TestFileAuditor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	auditor, err := NewFileAuditor(path)
	if err != nil {
		t.Fatalf("NewFileAuditor() failed: %v", err)
	}
	if err := auditor.Log(core.AuditEntry{ID: "a", Action: "ticket.create", Success: true}); err != nil {
		t.Fatalf("Log() failed: %v", err)
	}
	if err := auditor.Log(core.AuditEntry{ID: "b", Action: "token.issue"}); err != nil {
		t.Fatalf("Log() failed: %v", err)
	}
	if err := auditor.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening audit log: %v", err)
	}
	defer file.Close()

	var entries []core.AuditEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry core.AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("unmarshaling audit line: %v", err)
		}
		entries = append(entries, entry)
	}
	if len(entries) != 2 {
		t.Fatalf("audit log has %d entries, want 2", len(entries))
	}
	if entries[0].ID != "a" || entries[0].Action != "ticket.create" || !entries[0].Success {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].ID != "b" {
		t.Errorf("second entry = %+v", entries[1])
	}
}
