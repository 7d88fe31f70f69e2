package store

import (
	"path/filepath"
	"testing"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenPragmas(t *testing.T) {
	s := openTest(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Errorf("journal_mode: %v", err)
	}
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Errorf("foreign_keys: %v", err)
	}
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Errorf("busy_timeout: %v", err)
	}
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()
}

func TestSchemaVersion(t *testing.T) {
	s := openTest(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestMatchPairIndexExists(t *testing.T) {
	s := openTest(t)

	// The unique pair constraint backs RecordMatch idempotency; verify
	// SQLite enforces it.
	if _, err := s.db.Exec(`INSERT INTO owners (external_id, username, first_name, last_name, phone, created_at)
		VALUES (1, 'u', 'f', 'l', '', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("insert owner: %v", err)
	}
	for _, kind := range []string{"demand", "supply"} {
		if _, err := s.db.Exec(`INSERT INTO requests (owner_id, kind, location, contact_preference, status, created_at, updated_at)
			VALUES (1, ?, 'x', 'message', 'active', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`, kind); err != nil {
			t.Fatalf("insert %s: %v", kind, err)
		}
	}

	insert := `INSERT INTO matches (demand_id, supply_id, score, notes, created_at)
		VALUES (1, 2, 0.8, '', CURRENT_TIMESTAMP)`
	if _, err := s.db.Exec(insert); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := s.db.Exec(insert); err == nil {
		t.Error("duplicate (demand_id, supply_id) insert succeeded, want unique violation")
	}
}

func TestCloseNilSafe(t *testing.T) {
	var s Store
	if err := s.Close(); err != nil {
		t.Errorf("Close() on zero store = %v, want nil", err)
	}
}
