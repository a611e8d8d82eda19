package db

import (
	"path/filepath"
	"testing"

	"github.com/deemkeen/postbox/domain"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestLoadSessionEmpty(t *testing.T) {
	database := setupTestDB(t)

	s, err := database.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if s != nil {
		t.Errorf("Expected no session, got %+v", s)
	}
}

func TestSaveAndLoadSession(t *testing.T) {
	database := setupTestDB(t)

	in := domain.Session{LoggedIn: true, Token: "tok", Username: "al", Avatar: "a.png"}
	if err := database.SaveSession(in); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	out, err := database.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if out == nil {
		t.Fatal("Expected a session, got nil")
	}
	if *out != in {
		t.Errorf("Expected %+v, got %+v", in, *out)
	}

	n, _ := database.CountEntries()
	if n != 3 {
		t.Errorf("Expected 3 entries, got %d", n)
	}
}

func TestSaveSessionOverwrites(t *testing.T) {
	database := setupTestDB(t)

	database.SaveSession(domain.Session{Token: "one", Username: "al", Avatar: "a"})
	database.SaveSession(domain.Session{Token: "two", Username: "bo", Avatar: "b"})

	out, err := database.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if out.Token != "two" || out.Username != "bo" || out.Avatar != "b" {
		t.Errorf("Expected second session, got %+v", out)
	}

	n, _ := database.CountEntries()
	if n != 3 {
		t.Errorf("Expected 3 entries after overwrite, got %d", n)
	}
}

func TestClearSession(t *testing.T) {
	database := setupTestDB(t)

	database.SaveSession(domain.Session{Token: "tok", Username: "al", Avatar: "a"})
	if err := database.ClearSession(); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}

	n, _ := database.CountEntries()
	if n != 0 {
		t.Errorf("Expected 0 entries after clear, got %d", n)
	}

	s, _ := database.LoadSession()
	if s != nil {
		t.Errorf("Expected no session after clear, got %+v", s)
	}

	// clearing twice is fine
	if err := database.ClearSession(); err != nil {
		t.Errorf("Second ClearSession failed: %v", err)
	}
}

func TestSessionSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	first.SaveSession(domain.Session{Token: "tok", Username: "al", Avatar: "a"})
	first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer second.Close()

	s, err := second.LoadSession()
	if err != nil || s == nil {
		t.Fatalf("Expected persisted session, got %v, %v", s, err)
	}
	if s.Username != "al" {
		t.Errorf("Expected username 'al', got '%s'", s.Username)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	database := setupTestDB(t)

	if err := database.RunMigrations(); err != nil {
		t.Fatalf("Second RunMigrations failed: %v", err)
	}

	var version int
	database.db.QueryRow(sqlSelectSchemaVersion).Scan(&version)
	if version != len(migrations) {
		t.Errorf("Expected schema version %d, got %d", len(migrations), version)
	}
}
