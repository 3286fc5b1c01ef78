package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "migrations"

func TestMigrationsDirIsValid(t *testing.T) {
	if err := ValidateDir(migrationsDir); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestRequestMigrationEnforcesSingleOpenRequest(t *testing.T) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	var found bool
	for _, e := range entries {
		if !strings.Contains(e.Name(), "mechanic_car_requests") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(migrationsDir, e.Name()))
		if err != nil {
			t.Fatalf("read migration: %v", err)
		}
		txt := string(b)
		if !strings.Contains(txt, "mcr_one_open_request_per_car") {
			t.Fatalf("requests migration missing open-request unique index")
		}
		if !strings.Contains(txt, "WHERE status <> 'delivered'") {
			t.Fatalf("open-request index must exclude delivered rows")
		}
		found = true
	}
	if !found {
		t.Fatal("no mechanic_car_requests migration found")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Something New!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_something_new.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration invalid: %v", err)
	}
}
