package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrateCmd(t *testing.T) {
	t.Parallel()

	dbDir := t.TempDir()

	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"migrate", "--db-dir", dbDir})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("migrate error: %v", err)
	}

	dbPath := filepath.Join(dbDir, "catalog.db")
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
	if !strings.Contains(buf.String(), "schema up to date") {
		t.Errorf("unexpected output: %s", buf.String())
	}

	// Second run against the existing database is a no-op.
	cmd = NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"migrate", "--db-dir", dbDir})
	if err := cmd.Execute(); err != nil {
		t.Errorf("repeated migrate error: %v", err)
	}
}
