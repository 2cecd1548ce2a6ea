// Package sqlite_test contains integration tests for the SQLite
// repositories.
//
// This file is the single point where the database schema is loaded for
// tests. All test setup uses db.GetSchemaSQL() so test databases cannot
// drift from the authoritative schema.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/foreman/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedOrganization inserts a test organization and returns its ID.
func seedOrganization(t *testing.T, db *sql.DB, id string) string {
	t.Helper()
	if id == "" {
		id = "ORG-001"
	}
	_, err := db.Exec("INSERT INTO organizations (id, name, created_at) VALUES (?, 'Test Org', '2026-08-01T00:00:00Z')", id)
	if err != nil {
		t.Fatalf("failed to seed organization: %v", err)
	}
	return id
}

// seedTeam inserts a test team under an organization and returns its ID.
func seedTeam(t *testing.T, db *sql.DB, id, orgID string) string {
	t.Helper()
	if id == "" {
		id = "TEAM-001"
	}
	_, err := db.Exec("INSERT INTO teams (id, organization_id, name, created_at) VALUES (?, ?, 'Test Team', '2026-08-01T00:00:00Z')", id, orgID)
	if err != nil {
		t.Fatalf("failed to seed team: %v", err)
	}
	return id
}

// seedSprint inserts a test sprint and returns its ID.
func seedSprint(t *testing.T, db *sql.DB, id, teamID string) string {
	t.Helper()
	if id == "" {
		id = "SPR-001"
	}
	_, err := db.Exec("INSERT INTO sprints (id, team_id, name, state, created_at, updated_at) VALUES (?, ?, 'Test Sprint', 'active', '2026-08-01T00:00:00Z', '2026-08-01T00:00:00Z')", id, teamID)
	if err != nil {
		t.Fatalf("failed to seed sprint: %v", err)
	}
	return id
}

// seedWorkItem inserts a test work item and returns its ID.
func seedWorkItem(t *testing.T, db *sql.DB, id, sprintID, state string) string {
	t.Helper()
	if id == "" {
		id = "ITEM-001"
	}
	if state == "" {
		state = "backlog"
	}
	_, err := db.Exec("INSERT INTO work_items (id, sprint_id, title, state, created_at, updated_at) VALUES (?, ?, 'Test Item', ?, '2026-08-01T00:00:00Z', '2026-08-01T00:00:00Z')", id, sprintID, state)
	if err != nil {
		t.Fatalf("failed to seed work item: %v", err)
	}
	return id
}
