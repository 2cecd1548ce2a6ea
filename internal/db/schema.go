package db

// SchemaSQL is the complete schema for fresh foreman installs.
//
// This is the single source of truth for the database schema. Tests build
// their in-memory databases from GetSchemaSQL(); if repository code
// references a column that is missing here, tests fail immediately with
// "no such column" instead of drifting.
const SchemaSQL = `
-- Organizations (top-level grouping for teams)
CREATE TABLE IF NOT EXISTS organizations (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL
);

-- Teams (groups of agents under an organization)
CREATE TABLE IF NOT EXISTS teams (
	id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	name TEXT NOT NULL,
	escalation_kind TEXT,
	escalation_agent_id TEXT,
	created_at TEXT NOT NULL,
	FOREIGN KEY (organization_id) REFERENCES organizations(id)
);

-- Team members (agent memberships with roles)
CREATE TABLE IF NOT EXISTS team_members (
	team_id TEXT NOT NULL,
	agent_id TEXT NOT NULL,
	role TEXT NOT NULL,
	PRIMARY KEY (team_id, agent_id),
	FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE
);

-- Sprints (bounded work containers owned by a team)
CREATE TABLE IF NOT EXISTS sprints (
	id TEXT PRIMARY KEY,
	team_id TEXT NOT NULL,
	name TEXT NOT NULL,
	state TEXT NOT NULL CHECK(state IN ('planning', 'active', 'review', 'retrospective', 'closed')) DEFAULT 'planning',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (team_id) REFERENCES teams(id)
);

-- Work items (units of work inside a sprint)
CREATE TABLE IF NOT EXISTS work_items (
	id TEXT PRIMARY KEY,
	sprint_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	state TEXT NOT NULL CHECK(state IN ('backlog', 'ready', 'in_progress', 'in_review', 'blocked', 'done', 'dropped')) DEFAULT 'backlog',
	assignee_agent_id TEXT,
	acceptance_criteria TEXT NOT NULL DEFAULT '[]',
	external_refs TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (sprint_id) REFERENCES sprints(id)
);

-- Delegations (append-only hand-offs on a work item)
CREATE TABLE IF NOT EXISTS delegations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	work_item_id TEXT NOT NULL,
	from_agent_id TEXT NOT NULL,
	to_agent_id TEXT NOT NULL,
	delegated_at TEXT NOT NULL,
	session_key TEXT NOT NULL,
	isolated INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL CHECK(status IN ('active', 'completed', 'failed')) DEFAULT 'active',
	completed_at TEXT,
	outcome TEXT,
	FOREIGN KEY (work_item_id) REFERENCES work_items(id) ON DELETE CASCADE
);

-- Reviews (verdicts requested on a work item)
CREATE TABLE IF NOT EXISTS reviews (
	id TEXT PRIMARY KEY,
	work_item_id TEXT NOT NULL,
	reviewer_agent_id TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'approved', 'changes_requested')) DEFAULT 'pending',
	feedback TEXT,
	requested_at TEXT NOT NULL,
	decided_at TEXT,
	FOREIGN KEY (work_item_id) REFERENCES work_items(id) ON DELETE CASCADE
);

-- Escalations (notifications for blocked items and timed-out delegations)
CREATE TABLE IF NOT EXISTS escalations (
	id TEXT PRIMARY KEY,
	"trigger" TEXT NOT NULL CHECK("trigger" IN ('blocked', 'timeout')),
	target_kind TEXT NOT NULL,
	target_agent_id TEXT NOT NULL,
	work_item_id TEXT NOT NULL,
	sprint_id TEXT NOT NULL,
	agent_id TEXT,
	message TEXT,
	created_at TEXT NOT NULL,
	resolved_at TEXT,
	resolution TEXT,
	FOREIGN KEY (work_item_id) REFERENCES work_items(id)
);

CREATE INDEX IF NOT EXISTS idx_work_items_sprint ON work_items(sprint_id);
CREATE INDEX IF NOT EXISTS idx_work_items_state ON work_items(state);
CREATE INDEX IF NOT EXISTS idx_delegations_item ON delegations(work_item_id);
CREATE INDEX IF NOT EXISTS idx_delegations_session ON delegations(session_key);
CREATE INDEX IF NOT EXISTS idx_escalations_item ON escalations(work_item_id);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent
// drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
