package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent so the full
// set is replayed on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS factories (
		id                      TEXT PRIMARY KEY,
		code                    TEXT NOT NULL UNIQUE,
		name                    TEXT NOT NULL,
		shift_start             TEXT NOT NULL DEFAULT '06:00',
		shift_end               TEXT NOT NULL DEFAULT '14:30',
		break_minutes           INTEGER NOT NULL DEFAULT 30,
		lunch_minutes           INTEGER NOT NULL DEFAULT 30,
		target_daily_throughput INTEGER NOT NULL DEFAULT 2
	)`,

	`CREATE TABLE IF NOT EXISTS team_members (
		id     TEXT PRIMARY KEY,
		name   TEXT NOT NULL,
		role   TEXT NOT NULL DEFAULT 'PM',
		email  TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id             TEXT PRIMARY KEY,
		number         TEXT NOT NULL DEFAULT '',
		name           TEXT NOT NULL,
		status         TEXT NOT NULL DEFAULT 'Planning'
		               CHECK(status IN ('Planning','Pre-PM','PM Handoff','In Progress','On Hold','Completed','Cancelled','Warranty')),
		delivery_date  TEXT,
		contract_value TEXT NOT NULL DEFAULT '0',
		factory_code   TEXT NOT NULL DEFAULT '',
		primary_pm_id  TEXT REFERENCES team_members(id) ON DELETE SET NULL,
		backup_pm_id   TEXT REFERENCES team_members(id) ON DELETE SET NULL,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_factory ON projects(factory_code)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_primary_pm ON projects(primary_pm_id)`,

	`CREATE TABLE IF NOT EXISTS work_items (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL CHECK(kind IN ('task','rfi','submittal')),
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title       TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL,
		due_date    TEXT,
		assignee_id TEXT REFERENCES team_members(id) ON DELETE SET NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_items_project ON work_items(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_work_items_assignee ON work_items(assignee_id)`,

	`CREATE TABLE IF NOT EXISTS stations (
		id         TEXT PRIMARY KEY,
		factory_id TEXT NOT NULL REFERENCES factories(id) ON DELETE CASCADE,
		code       TEXT NOT NULL DEFAULT '',
		name       TEXT NOT NULL,
		sequence   INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS workers (
		id                 TEXT PRIMARY KEY,
		factory_id         TEXT NOT NULL REFERENCES factories(id) ON DELETE CASCADE,
		name               TEXT NOT NULL,
		primary_station_id TEXT REFERENCES stations(id) ON DELETE SET NULL,
		active             INTEGER NOT NULL DEFAULT 1,
		is_lead            INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS shift_records (
		id          TEXT PRIMARY KEY,
		worker_id   TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
		clock_in    TEXT NOT NULL,
		clock_out   TEXT,
		total_hours REAL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_shift_records_clock_in ON shift_records(clock_in)`,

	`CREATE TABLE IF NOT EXISTS modules (
		id                 TEXT PRIMARY KEY,
		serial             TEXT NOT NULL,
		project_id         TEXT REFERENCES projects(id) ON DELETE SET NULL,
		factory_id         TEXT NOT NULL REFERENCES factories(id) ON DELETE CASCADE,
		status             TEXT NOT NULL DEFAULT 'Not Started',
		current_station_id TEXT REFERENCES stations(id) ON DELETE SET NULL,
		building_category  TEXT NOT NULL DEFAULT 'standard',
		build_sequence     INTEGER NOT NULL DEFAULT 0,
		completed_at       TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_modules_factory_status ON modules(factory_id, status)`,

	`CREATE TABLE IF NOT EXISTS station_assignments (
		id         TEXT PRIMARY KEY,
		station_id TEXT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
		module_id  TEXT REFERENCES modules(id) ON DELETE SET NULL,
		lead_id    TEXT REFERENCES workers(id) ON DELETE SET NULL,
		crew_ids   TEXT NOT NULL DEFAULT '[]',
		start_time TEXT NOT NULL,
		end_time   TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_station_assignments_start ON station_assignments(start_time)`,

	`CREATE TABLE IF NOT EXISTS takt_events (
		id             TEXT PRIMARY KEY,
		module_id      TEXT REFERENCES modules(id) ON DELETE CASCADE,
		station_id     TEXT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
		expected_hours REAL NOT NULL DEFAULT 0,
		actual_hours   REAL,
		completed_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS qc_records (
		id                  TEXT PRIMARY KEY,
		module_id           TEXT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		station_id          TEXT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
		inspected_at        TEXT NOT NULL,
		passed              INTEGER NOT NULL DEFAULT 0,
		rework_required     INTEGER NOT NULL DEFAULT 0,
		rework_completed_at TEXT,
		notes               TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_qc_records_inspected ON qc_records(inspected_at)`,

	`CREATE TABLE IF NOT EXISTS certifications (
		id                   TEXT PRIMARY KEY,
		worker_id            TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
		station_id           TEXT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
		level                TEXT NOT NULL CHECK(level IN ('Basic','Intermediate','Expert')),
		certified_at         TEXT NOT NULL,
		expires_at           TEXT,
		active               INTEGER NOT NULL DEFAULT 1,
		avg_completion_hours REAL,
		rework_rate          REAL
	)`,

	`CREATE TABLE IF NOT EXISTS sales_quotes (
		id                       TEXT PRIMARY KEY,
		number                   TEXT NOT NULL DEFAULT '',
		version                  INTEGER NOT NULL DEFAULT 1,
		customer_name            TEXT NOT NULL DEFAULT '',
		factory_code             TEXT NOT NULL DEFAULT '',
		status                   TEXT NOT NULL
		                         CHECK(status IN ('draft','sent','negotiating','awaiting_po','po_received','won','lost','expired','converted')),
		total_price              TEXT NOT NULL DEFAULT '0',
		outlook_percentage       INTEGER,
		expected_close_timeframe TEXT NOT NULL DEFAULT '',
		expected_close_date      TEXT,
		pm_flagged               INTEGER NOT NULL DEFAULT 0,
		converted_at             TEXT,
		converted_project_id     TEXT REFERENCES projects(id) ON DELETE SET NULL,
		created_at               TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sales_quotes_number ON sales_quotes(number, version)`,
}
