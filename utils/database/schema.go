package database

// Schemas is applied in order on every start. Every statement is idempotent and
// sticks to types both SQLite and PostgreSQL accept.
var Schemas = []string{`
CREATE TABLE IF NOT EXISTS categories (
	name TEXT PRIMARY KEY,
	prefix TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	color INTEGER NOT NULL DEFAULT 0,
	emoji TEXT NOT NULL DEFAULT ''
);
`, `
CREATE TABLE IF NOT EXISTS category_subcategories (
	category TEXT NOT NULL REFERENCES categories(name) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	PRIMARY KEY (category, name)
);
`, `
CREATE TABLE IF NOT EXISTS rules (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL REFERENCES categories(name),
	subcategory TEXT NOT NULL,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	keywords TEXT NOT NULL DEFAULT '[]',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	priority TEXT NOT NULL DEFAULT 'medium',
	appeal_process TEXT NOT NULL DEFAULT '',
	created_by TEXT NOT NULL DEFAULT '',
	updated_by TEXT NOT NULL DEFAULT '',
	created_at BIGINT NOT NULL,
	updated_at BIGINT NOT NULL
);
`, `
CREATE INDEX IF NOT EXISTS rules_category_idx ON rules(category, subcategory);
`, `
CREATE TABLE IF NOT EXISTS punishment_tiers (
	rule_id TEXT NOT NULL REFERENCES rules(id) ON DELETE CASCADE,
	severity INTEGER NOT NULL,
	action TEXT NOT NULL,
	duration_seconds BIGINT,
	fine BIGINT,
	appeal_eligible BOOLEAN NOT NULL DEFAULT FALSE,
	staff_discretion BOOLEAN NOT NULL DEFAULT FALSE,
	details TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (rule_id, severity)
);
`, `
CREATE TABLE IF NOT EXISTS violations (
	id TEXT PRIMARY KEY,
	member_id TEXT NOT NULL,
	rule_id TEXT NOT NULL REFERENCES rules(id),
	ordinal INTEGER NOT NULL,
	staff_id TEXT NOT NULL,
	severity INTEGER NOT NULL,
	action TEXT NOT NULL,
	duration_seconds BIGINT,
	fine BIGINT,
	appeal_eligible BOOLEAN NOT NULL DEFAULT FALSE,
	staff_discretion BOOLEAN NOT NULL DEFAULT FALSE,
	notes TEXT NOT NULL DEFAULT '',
	issued_at BIGINT NOT NULL,
	expires_at BIGINT,
	expired BOOLEAN NOT NULL DEFAULT FALSE,
	expired_at BIGINT
);
`, `
CREATE INDEX IF NOT EXISTS violations_member_rule_idx ON violations(member_id, rule_id);
`, `
CREATE INDEX IF NOT EXISTS violations_expiry_idx ON violations(expired, expires_at);
`, `
CREATE TABLE IF NOT EXISTS tickets (
	id TEXT PRIMARY KEY,
	member_id TEXT NOT NULL,
	channel_id TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL,
	urgency TEXT NOT NULL DEFAULT 'Medium',
	priority INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'open',
	created_at BIGINT NOT NULL,
	last_activity BIGINT NOT NULL,
	closed_at BIGINT,
	closed_by TEXT,
	close_reason TEXT
);
`, `
CREATE INDEX IF NOT EXISTS tickets_status_idx ON tickets(status, last_activity);
`, `
CREATE TABLE IF NOT EXISTS counters (
	name TEXT PRIMARY KEY,
	value BIGINT NOT NULL
);
`, `
CREATE TABLE IF NOT EXISTS action_logs (
	id TEXT PRIMARY KEY,
	action_type TEXT NOT NULL,
	staff_id TEXT NOT NULL,
	target_id TEXT NOT NULL DEFAULT '',
	details TEXT NOT NULL,
	timestamp BIGINT NOT NULL
);
`, `
CREATE INDEX IF NOT EXISTS action_logs_timestamp_idx ON action_logs(timestamp);
`}
