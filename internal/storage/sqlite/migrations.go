package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Amounts are stored as decimal strings; days as YYYY-MM-DD text.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    real_name TEXT NOT NULL,
    role TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    leader TEXT NOT NULL,
    members_count INTEGER NOT NULL DEFAULT 0,
    location TEXT NOT NULL,
    performance INTEGER NOT NULL DEFAULT 0,
    available_quota TEXT NOT NULL DEFAULT '0'
);

CREATE TABLE IF NOT EXISTS residents (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    id_card TEXT NOT NULL,
    level TEXT NOT NULL,
    group_id TEXT NOT NULL,
    active_score INTEGER NOT NULL DEFAULT 0,
    monthly_usage_count INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    credit_score INTEGER NOT NULL DEFAULT 0,
    join_date TEXT,
    last_allocated_on TEXT,
    FOREIGN KEY (group_id) REFERENCES groups(id)
);

CREATE TABLE IF NOT EXISTS orders (
    id TEXT PRIMARY KEY,
    product_name TEXT NOT NULL,
    enterprise_id TEXT NOT NULL,
    enterprise_name TEXT NOT NULL,
    quantity REAL NOT NULL,
    total_amount TEXT NOT NULL,
    order_date TEXT NOT NULL,
    status TEXT NOT NULL,
    split_count INTEGER NOT NULL DEFAULT 0,
    deposit_paid INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sub_orders (
    id TEXT PRIMARY KEY,
    parent_order_id TEXT NOT NULL,
    resident_id TEXT NOT NULL,
    resident_name TEXT NOT NULL,
    resident_id_display TEXT NOT NULL,
    amount TEXT NOT NULL,
    status TEXT NOT NULL,
    group_name TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (parent_order_id) REFERENCES orders(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_residents_group_id ON residents(group_id);
CREATE INDEX IF NOT EXISTS idx_orders_date ON orders(order_date);
CREATE INDEX IF NOT EXISTS idx_sub_orders_parent ON sub_orders(parent_order_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
