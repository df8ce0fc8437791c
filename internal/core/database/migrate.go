package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const schemaVersion = 1

// schema is the initial DDL. Statements are idempotent so a fresh deploy and
// a restart behave the same; the schema_migrations row skips re-execution.
const schema = `
CREATE TABLE IF NOT EXISTS companies (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    sector TEXT,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS areas (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    company_id INTEGER NOT NULL REFERENCES companies(id)
);

CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'viewer',
    company_id INTEGER,
    area_id INTEGER,
    last_login TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS clients (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT,
    contact_person TEXT,
    address TEXT,
    company_id INTEGER,
    email_notifications BOOLEAN DEFAULT TRUE,
    is_active BOOLEAN DEFAULT TRUE,
    notes TEXT,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS kpis (
    id SERIAL PRIMARY KEY,
    company_id INTEGER NOT NULL,
    area_id INTEGER,
    name TEXT NOT NULL,
    description TEXT,
    target TEXT,
    annual_goal TEXT,
    unit TEXT,
    frequency TEXT,
    responsible TEXT,
    inverted_metric BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS kpi_values (
    id SERIAL PRIMARY KEY,
    kpi_id INTEGER NOT NULL REFERENCES kpis(id),
    company_id INTEGER NOT NULL,
    value TEXT NOT NULL,
    period TEXT,
    month TEXT,
    year INTEGER,
    date TIMESTAMPTZ DEFAULT NOW(),
    compliance_percentage TEXT,
    status TEXT,
    comments TEXT,
    updated_by INTEGER
);

CREATE INDEX IF NOT EXISTS idx_kpi_values_kpi ON kpi_values(kpi_id, company_id);

CREATE TABLE IF NOT EXISTS shipments (
    id SERIAL PRIMARY KEY,
    tracking_code TEXT NOT NULL UNIQUE,
    company_id INTEGER NOT NULL,
    customer_id INTEGER REFERENCES clients(id),
    customer_name TEXT NOT NULL,
    customer_email TEXT,
    invoice_number TEXT,
    origin TEXT NOT NULL,
    destination TEXT NOT NULL,
    product TEXT NOT NULL,
    quantity TEXT NOT NULL,
    unit TEXT NOT NULL,
    carrier TEXT,
    transport_cost DOUBLE PRECISION,
    status TEXT NOT NULL DEFAULT 'pending',
    departure_date TIMESTAMPTZ,
    estimated_delivery_date TIMESTAMPTZ,
    actual_delivery_date TIMESTAMPTZ,
    in_route_at TIMESTAMPTZ,
    delivered_at TIMESTAMPTZ,
    comments TEXT,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS shipment_items (
    id SERIAL PRIMARY KEY,
    shipment_id INTEGER NOT NULL REFERENCES shipments(id),
    product TEXT NOT NULL,
    quantity TEXT NOT NULL,
    unit TEXT NOT NULL,
    description TEXT,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS shipment_updates (
    id SERIAL PRIMARY KEY,
    shipment_id INTEGER NOT NULL REFERENCES shipments(id),
    status TEXT NOT NULL,
    location TEXT,
    comments TEXT,
    updated_by INTEGER,
    timestamp TIMESTAMPTZ DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_shipment_updates_shipment ON shipment_updates(shipment_id);

CREATE TABLE IF NOT EXISTS shipment_cycle_times (
    id SERIAL PRIMARY KEY,
    shipment_id INTEGER NOT NULL UNIQUE REFERENCES shipments(id),
    company_id INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    pending_at TIMESTAMPTZ,
    in_transit_at TIMESTAMPTZ,
    delivered_at TIMESTAMPTZ,
    closed_at TIMESTAMPTZ,
    hours_pending_to_transit TEXT,
    hours_transit_to_delivered TEXT,
    hours_delivered_to_closed TEXT,
    hours_total_cycle TEXT,
    hours_to_delivery TEXT,
    computed_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS shipment_notifications (
    id SERIAL PRIMARY KEY,
    shipment_id INTEGER NOT NULL REFERENCES shipments(id),
    email_to TEXT NOT NULL,
    subject TEXT NOT NULL,
    status TEXT NOT NULL,
    sent_by INTEGER NOT NULL,
    shipment_status TEXT NOT NULL,
    error_message TEXT,
    sent_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS notifications (
    id SERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT 'info',
    from_user_id INTEGER NOT NULL,
    to_user_id INTEGER,
    company_id INTEGER,
    area_id INTEGER,
    priority TEXT NOT NULL DEFAULT 'normal',
    read BOOLEAN DEFAULT FALSE,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    read_at TIMESTAMPTZ
);

INSERT INTO companies (id, name, description, sector)
VALUES
    (1, 'Dura International', 'Importación y distribución de productos químicos', 'Químico'),
    (2, 'Grupo Orsega', 'Distribución de productos industriales', 'Industrial')
ON CONFLICT (id) DO NOTHING;

SELECT setval('companies_id_seq', (SELECT MAX(id) FROM companies))
`

// Migrate applies the embedded schema once, tracked in schema_migrations.
func Migrate(db *sqlx.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS schema_migrations (
            version INT PRIMARY KEY,
            applied_at TIMESTAMPTZ DEFAULT NOW()
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = $1", schemaVersion).Scan(&count); err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, query := range strings.Split(schema, ";") {
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration statement: %w", err)
		}
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", schemaVersion); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}
