package postgres

import (
	"context"
	"fmt"
)

// Record ids are unique within a quote, so every key leads with quote_id.
const schema = `
CREATE TABLE IF NOT EXISTS quote_line (
  quote_id TEXT NOT NULL,
  id TEXT NOT NULL,
  item_id TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  replenishment TEXT NOT NULL DEFAULT 'Make',
  quantities DOUBLE PRECISION[] NOT NULL DEFAULT '{}',
  position INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (quote_id, id)
);

CREATE TABLE IF NOT EXISTS quote_assembly (
  quote_id TEXT NOT NULL,
  id TEXT NOT NULL,
  line_id TEXT NOT NULL,
  parent_assembly_id TEXT,
  quantity_per_parent DOUBLE PRECISION,
  description TEXT NOT NULL DEFAULT '',
  position INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (quote_id, id)
);

CREATE TABLE IF NOT EXISTS quote_operation (
  quote_id TEXT NOT NULL,
  id TEXT NOT NULL,
  line_id TEXT NOT NULL,
  assembly_id TEXT,
  description TEXT NOT NULL DEFAULT '',
  setup_hours DOUBLE PRECISION,
  production_standard DOUBLE PRECISION,
  standard_factor TEXT NOT NULL DEFAULT '',
  labor_rate DOUBLE PRECISION,
  overhead_rate DOUBLE PRECISION,
  quoting_rate DOUBLE PRECISION,
  position INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (quote_id, id)
);

CREATE TABLE IF NOT EXISTS quote_material (
  quote_id TEXT NOT NULL,
  id TEXT NOT NULL,
  operation_id TEXT NOT NULL,
  item_id TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  quantity DOUBLE PRECISION,
  unit_cost DOUBLE PRECISION,
  position INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (quote_id, id)
);

CREATE TABLE IF NOT EXISTS quote_line_quantity (
  quote_id TEXT NOT NULL,
  id TEXT NOT NULL,
  line_id TEXT NOT NULL,
  quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
  additional_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
  unit_tax_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
  markup_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
  discount_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
  lead_time_days INTEGER NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (quote_id, id)
);
`

// tables in delete order
var tables = []string{
	"quote_material",
	"quote_line_quantity",
	"quote_operation",
	"quote_assembly",
	"quote_line",
}

// Migrate creates the quote tables when they do not exist
func (r *QuoteRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate quote schema: %w", err)
	}
	return nil
}
