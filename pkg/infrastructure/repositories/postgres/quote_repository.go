package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vsinha/quoting/pkg/domain/entities"
	"github.com/vsinha/quoting/pkg/domain/repositories"
)

// QuoteRepository reads and writes raw quote records in PostgreSQL
type QuoteRepository struct {
	pool *pgxpool.Pool
}

// Verify interface compliance
var _ repositories.QuoteRepository = (*QuoteRepository)(nil)
var _ repositories.QuoteWriter = (*QuoteRepository)(nil)

// Open creates a pooled repository for dsn
func Open(ctx context.Context, dsn string, maxConns int32) (*QuoteRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return &QuoteRepository{pool: pool}, nil
}

// NewQuoteRepository wraps an existing pool
func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{pool: pool}
}

// Close releases the pool
func (r *QuoteRepository) Close() { r.pool.Close() }

// GetSnapshot reads all records of a quote inside one repeatable-read
// transaction so the rollup sees a consistent view
func (r *QuoteRepository) GetSnapshot(ctx context.Context, quoteID string) (*entities.QuoteSnapshot, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot read: %w", err)
	}
	defer tx.Rollback(ctx)

	snapshot := &entities.QuoteSnapshot{QuoteID: quoteID}

	if snapshot.Lines, err = queryLines(ctx, tx, quoteID); err != nil {
		return nil, err
	}
	if len(snapshot.Lines) == 0 {
		return nil, fmt.Errorf("quote %s: %w", quoteID, repositories.ErrQuoteNotFound)
	}
	if snapshot.Assemblies, err = queryAssemblies(ctx, tx, quoteID); err != nil {
		return nil, err
	}
	if snapshot.Operations, err = queryOperations(ctx, tx, quoteID); err != nil {
		return nil, err
	}
	if snapshot.Materials, err = queryMaterials(ctx, tx, quoteID); err != nil {
		return nil, err
	}
	if snapshot.LineQuantities, err = queryLineQuantities(ctx, tx, quoteID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit snapshot read: %w", err)
	}
	return snapshot, nil
}

// ListQuoteIDs returns every quote id with at least one line
func (r *QuoteRepository) ListQuoteIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT quote_id FROM quote_line ORDER BY quote_id`)
	if err != nil {
		return nil, fmt.Errorf("query quote ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan quote ids: %w", err)
	}
	return ids, nil
}

// SaveSnapshot replaces every record of the snapshot's quote
func (r *QuoteRepository) SaveSnapshot(ctx context.Context, snapshot *entities.QuoteSnapshot) error {
	if snapshot == nil || snapshot.QuoteID == "" {
		return fmt.Errorf("snapshot must carry a quote id")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range tables {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE quote_id = $1`, snapshot.QuoteID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	batch := &pgx.Batch{}
	q := snapshot.QuoteID
	for i, l := range snapshot.Lines {
		quantities := l.Quantities
		if quantities == nil {
			quantities = []float64{}
		}
		batch.Queue(`INSERT INTO quote_line (id, quote_id, item_id, description, replenishment, quantities, position)
VALUES ($1, $2, $3, $4, $5, $6, $7)`, l.ID, q, l.ItemID, l.Description, l.Replenishment.String(), quantities, i)
	}
	for i, a := range snapshot.Assemblies {
		batch.Queue(`INSERT INTO quote_assembly (id, quote_id, line_id, parent_assembly_id, quantity_per_parent, description, position)
VALUES ($1, $2, $3, $4, $5, $6, $7)`, a.ID, q, a.LineID, a.ParentAssemblyID, a.QuantityPerParent, a.Description, i)
	}
	for i, op := range snapshot.Operations {
		batch.Queue(`INSERT INTO quote_operation (id, quote_id, line_id, assembly_id, description, setup_hours, production_standard,
  standard_factor, labor_rate, overhead_rate, quoting_rate, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			op.ID, q, op.LineID, op.AssemblyID, op.Description, op.SetupHours, op.ProductionStandard,
			string(op.StandardFactor), op.LaborRate, op.OverheadRate, op.QuotingRate, i)
	}
	for i, m := range snapshot.Materials {
		batch.Queue(`INSERT INTO quote_material (id, quote_id, operation_id, item_id, description, quantity, unit_cost, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, m.ID, q, m.OperationID, m.ItemID, m.Description, m.Quantity, m.UnitCost, i)
	}
	for i, lq := range snapshot.LineQuantities {
		batch.Queue(`INSERT INTO quote_line_quantity (id, quote_id, line_id, quantity, additional_cost, unit_tax_amount,
  markup_percent, discount_percent, lead_time_days, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			lq.ID, q, lq.LineID, lq.Quantity, lq.AdditionalCost, lq.UnitTaxAmount,
			lq.MarkupPercent, lq.DiscountPercent, lq.LeadTimeDays, i)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert quote %s: %w", snapshot.QuoteID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit quote %s: %w", snapshot.QuoteID, err)
	}
	return nil
}

func queryLines(ctx context.Context, tx pgx.Tx, quoteID string) ([]entities.QuotationLine, error) {
	rows, err := tx.Query(ctx, `SELECT id, quote_id, item_id, description, replenishment, quantities
FROM quote_line WHERE quote_id = $1 ORDER BY position, id`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer rows.Close()

	var out []entities.QuotationLine
	for rows.Next() {
		var l entities.QuotationLine
		var mode string
		if err := rows.Scan(&l.ID, &l.QuoteID, &l.ItemID, &l.Description, &mode, &l.Quantities); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		if l.Replenishment, err = entities.ParseReplenishmentMode(mode); err != nil {
			return nil, fmt.Errorf("line %s: %w", l.ID, err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func queryAssemblies(ctx context.Context, tx pgx.Tx, quoteID string) ([]entities.QuotationAssembly, error) {
	rows, err := tx.Query(ctx, `SELECT id, line_id, parent_assembly_id, quantity_per_parent, description
FROM quote_assembly WHERE quote_id = $1 ORDER BY position, id`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("query assemblies: %w", err)
	}
	defer rows.Close()

	var out []entities.QuotationAssembly
	for rows.Next() {
		var a entities.QuotationAssembly
		if err := rows.Scan(&a.ID, &a.LineID, &a.ParentAssemblyID, &a.QuantityPerParent, &a.Description); err != nil {
			return nil, fmt.Errorf("scan assembly: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func queryOperations(ctx context.Context, tx pgx.Tx, quoteID string) ([]entities.QuotationOperation, error) {
	rows, err := tx.Query(ctx, `SELECT id, line_id, assembly_id, description, setup_hours, production_standard,
  standard_factor, labor_rate, overhead_rate, quoting_rate
FROM quote_operation WHERE quote_id = $1 ORDER BY position, id`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var out []entities.QuotationOperation
	for rows.Next() {
		var op entities.QuotationOperation
		var factor string
		if err := rows.Scan(&op.ID, &op.LineID, &op.AssemblyID, &op.Description, &op.SetupHours, &op.ProductionStandard,
			&factor, &op.LaborRate, &op.OverheadRate, &op.QuotingRate); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		op.StandardFactor = entities.StandardFactor(factor)
		out = append(out, op)
	}
	return out, rows.Err()
}

func queryMaterials(ctx context.Context, tx pgx.Tx, quoteID string) ([]entities.QuotationMaterial, error) {
	rows, err := tx.Query(ctx, `SELECT id, operation_id, item_id, description, quantity, unit_cost
FROM quote_material WHERE quote_id = $1 ORDER BY position, id`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	var out []entities.QuotationMaterial
	for rows.Next() {
		var m entities.QuotationMaterial
		if err := rows.Scan(&m.ID, &m.OperationID, &m.ItemID, &m.Description, &m.Quantity, &m.UnitCost); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func queryLineQuantities(ctx context.Context, tx pgx.Tx, quoteID string) ([]entities.QuotationLineQuantity, error) {
	rows, err := tx.Query(ctx, `SELECT id, line_id, quantity, additional_cost, unit_tax_amount, markup_percent,
  discount_percent, lead_time_days
FROM quote_line_quantity WHERE quote_id = $1 ORDER BY position, id`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("query line quantities: %w", err)
	}
	defer rows.Close()

	var out []entities.QuotationLineQuantity
	for rows.Next() {
		var lq entities.QuotationLineQuantity
		if err := rows.Scan(&lq.ID, &lq.LineID, &lq.Quantity, &lq.AdditionalCost, &lq.UnitTaxAmount,
			&lq.MarkupPercent, &lq.DiscountPercent, &lq.LeadTimeDays); err != nil {
			return nil, fmt.Errorf("scan line quantity: %w", err)
		}
		out = append(out, lq)
	}
	return out, rows.Err()
}
