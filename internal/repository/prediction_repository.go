package repository

import (
	"context"

	"aironix-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const createPredictionsTable = `
CREATE TABLE IF NOT EXISTS stock_predictions (
    id              BIGSERIAL        PRIMARY KEY,
    stock_symbol    TEXT             NOT NULL,
    model_id        INTEGER          NOT NULL,
    current_close   DOUBLE PRECISION NOT NULL,
    predicted_close DOUBLE PRECISION NOT NULL,
    status          TEXT             NOT NULL DEFAULT '',
    fetched_at      TIMESTAMPTZ      NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stock_predictions_group_time
    ON stock_predictions (stock_symbol, model_id, fetched_at DESC);
`

const predictionColumns = `id, stock_symbol, model_id, current_close, predicted_close, status, fetched_at`

// PredictionRepository owns the append-only prediction history. Rows are
// never updated; the only write operations are Append and Clear.
type PredictionRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewPredictionRepository(pool PgxPool, tracer trace.Tracer) *PredictionRepository {
	return &PredictionRepository{pool: pool, tracer: tracer}
}

func (r *PredictionRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "prediction-repo.run-migrations")
	defer span.End()

	if _, err := r.pool.Exec(ctx, createPredictionsTable); err != nil {
		return domain.NewStoreError("predictions.migrate", err)
	}
	return nil
}

func (r *PredictionRepository) Append(ctx context.Context, rec *domain.PredictionRecord) error {
	_, span := r.tracer.Start(ctx, "prediction-repo.append")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO stock_predictions (stock_symbol, model_id, current_close, predicted_close, status, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.StockSymbol, rec.ModelID, rec.CurrentClose, rec.PredictedClose, rec.Status, rec.FetchedAt.UTC(),
	)
	if err != nil {
		return domain.NewStoreError("predictions.append", err)
	}
	return nil
}

// ListBySymbol returns the prediction history for a symbol, most recent
// fetch first. A modelID of 0 means no model filter.
func (r *PredictionRepository) ListBySymbol(ctx context.Context, symbol string, modelID, limit int) ([]domain.PredictionRecord, error) {
	_, span := r.tracer.Start(ctx, "prediction-repo.list-by-symbol")
	defer span.End()

	var (
		rows pgx.Rows
		err  error
	)
	if modelID > 0 {
		rows, err = r.pool.Query(ctx,
			`SELECT `+predictionColumns+`
			 FROM stock_predictions
			 WHERE stock_symbol = $1 AND model_id = $2
			 ORDER BY fetched_at DESC, id DESC
			 LIMIT $3`,
			symbol, modelID, limit,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+predictionColumns+`
			 FROM stock_predictions
			 WHERE stock_symbol = $1
			 ORDER BY fetched_at DESC, id DESC
			 LIMIT $2`,
			symbol, limit,
		)
	}
	if err != nil {
		return nil, domain.NewStoreError("predictions.list", err)
	}
	defer rows.Close()

	return scanPredictionRows(rows, limit)
}

// ListLatestPerGroup returns exactly one record per distinct
// (stock_symbol, model_id) pair: the one with the maximum fetched_at.
// Result ordered by symbol asc, then model id asc.
func (r *PredictionRepository) ListLatestPerGroup(ctx context.Context) ([]domain.PredictionRecord, error) {
	_, span := r.tracer.Start(ctx, "prediction-repo.list-latest-per-group")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ON (stock_symbol, model_id) `+predictionColumns+`
		 FROM stock_predictions
		 ORDER BY stock_symbol ASC, model_id ASC, fetched_at DESC, id DESC`,
	)
	if err != nil {
		return nil, domain.NewStoreError("predictions.latest-per-group", err)
	}
	defer rows.Close()

	return scanPredictionRows(rows, 0)
}

// Clear truncates the prediction history. Maintenance operation only.
func (r *PredictionRepository) Clear(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "prediction-repo.clear")
	defer span.End()

	if _, err := r.pool.Exec(ctx, `DELETE FROM stock_predictions`); err != nil {
		return domain.NewStoreError("predictions.clear", err)
	}
	return nil
}

func scanPredictionRows(rows pgx.Rows, sizeHint int) ([]domain.PredictionRecord, error) {
	records := make([]domain.PredictionRecord, 0, sizeHint)
	for rows.Next() {
		var rec domain.PredictionRecord
		if err := rows.Scan(&rec.ID, &rec.StockSymbol, &rec.ModelID, &rec.CurrentClose, &rec.PredictedClose, &rec.Status, &rec.FetchedAt); err != nil {
			return nil, domain.NewStoreError("predictions.scan", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("predictions.scan", err)
	}
	return records, nil
}
