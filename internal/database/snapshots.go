package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/trogers1052/opportunity-radar/internal/models"
)

// DefaultHistoryLimit caps TickerHistory when no limit is given
const DefaultHistoryLimit = 30

// SaveSnapshot archives a loaded snapshot and its records, returning the snapshot id
func (db *DB) SaveSnapshot(ctx context.Context, snap models.Snapshot) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var income, protection int
	for i := range snap.Records {
		switch {
		case snap.Records[i].IsIncome():
			income++
		case snap.Records[i].IsProtection():
			protection++
		}
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO snapshots (source, record_count, income_count, protection_count, loaded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, snap.Source, len(snap.Records), income, protection, snap.LoadedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	if len(snap.Records) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO snapshot_records (
				snapshot_id, ticker, name, price, iv_rank, skew, put_call_ratio,
				strategy, rationale, expiration, days_to_expiration, recommendations
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (snapshot_id, ticker) DO NOTHING
		`)
		if err != nil {
			return 0, fmt.Errorf("failed to prepare record insert: %w", err)
		}
		defer stmt.Close()

		for i := range snap.Records {
			rec := &snap.Records[i]
			recs, err := recommendationsJSON(rec)
			if err != nil {
				return 0, err
			}
			_, err = stmt.ExecContext(ctx,
				id, rec.Ticker, rec.Name, rec.Price, rec.IVRank, rec.Skew, rec.PutCallRatio,
				string(rec.Strategy), rec.Rationale, rec.Expiration, rec.DaysToExpiration, recs,
			)
			if err != nil {
				return 0, fmt.Errorf("failed to insert record %s: %w", rec.Ticker, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return id, nil
}

// recommendationsJSON returns the record's list as JSON, or nil when it has none
func recommendationsJSON(rec *models.OpportunityRecord) (any, error) {
	var list any
	switch {
	case len(rec.CoveredCalls) > 0:
		list = rec.CoveredCalls
	case len(rec.Collars) > 0:
		list = rec.Collars
	default:
		return nil, nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recommendations for %s: %w", rec.Ticker, err)
	}
	return string(data), nil
}

// TickerHistory lists archived observations of ticker, newest first
func (db *DB) TickerHistory(ctx context.Context, ticker string, limit int) ([]models.TickerHistoryPoint, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT r.snapshot_id, r.ticker, r.price, r.iv_rank, r.skew, r.strategy, s.loaded_at
		FROM snapshot_records r
		JOIN snapshots s ON s.id = r.snapshot_id
		WHERE r.ticker = $1
		ORDER BY s.loaded_at DESC, r.snapshot_id DESC
		LIMIT $2
	`, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticker history: %w", err)
	}
	defer rows.Close()

	history := []models.TickerHistoryPoint{}
	for rows.Next() {
		var p models.TickerHistoryPoint
		var strategy string
		if err := rows.Scan(&p.SnapshotID, &p.Ticker, &p.Price, &p.IVRank, &p.Skew, &strategy, &p.LoadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticker history: %w", err)
		}
		p.Strategy = models.Strategy(strategy)
		history = append(history, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ticker history: %w", err)
	}

	return history, nil
}

// SnapshotLoaded archives every successful load
func (db *DB) SnapshotLoaded(ctx context.Context, snap models.Snapshot) error {
	_, err := db.SaveSnapshot(ctx, snap)
	return err
}

// SnapshotFailed is a no-op; only successful loads are archived
func (db *DB) SnapshotFailed(ctx context.Context, source string, loadErr error) error {
	return nil
}
