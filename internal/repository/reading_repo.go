package repository

import (
	"context"
	"database/sql"
	"time"

	"homeguard/internal/models"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite { return &ReadingSQLite{db: db} }

const insertReadingSQL = `
	INSERT INTO readings (ts, temperature, humidity, gas, pressure, received_at)
	VALUES (?, ?, ?, ?, ?, ?)
`

// SaveBatch archives all rows within one transaction, preserving order.
func (r *ReadingSQLite) SaveBatch(ctx context.Context, rows []models.Reading) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	receivedAt := time.Now().UTC().Format("2006-01-02 15:04:05")
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, insertReadingSQL,
			row.Timestamp,
			row.Temperature,
			row.Humidity,
			row.Gas,
			row.Pressure,
			receivedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRecent returns up to limit rows, newest first by insertion order.
func (r *ReadingSQLite) ListRecent(ctx context.Context, limit int) ([]models.Reading, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ts, temperature, humidity, gas, pressure
		FROM readings ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Reading, 0, limit)
	for rows.Next() {
		var rd models.Reading
		if err := rows.Scan(&rd.Timestamp, &rd.Temperature, &rd.Humidity, &rd.Gas, &rd.Pressure); err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
