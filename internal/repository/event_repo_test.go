package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"homeguard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestEventAppend_Success_WithDefaults(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewEventSQLite(db)

	// Generated id and timestamp are unknown; match shape and the
	// normalized type/message values.
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO alert_events (id, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?)
	`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(),
			"EMERGENCY", "thresholds exceeded",
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Append(ctx(t), models.AlertEvent{
		// EventID empty -> repo generates
		// OccurredAt zero -> repo sets UTC now
		Type:        "  emergency ",
		Description: "thresholds exceeded",
		Metadata:    map[string]any{"recipient": "x@y", "delivered": true},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventAppend_DBError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewEventSQLite(db)

	mock.ExpectExec("INSERT INTO alert_events").
		WillReturnError(errors.New("disk full"))

	if err := repo.Append(ctx(t), models.AlertEvent{Type: "SAFE_SUMMARY", Description: "x"}); err == nil {
		t.Fatal("expected error from Exec")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventList_FiltersAndScan(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewEventSQLite(db)

	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	occurred := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("ev-1", occurred, "EMERGENCY", "thresholds exceeded", `{"delivered":true}`).
		AddRow("ev-2", occurred, "EMERGENCY", "thresholds exceeded", nil)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, occurred_at, type, message, meta FROM alert_events WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC`,
	)).
		WithArgs(from, to, "EMERGENCY").
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), from, to, " emergency ")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 events, got %d", len(got))
	}

	meta, ok := got[0].Metadata.(map[string]any)
	if !ok {
		t.Fatalf("metadata should decode to a map, got %T", got[0].Metadata)
	}
	if delivered, _ := meta["delivered"].(bool); !delivered {
		t.Fatalf("metadata content lost: %+v", meta)
	}
	if got[1].Metadata != nil {
		t.Fatalf("null meta must stay nil, got %+v", got[1].Metadata)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventList_NoFilters(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewEventSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, occurred_at, type, message, meta FROM alert_events ORDER BY occurred_at ASC`,
	)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}))

	got, err := repo.List(ctx(t), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want no events, got %d", len(got))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
