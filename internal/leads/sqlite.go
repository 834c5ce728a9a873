package leads

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/utils"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS leads (
	wa_id           TEXT PRIMARY KEY,
	name            TEXT NOT NULL DEFAULT '',
	first_seen_at   TIMESTAMP NOT NULL,
	last_message_at TIMESTAMP NOT NULL,
	stage           TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS lead_events (
	id    TEXT PRIMARY KEY,
	wa_id TEXT NOT NULL REFERENCES leads(wa_id),
	at    TIMESTAMP NOT NULL,
	type  TEXT NOT NULL,
	data  TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_lead_events_wa_id_at ON lead_events(wa_id, at);
`

// SQLiteStore persists leads in a local SQLite database. Events live in
// their own table so history stays append-only at the schema level.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}

	utils.Zlog.Info("Opened SQLite lead store", zap.String("dsn", dsn))
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetOrCreate(ctx context.Context, id, name string) (*Lead, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureLeadTx(ctx, tx, id, name); err != nil {
		return nil, err
	}

	lead, err := loadLeadTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return lead, nil
}

func (s *SQLiteStore) RecordEvent(ctx context.Context, id string, t EventType, data map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureLeadTx(ctx, tx, id, ""); err != nil {
		return err
	}

	now := time.Now().UTC()
	rawData := "{}"
	if len(data) > 0 {
		b, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal event data: %w", err)
		}
		rawData = string(b)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO lead_events (id, wa_id, at, type, data) VALUES (?, ?, ?, ?, ?)`,
		newEventID(), id, now, string(t), rawData); err != nil {
		return fmt.Errorf("failed to insert event for %s: %w", id, err)
	}

	if stage, ok := StageForEvent(t); ok {
		_, err = tx.ExecContext(ctx,
			`UPDATE leads SET last_message_at = ?, stage = ? WHERE wa_id = ?`,
			now, string(stage), id)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE leads SET last_message_at = ? WHERE wa_id = ?`,
			now, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update lead %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Snapshot(ctx context.Context) ([]Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT wa_id, name, first_seen_at, last_message_at, stage FROM leads`)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*Lead)
	order := []string{}
	for rows.Next() {
		var lead Lead
		var stage string
		if err := rows.Scan(&lead.ID, &lead.Name, &lead.FirstSeenAt, &lead.LastMessageAt, &stage); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		lead.Stage = Stage(stage)
		lead.History = []Event{}
		byID[lead.ID] = &lead
		order = append(order, lead.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	evRows, err := s.db.QueryContext(ctx,
		`SELECT id, wa_id, at, type, data FROM lead_events ORDER BY at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer evRows.Close()

	for evRows.Next() {
		var ev Event
		var waID, evType, rawData string
		if err := evRows.Scan(&ev.ID, &waID, &ev.At, &evType, &rawData); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Type = EventType(evType)
		if rawData != "" && rawData != "{}" {
			if err := json.Unmarshal([]byte(rawData), &ev.Data); err != nil {
				utils.Zlog.Warn("Skipping malformed event data",
					zap.String("event_id", ev.ID), zap.Error(err))
			}
		}
		if lead, ok := byID[waID]; ok {
			lead.History = append(lead.History, ev)
		}
	}
	if err := evRows.Err(); err != nil {
		return nil, err
	}

	out := make([]Lead, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ensureLeadTx inserts the lead if missing and backfills an empty name.
func ensureLeadTx(ctx context.Context, tx *sql.Tx, id, name string) error {
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO leads (wa_id, name, first_seen_at, last_message_at, stage)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (wa_id) DO NOTHING`,
		id, name, now, now, string(StageStart)); err != nil {
		return fmt.Errorf("failed to insert lead %s: %w", id, err)
	}
	if name != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE leads SET name = ? WHERE wa_id = ? AND name = ''`,
			name, id); err != nil {
			return fmt.Errorf("failed to backfill lead name for %s: %w", id, err)
		}
	}
	return nil
}

func loadLeadTx(ctx context.Context, tx *sql.Tx, id string) (*Lead, error) {
	var lead Lead
	var stage string
	err := tx.QueryRowContext(ctx,
		`SELECT wa_id, name, first_seen_at, last_message_at, stage FROM leads WHERE wa_id = ?`, id).
		Scan(&lead.ID, &lead.Name, &lead.FirstSeenAt, &lead.LastMessageAt, &stage)
	if err != nil {
		return nil, fmt.Errorf("failed to load lead %s: %w", id, err)
	}
	lead.Stage = Stage(stage)
	lead.History = []Event{}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, at, type, data FROM lead_events WHERE wa_id = ? ORDER BY at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ev Event
		var evType, rawData string
		if err := rows.Scan(&ev.ID, &ev.At, &evType, &rawData); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Type = EventType(evType)
		if rawData != "" && rawData != "{}" {
			_ = json.Unmarshal([]byte(rawData), &ev.Data)
		}
		lead.History = append(lead.History, ev)
	}
	return &lead, rows.Err()
}
