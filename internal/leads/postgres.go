package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/utils"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS leads (
	wa_id           TEXT PRIMARY KEY,
	name            TEXT NOT NULL DEFAULT '',
	first_seen_at   TIMESTAMPTZ NOT NULL,
	last_message_at TIMESTAMPTZ NOT NULL,
	stage           TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS lead_events (
	id    TEXT PRIMARY KEY,
	wa_id TEXT NOT NULL REFERENCES leads(wa_id),
	at    TIMESTAMPTZ NOT NULL,
	type  TEXT NOT NULL,
	data  JSONB NOT NULL DEFAULT '{}'::jsonb
);
CREATE INDEX IF NOT EXISTS idx_lead_events_wa_id_at ON lead_events(wa_id, at);
`

// PostgresStore is the production lead store, one row per lead plus an
// append-only lead_events table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Postgres DSN: %w", err)
	}

	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.MaxConnLifetime = 60 * time.Minute
	cfg.MaxConnIdleTime = 15 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply Postgres schema: %w", err)
	}

	utils.Zlog.Info("Opened Postgres lead store")
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, id, name string) (*Lead, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.ensureLead(ctx, tx, id, name); err != nil {
		return nil, err
	}

	lead, err := s.loadLead(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return lead, nil
}

func (s *PostgresStore) RecordEvent(ctx context.Context, id string, t EventType, data map[string]string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.ensureLead(ctx, tx, id, ""); err != nil {
		return err
	}

	now := time.Now().UTC()
	rawData := []byte("{}")
	if len(data) > 0 {
		if rawData, err = json.Marshal(data); err != nil {
			return fmt.Errorf("failed to marshal event data: %w", err)
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO lead_events (id, wa_id, at, type, data) VALUES ($1, $2, $3, $4, $5)`,
		newEventID(), id, now, string(t), rawData); err != nil {
		return fmt.Errorf("failed to insert event for %s: %w", id, err)
	}

	if stage, ok := StageForEvent(t); ok {
		_, err = tx.Exec(ctx,
			`UPDATE leads SET last_message_at = $1, stage = $2 WHERE wa_id = $3`,
			now, string(stage), id)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE leads SET last_message_at = $1 WHERE wa_id = $2`,
			now, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update lead %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Snapshot(ctx context.Context) ([]Lead, error) {
	rows, err := s.pool.Query(ctx,
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

	evRows, err := s.pool.Query(ctx,
		`SELECT id, wa_id, at, type, data FROM lead_events ORDER BY at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer evRows.Close()

	for evRows.Next() {
		var ev Event
		var waID, evType string
		var rawData []byte
		if err := evRows.Scan(&ev.ID, &waID, &ev.At, &evType, &rawData); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Type = EventType(evType)
		if len(rawData) > 0 {
			if err := json.Unmarshal(rawData, &ev.Data); err != nil {
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

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ensureLead(ctx context.Context, tx pgx.Tx, id, name string) error {
	now := time.Now().UTC()
	if _, err := tx.Exec(ctx,
		`INSERT INTO leads (wa_id, name, first_seen_at, last_message_at, stage)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (wa_id) DO NOTHING`,
		id, name, now, now, string(StageStart)); err != nil {
		return fmt.Errorf("failed to insert lead %s: %w", id, err)
	}
	if name != "" {
		if _, err := tx.Exec(ctx,
			`UPDATE leads SET name = $1 WHERE wa_id = $2 AND name = ''`,
			name, id); err != nil {
			return fmt.Errorf("failed to backfill lead name for %s: %w", id, err)
		}
	}
	return nil
}

func (s *PostgresStore) loadLead(ctx context.Context, tx pgx.Tx, id string) (*Lead, error) {
	var lead Lead
	var stage string
	err := tx.QueryRow(ctx,
		`SELECT wa_id, name, first_seen_at, last_message_at, stage FROM leads WHERE wa_id = $1`, id).
		Scan(&lead.ID, &lead.Name, &lead.FirstSeenAt, &lead.LastMessageAt, &stage)
	if err != nil {
		return nil, fmt.Errorf("failed to load lead %s: %w", id, err)
	}
	lead.Stage = Stage(stage)
	lead.History = []Event{}

	rows, err := tx.Query(ctx,
		`SELECT id, at, type, data FROM lead_events WHERE wa_id = $1 ORDER BY at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ev Event
		var evType string
		var rawData []byte
		if err := rows.Scan(&ev.ID, &ev.At, &evType, &rawData); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Type = EventType(evType)
		if len(rawData) > 0 {
			_ = json.Unmarshal(rawData, &ev.Data)
		}
		lead.History = append(lead.History, ev)
	}
	return &lead, rows.Err()
}
