package leads

import (
	"context"
	"strings"
)

// Store is the injectable lead-store abstraction. The file backend is a dev
// convenience; SQLite and Postgres implement the same contract on real
// databases.
type Store interface {
	// GetOrCreate returns the lead for id, creating it at StageStart with an
	// empty history when absent. A non-empty name backfills a previously
	// empty one but never overwrites an existing name.
	GetOrCreate(ctx context.Context, id, name string) (*Lead, error)

	// RecordEvent appends an event to the lead's history, bumps
	// LastMessageAt and overwrites the stage via StageForEvent. The lead is
	// created first if it does not exist yet.
	RecordEvent(ctx context.Context, id string, t EventType, data map[string]string) error

	// Snapshot returns a point-in-time copy of every lead.
	Snapshot(ctx context.Context) ([]Lead, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open picks a backend from the DSN shape: postgres:// URLs get the pgx
// store, sqlite paths (*.db, *.sqlite, file:) the SQLite store, anything
// else is treated as a JSON file path.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return OpenPostgresStore(ctx, dsn)
	case strings.HasPrefix(dsn, "file:"),
		strings.HasSuffix(dsn, ".db"),
		strings.HasSuffix(dsn, ".sqlite"),
		strings.HasSuffix(dsn, ".sqlite3"):
		return OpenSQLiteStore(dsn)
	default:
		return OpenFileStore(dsn)
	}
}
