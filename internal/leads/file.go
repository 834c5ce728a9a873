package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/robertorodriguesrl2-cmd/botpmx-backend/internal/utils"
)

// FileStore keeps every lead in memory and rewrites the whole JSON file
// after each mutation. Good enough for dev; production should point
// LEADS_DSN at SQLite or Postgres.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	leads map[string]*Lead
}

// OpenFileStore loads the JSON file at path if it exists. A missing file is
// not an error, it just means an empty store.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:  path,
		leads: make(map[string]*Lead),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read lead store file: %w", err)
		}
		return s, nil
	}

	if err := json.Unmarshal(raw, &s.leads); err != nil {
		return nil, fmt.Errorf("failed to parse lead store file %s: %w", path, err)
	}

	utils.Zlog.Info("Loaded leads from file",
		zap.String("path", path),
		zap.Int("count", len(s.leads)))
	return s, nil
}

func (s *FileStore) GetOrCreate(ctx context.Context, id, name string) (*Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead := s.getOrCreateLocked(id, name)
	cp := lead.Clone()
	return &cp, nil
}

func (s *FileStore) getOrCreateLocked(id, name string) *Lead {
	if lead, ok := s.leads[id]; ok {
		if name != "" && lead.Name == "" {
			lead.Name = name
			s.saveLocked()
		}
		return lead
	}

	now := time.Now().UTC()
	lead := &Lead{
		ID:            id,
		Name:          name,
		FirstSeenAt:   now,
		LastMessageAt: now,
		Stage:         StageStart,
		History:       []Event{},
	}
	s.leads[id] = lead
	s.saveLocked()
	return lead
}

func (s *FileStore) RecordEvent(ctx context.Context, id string, t EventType, data map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead := s.getOrCreateLocked(id, "")
	now := time.Now().UTC()

	lead.History = append(lead.History, Event{
		ID:   newEventID(),
		At:   now,
		Type: t,
		Data: data,
	})
	lead.LastMessageAt = now
	if stage, ok := StageForEvent(t); ok {
		lead.Stage = stage
	}

	s.saveLocked()
	return nil
}

func (s *FileStore) Snapshot(ctx context.Context) ([]Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		out = append(out, lead.Clone())
	}
	return out, nil
}

func (s *FileStore) Ping(ctx context.Context) error { return nil }

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
	return nil
}

// saveLocked rewrites the whole file. Write failures are logged and
// swallowed so a broken disk never takes the message path down.
func (s *FileStore) saveLocked() {
	raw, err := json.MarshalIndent(s.leads, "", "  ")
	if err != nil {
		utils.Zlog.Warn("Failed to marshal lead store", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		utils.Zlog.Warn("Failed to persist lead store",
			zap.String("path", s.path),
			zap.Error(err))
	}
}

func newEventID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
