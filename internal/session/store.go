package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
)

// Store persists one session snapshot per user as a single versioned blob.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save upserts the user's snapshot.
func (s *Store) Save(userID int64, snap Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO study_sessions (user_id, state, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET state = $2, updated_at = NOW()`,
		userID, blob,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load restores the user's session. Returns nil when no snapshot exists or
// the stored blob carries an old layout version — stale blobs are deleted,
// not migrated.
func (s *Store) Load(userID int64) (*Session, error) {
	var blob []byte
	err := s.db.QueryRow(
		`SELECT state FROM study_sessions WHERE user_id = $1`,
		userID,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		log.Printf("[session] discarding unreadable snapshot for user %d: %v", userID, err)
		s.discard(userID)
		return nil, nil
	}

	restored, ok := Restore(snap)
	if !ok {
		log.Printf("[session] discarding snapshot for user %d: version %d != %d", userID, snap.Version, SnapshotVersion)
		s.discard(userID)
		return nil, nil
	}
	return restored, nil
}

func (s *Store) discard(userID int64) {
	if _, err := s.db.Exec(`DELETE FROM study_sessions WHERE user_id = $1`, userID); err != nil {
		log.Printf("[session] failed to discard snapshot for user %d: %v", userID, err)
	}
}
