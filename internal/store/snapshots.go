package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type Snapshot struct {
	ID        string
	ProjectID string
	Version   int32
	Document  json.RawMessage
	CreatedAt time.Time
}

type CreateSnapshotParams struct {
	ID        string
	ProjectID string
	Version   int32
	Document  json.RawMessage
}

const snapshotColumns = `id, project_id, version, document, created_at`

func scanSnapshot(row interface{ Scan(...any) error }) (Snapshot, error) {
	var s Snapshot
	var doc []byte
	err := row.Scan(&s.ID, &s.ProjectID, &s.Version, &doc, &s.CreatedAt)
	s.Document = doc
	return s, mapErr(err)
}

func (s *Store) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (Snapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRow(ctx,
		`INSERT INTO snapshots (id, project_id, version, document) VALUES ($1, $2, $3, $4)
		RETURNING `+snapshotColumns,
		arg.ID, arg.ProjectID, arg.Version, []byte(arg.Document)))
	if err != nil {
		return Snapshot{}, fmt.Errorf("create snapshot: %w", err)
	}
	return snap, nil
}

// AppendSnapshot stores doc as the next version of the project. A racing
// writer that picks the same version fails with ErrDuplicate.
func (s *Store) AppendSnapshot(ctx context.Context, id, projectID string, doc json.RawMessage) (Snapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRow(ctx,
		`INSERT INTO snapshots (id, project_id, version, document)
		SELECT $1::text, $2::text, COALESCE(MAX(version), 0) + 1, $3::jsonb FROM snapshots WHERE project_id = $2
		RETURNING `+snapshotColumns,
		id, projectID, []byte(doc)))
	if err != nil {
		return Snapshot{}, fmt.Errorf("append snapshot: %w", err)
	}
	return snap, nil
}

func (s *Store) GetLatestSnapshot(ctx context.Context, projectID string) (Snapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRow(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots WHERE project_id = $1
		ORDER BY version DESC LIMIT 1`, projectID))
	if err != nil {
		return Snapshot{}, fmt.Errorf("get latest snapshot: %w", err)
	}
	return snap, nil
}
