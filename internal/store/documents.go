package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/inamate/vecdraw/internal/document"
	"github.com/inamate/vecdraw/internal/typeid"
)

// LoadDocument decodes the latest snapshot of a project.
func (s *Store) LoadDocument(ctx context.Context, projectID string) (*document.InDocument, error) {
	snap, err := s.GetLatestSnapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var doc document.InDocument
	if err := json.Unmarshal(snap.Document, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
	}
	return &doc, nil
}

// SaveDocument appends doc as a new snapshot and syncs the project row's
// name and updated_at with it.
func (s *Store) SaveDocument(ctx context.Context, projectID string, doc *document.InDocument) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, err := s.AppendSnapshot(ctx, typeid.NewSnapshotID(), projectID, docJSON); err != nil {
		return err
	}
	if doc.Project.Name != "" {
		if err := s.RenameProject(ctx, projectID, doc.Project.Name); err != nil {
			return err
		}
	}
	return nil
}
