package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inamate/vecdraw/internal/document"
	"github.com/inamate/vecdraw/internal/store"
	"github.com/inamate/vecdraw/internal/typeid"
)

var (
	ErrNotFound     = errors.New("project not found")
	ErrForbidden    = errors.New("forbidden")
	ErrNotMember    = errors.New("not a project member")
	ErrUserNotFound = errors.New("user not found")
	ErrRemoveOwner  = errors.New("cannot remove project owner")
)

// Store is the subset of store.Store the project service needs.
type Store interface {
	CreateProject(ctx context.Context, arg store.CreateProjectParams) (store.Project, error)
	GetProject(ctx context.Context, id string) (store.Project, error)
	ListProjectsForUser(ctx context.Context, userID string) ([]store.Project, error)
	DeleteProject(ctx context.Context, id string) error
	AddProjectMember(ctx context.Context, arg store.ProjectMember) error
	GetProjectMember(ctx context.Context, projectID, userID string) (store.ProjectMember, error)
	ListProjectMembers(ctx context.Context, projectID string) ([]store.ProjectMemberRow, error)
	RemoveProjectMember(ctx context.Context, projectID, userID string) error
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	CreateSnapshot(ctx context.Context, arg store.CreateSnapshotParams) (store.Snapshot, error)
	GetLatestSnapshot(ctx context.Context, projectID string) (store.Snapshot, error)
}

type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Create stores a new project owned by ownerID and seeds version 1 with
// an empty document.
func (s *Service) Create(ctx context.Context, name, ownerID string) (*Project, error) {
	projectID := typeid.NewProjectID()

	p, err := s.store.CreateProject(ctx, store.CreateProjectParams{
		ID:      projectID,
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	err = s.store.AddProjectMember(ctx, store.ProjectMember{
		ProjectID: projectID,
		UserID:    ownerID,
		Role:      store.ProjectRoleOwner,
	})
	if err != nil {
		return nil, fmt.Errorf("add owner as member: %w", err)
	}

	doc := document.NewEmptyDocument(projectID, name, typeid.NewSceneID(), typeid.NewObjectID())
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal empty document: %w", err)
	}

	_, err = s.store.CreateSnapshot(ctx, store.CreateSnapshotParams{
		ID:        typeid.NewSnapshotID(),
		ProjectID: projectID,
		Version:   1,
		Document:  docJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return toProject(p), nil
}

func (s *Service) Get(ctx context.Context, projectID, userID string) (*Project, error) {
	if err := s.checkMembership(ctx, projectID, userID); err != nil {
		return nil, err
	}

	p, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return toProject(p), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Project, error) {
	rows, err := s.store.ListProjectsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]Project, len(rows))
	for i, p := range rows {
		projects[i] = *toProject(p)
	}
	return projects, nil
}

func (s *Service) Delete(ctx context.Context, projectID, userID string) error {
	if _, err := s.ownedProject(ctx, projectID, userID); err != nil {
		return err
	}
	return s.store.DeleteProject(ctx, projectID)
}

func (s *Service) InviteByEmail(ctx context.Context, projectID, ownerID, inviteeEmail string) error {
	if _, err := s.ownedProject(ctx, projectID, ownerID); err != nil {
		return err
	}

	invitee, err := s.store.GetUserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if invitee.ID == ownerID {
		return nil
	}

	return s.store.AddProjectMember(ctx, store.ProjectMember{
		ProjectID: projectID,
		UserID:    invitee.ID,
		Role:      store.ProjectRoleEditor,
	})
}

func (s *Service) ListMembers(ctx context.Context, projectID, userID string) ([]Member, error) {
	if err := s.checkMembership(ctx, projectID, userID); err != nil {
		return nil, err
	}

	rows, err := s.store.ListProjectMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]Member, len(rows))
	for i, m := range rows {
		members[i] = Member{
			UserID:      m.UserID,
			Role:        string(m.Role),
			DisplayName: m.DisplayName,
			Email:       m.Email,
		}
	}
	return members, nil
}

func (s *Service) RemoveMember(ctx context.Context, projectID, ownerID, targetUserID string) error {
	if _, err := s.ownedProject(ctx, projectID, ownerID); err != nil {
		return err
	}
	if targetUserID == ownerID {
		return ErrRemoveOwner
	}
	return s.store.RemoveProjectMember(ctx, projectID, targetUserID)
}

func (s *Service) GetLatestSnapshot(ctx context.Context, projectID, userID string) (json.RawMessage, error) {
	if err := s.checkMembership(ctx, projectID, userID); err != nil {
		return nil, err
	}

	snap, err := s.store.GetLatestSnapshot(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap.Document, nil
}

// LatestDocument decodes the newest snapshot of a project the user can
// read.
func (s *Service) LatestDocument(ctx context.Context, projectID, userID string) (*document.InDocument, error) {
	raw, err := s.GetLatestSnapshot(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	var doc document.InDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &doc, nil
}

// CheckMembership reports ErrNotMember when userID cannot access the
// project.
func (s *Service) CheckMembership(ctx context.Context, projectID, userID string) error {
	return s.checkMembership(ctx, projectID, userID)
}

func (s *Service) checkMembership(ctx context.Context, projectID, userID string) error {
	_, err := s.store.GetProjectMember(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("check membership: %w", err)
	}
	return nil
}

func (s *Service) getProject(ctx context.Context, projectID string) (store.Project, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Project{}, ErrNotFound
		}
		return store.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *Service) ownedProject(ctx context.Context, projectID, userID string) (store.Project, error) {
	p, err := s.getProject(ctx, projectID)
	if err != nil {
		return store.Project{}, err
	}
	if p.OwnerID != userID {
		return store.Project{}, ErrForbidden
	}
	return p, nil
}

func toProject(p store.Project) *Project {
	return &Project{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
