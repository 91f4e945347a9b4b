package store

import (
	"context"
	"fmt"
	"time"
)

type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "owner"
	ProjectRoleEditor ProjectRole = "editor"
)

type Project struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateProjectParams struct {
	ID      string
	Name    string
	OwnerID string
}

type ProjectMember struct {
	ProjectID string
	UserID    string
	Role      ProjectRole
}

// ProjectMemberRow is a member joined with its user record.
type ProjectMemberRow struct {
	UserID      string
	Role        ProjectRole
	DisplayName string
	Email       string
}

const projectColumns = `id, name, owner_id, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	return p, mapErr(err)
}

func (s *Store) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	p, err := scanProject(s.db.QueryRow(ctx,
		`INSERT INTO projects (id, name, owner_id) VALUES ($1, $2, $3) RETURNING `+projectColumns,
		arg.ID, arg.Name, arg.OwnerID))
	if err != nil {
		return Project{}, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (Project, error) {
	p, err := scanProject(s.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		return Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// RenameProject updates the name and bumps updated_at.
func (s *Store) RenameProject(ctx context.Context, id, name string) error {
	tag, err := s.db.Exec(ctx, `UPDATE projects SET name = $2, updated_at = now() WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("rename project: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rename project: %w", ErrNotFound)
	}
	return nil
}

func (s *Store) ListProjectsForUser(ctx context.Context, userID string) ([]Project, error) {
	rows, err := s.db.Query(ctx,
		`SELECT p.id, p.name, p.owner_id, p.created_at, p.updated_at
		FROM projects p JOIN project_members m ON m.project_id = p.id
		WHERE m.user_id = $1
		ORDER BY p.updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// AddProjectMember inserts the membership or updates its role.
func (s *Store) AddProjectMember(ctx context.Context, arg ProjectMember) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id, role) VALUES ($1, $2, $3)
		ON CONFLICT (project_id, user_id) DO UPDATE SET role = EXCLUDED.role`,
		arg.ProjectID, arg.UserID, string(arg.Role))
	if err != nil {
		return fmt.Errorf("add project member: %w", mapErr(err))
	}
	return nil
}

func (s *Store) GetProjectMember(ctx context.Context, projectID, userID string) (ProjectMember, error) {
	m := ProjectMember{ProjectID: projectID, UserID: userID}
	var role string
	err := s.db.QueryRow(ctx,
		`SELECT role FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID).Scan(&role)
	if err != nil {
		return ProjectMember{}, fmt.Errorf("get project member: %w", mapErr(err))
	}
	m.Role = ProjectRole(role)
	return m, nil
}

func (s *Store) ListProjectMembers(ctx context.Context, projectID string) ([]ProjectMemberRow, error) {
	rows, err := s.db.Query(ctx,
		`SELECT m.user_id, m.role, u.display_name, u.email
		FROM project_members m JOIN users u ON u.id = m.user_id
		WHERE m.project_id = $1
		ORDER BY u.display_name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []ProjectMemberRow
	for rows.Next() {
		var m ProjectMemberRow
		var role string
		if err := rows.Scan(&m.UserID, &role, &m.DisplayName, &m.Email); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.Role = ProjectRole(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (s *Store) RemoveProjectMember(ctx context.Context, projectID, userID string) error {
	if _, err := s.db.Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID); err != nil {
		return fmt.Errorf("remove project member: %w", err)
	}
	return nil
}
