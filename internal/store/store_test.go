package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/inamate/vecdraw/internal/document"
	"github.com/inamate/vecdraw/internal/typeid"
)

func TestMapErr(t *testing.T) {
	other := errors.New("boom")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, ErrDuplicate},
		{"other pg error", &pgconn.PgError{Code: "23503"}, nil},
		{"other", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErr(tt.in)
			if tt.want == nil {
				if tt.in == nil && got != nil {
					t.Fatalf("mapErr(nil) = %v", got)
				}
				if tt.in != nil && (errors.Is(got, ErrNotFound) || errors.Is(got, ErrDuplicate)) {
					t.Fatalf("mapErr(%v) = %v, want passthrough", tt.in, got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Fatalf("mapErr(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// testStore connects to VECDRAW_TEST_DATABASE_URL. Tests that need a
// database are skipped when it is unset.
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("VECDRAW_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("VECDRAW_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, url)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(pool.Close)
	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	email := typeid.NewUserID() + "@example.com"
	u, err := s.CreateUser(ctx, CreateUserParams{ID: typeid.NewUserID(), Email: email, Password: "hash", DisplayName: "Ada"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.CreateUser(ctx, CreateUserParams{ID: typeid.NewUserID(), Email: email, Password: "x", DisplayName: "Dup"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate CreateUser error = %v, want ErrDuplicate", err)
	}
	got, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if diff := cmp.Diff(u, got); diff != "" {
		t.Errorf("GetUserByEmail mismatch (-want +got):\n%s", diff)
	}
	if _, err := s.GetUserByID(ctx, "user_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetUserByID(missing) error = %v, want ErrNotFound", err)
	}

	p, err := s.CreateProject(ctx, CreateProjectParams{ID: typeid.NewProjectID(), Name: "Poster", OwnerID: u.ID})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	t.Cleanup(func() { s.DeleteProject(context.Background(), p.ID) })

	if err := s.AddProjectMember(ctx, ProjectMember{ProjectID: p.ID, UserID: u.ID, Role: ProjectRoleOwner}); err != nil {
		t.Fatalf("AddProjectMember: %v", err)
	}
	m, err := s.GetProjectMember(ctx, p.ID, u.ID)
	if err != nil || m.Role != ProjectRoleOwner {
		t.Fatalf("GetProjectMember = %+v, %v", m, err)
	}
	list, err := s.ListProjectsForUser(ctx, u.ID)
	if err != nil || len(list) != 1 || list[0].ID != p.ID {
		t.Fatalf("ListProjectsForUser = %+v, %v", list, err)
	}

	if _, err := s.GetLatestSnapshot(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetLatestSnapshot(empty) error = %v, want ErrNotFound", err)
	}
	for i := 1; i <= 2; i++ {
		doc := json.RawMessage(fmt.Sprintf(`{"n":%d}`, i))
		snap, err := s.AppendSnapshot(ctx, typeid.NewSnapshotID(), p.ID, doc)
		if err != nil {
			t.Fatalf("AppendSnapshot %d: %v", i, err)
		}
		if snap.Version != int32(i) {
			t.Fatalf("AppendSnapshot %d version = %d", i, snap.Version)
		}
	}
	latest, err := s.GetLatestSnapshot(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetLatestSnapshot: %v", err)
	}
	var body map[string]int
	if err := json.Unmarshal(latest.Document, &body); err != nil || body["n"] != 2 {
		t.Fatalf("latest document = %s, %v", latest.Document, err)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, CreateUserParams{ID: typeid.NewUserID(), Email: typeid.NewUserID() + "@example.com", Password: "hash", DisplayName: "Ada"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	p, err := s.CreateProject(ctx, CreateProjectParams{ID: typeid.NewProjectID(), Name: "Draft", OwnerID: u.ID})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	t.Cleanup(func() { s.DeleteProject(context.Background(), p.ID) })

	doc := document.NewSampleDocument(p.ID)
	doc.Project.Name = "Renamed"
	if err := s.SaveDocument(ctx, p.ID, doc); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}

	got, err := s.LoadDocument(ctx, p.ID)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	// jsonb normalizes key order and spacing of the embedded object data.
	decoded := cmp.Transformer("json", func(raw json.RawMessage) any {
		var v any
		json.Unmarshal(raw, &v)
		return v
	})
	if diff := cmp.Diff(doc, got, decoded); diff != "" {
		t.Errorf("document mismatch (-saved +loaded):\n%s", diff)
	}
	row, err := s.GetProject(ctx, p.ID)
	if err != nil || row.Name != "Renamed" {
		t.Fatalf("GetProject after save = %+v, %v", row, err)
	}
}
