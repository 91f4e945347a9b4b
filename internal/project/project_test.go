package project

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"

	"github.com/inamate/vecdraw/internal/auth"
	"github.com/inamate/vecdraw/internal/document"
	"github.com/inamate/vecdraw/internal/store"
)

type memberKey struct{ project, user string }

type memoryStore struct {
	mu        sync.Mutex
	users     map[string]store.User
	projects  map[string]store.Project
	members   map[memberKey]store.ProjectRole
	snapshots map[string][]store.Snapshot
}

func newMemoryStore(users ...store.User) *memoryStore {
	m := &memoryStore{
		users:     map[string]store.User{},
		projects:  map[string]store.Project{},
		members:   map[memberKey]store.ProjectRole{},
		snapshots: map[string][]store.Snapshot{},
	}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memoryStore) CreateProject(_ context.Context, arg store.CreateProjectParams) (store.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := store.Project{ID: arg.ID, Name: arg.Name, OwnerID: arg.OwnerID, CreatedAt: now, UpdatedAt: now}
	m.projects[p.ID] = p
	return p, nil
}

func (m *memoryStore) GetProject(_ context.Context, id string) (store.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return store.Project{}, store.ErrNotFound
	}
	return p, nil
}

func (m *memoryStore) ListProjectsForUser(_ context.Context, userID string) ([]store.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Project
	for k := range m.members {
		if k.user == userID {
			out = append(out, m.projects[k.project])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) DeleteProject(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, id)
	for k := range m.members {
		if k.project == id {
			delete(m.members, k)
		}
	}
	delete(m.snapshots, id)
	return nil
}

func (m *memoryStore) AddProjectMember(_ context.Context, arg store.ProjectMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[memberKey{arg.ProjectID, arg.UserID}] = arg.Role
	return nil
}

func (m *memoryStore) GetProjectMember(_ context.Context, projectID, userID string) (store.ProjectMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.members[memberKey{projectID, userID}]
	if !ok {
		return store.ProjectMember{}, store.ErrNotFound
	}
	return store.ProjectMember{ProjectID: projectID, UserID: userID, Role: role}, nil
}

func (m *memoryStore) ListProjectMembers(_ context.Context, projectID string) ([]store.ProjectMemberRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.ProjectMemberRow
	for k, role := range m.members {
		if k.project == projectID {
			u := m.users[k.user]
			out = append(out, store.ProjectMemberRow{UserID: u.ID, Role: role, DisplayName: u.DisplayName, Email: u.Email})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

func (m *memoryStore) RemoveProjectMember(_ context.Context, projectID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members, memberKey{projectID, userID})
	return nil
}

func (m *memoryStore) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (m *memoryStore) CreateSnapshot(_ context.Context, arg store.CreateSnapshotParams) (store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := store.Snapshot{ID: arg.ID, ProjectID: arg.ProjectID, Version: arg.Version, Document: arg.Document}
	m.snapshots[arg.ProjectID] = append(m.snapshots[arg.ProjectID], s)
	return s, nil
}

func (m *memoryStore) GetLatestSnapshot(_ context.Context, projectID string) (store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps := m.snapshots[projectID]
	if len(snaps) == 0 {
		return store.Snapshot{}, store.ErrNotFound
	}
	return snaps[len(snaps)-1], nil
}

var (
	owner  = store.User{ID: "user_owner", Email: "owner@example.com", DisplayName: "Owner"}
	editor = store.User{ID: "user_editor", Email: "editor@example.com", DisplayName: "Editor"}
)

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemoryStore(owner, editor))

	p, err := s.Create(ctx, "Poster", owner.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.CreatedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("CreatedAt = %q", p.CreatedAt)
	}

	doc, err := s.LatestDocument(ctx, p.ID, owner.ID)
	if err != nil {
		t.Fatalf("LatestDocument: %v", err)
	}
	if doc.Project.ID != p.ID || doc.Project.Name != "Poster" || len(doc.Scenes) != 1 {
		t.Errorf("seed document = %+v", doc.Project)
	}

	if _, err := s.Get(ctx, p.ID, editor.ID); !errors.Is(err, ErrNotMember) {
		t.Fatalf("Get by non-member error = %v, want ErrNotMember", err)
	}
	if err := s.InviteByEmail(ctx, p.ID, editor.ID, editor.Email); !errors.Is(err, ErrForbidden) {
		t.Fatalf("invite by non-owner error = %v, want ErrForbidden", err)
	}
	if err := s.InviteByEmail(ctx, p.ID, owner.ID, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("invite unknown error = %v, want ErrUserNotFound", err)
	}
	if err := s.InviteByEmail(ctx, p.ID, owner.ID, editor.Email); err != nil {
		t.Fatalf("InviteByEmail: %v", err)
	}

	members, err := s.ListMembers(ctx, p.ID, editor.ID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	want := []Member{
		{UserID: editor.ID, Role: "editor", DisplayName: "Editor", Email: editor.Email},
		{UserID: owner.ID, Role: "owner", DisplayName: "Owner", Email: owner.Email},
	}
	if diff := cmp.Diff(want, members); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}

	if err := s.RemoveMember(ctx, p.ID, owner.ID, owner.ID); !errors.Is(err, ErrRemoveOwner) {
		t.Fatalf("remove owner error = %v, want ErrRemoveOwner", err)
	}
	if err := s.Delete(ctx, p.ID, editor.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete by editor error = %v, want ErrForbidden", err)
	}
	if err := s.RemoveMember(ctx, p.ID, owner.ID, editor.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	list, err := s.List(ctx, editor.ID)
	if err != nil || len(list) != 0 {
		t.Fatalf("List after removal = %+v, %v", list, err)
	}

	if err := s.Delete(ctx, p.ID, owner.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, p.ID, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete error = %v, want ErrNotFound", err)
	}
}

type recordingRenderer struct {
	format string
	doc    *document.InDocument
}

func (r *recordingRenderer) Render(w http.ResponseWriter, _ *http.Request, format string, doc *document.InDocument) {
	r.format, r.doc = format, doc
	w.WriteHeader(http.StatusOK)
}

func TestHandler(t *testing.T) {
	renderer := &recordingRenderer{}
	h := NewHandler(NewService(newMemoryStore(owner, editor)), renderer)

	r := mux.NewRouter()
	r.HandleFunc("/projects", h.Create).Methods("POST")
	r.HandleFunc("/projects/{projectId}", h.Get).Methods("GET")
	r.HandleFunc("/projects/{projectId}/invite", h.Invite).Methods("POST")
	r.HandleFunc("/projects/{projectId}/members/{userId}", h.RemoveMember).Methods("DELETE")
	r.HandleFunc("/projects/{projectId}/snapshots/latest", h.GetLatestSnapshot).Methods("GET")
	r.HandleFunc("/projects/{projectId}/export/{format}", h.Export).Methods("GET")

	do := func(method, path, body, userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	if rec := do("POST", "/projects", `{"name":"  "}`, owner.ID); rec.Code != http.StatusBadRequest {
		t.Fatalf("blank name status = %d", rec.Code)
	}
	rec := do("POST", "/projects", `{"name":"Poster"}`, owner.ID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d (%s)", rec.Code, rec.Body)
	}
	var p Project
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode project: %v", err)
	}

	tests := []struct {
		name, method, path, body, user string
		want                           int
	}{
		{"get by owner", "GET", "/projects/" + p.ID, "", owner.ID, http.StatusOK},
		{"get by stranger", "GET", "/projects/" + p.ID, "", editor.ID, http.StatusForbidden},
		{"get missing", "GET", "/projects/proj_missing", "", owner.ID, http.StatusForbidden},
		{"invite unknown", "POST", "/projects/" + p.ID + "/invite", `{"email":"x@y.z"}`, owner.ID, http.StatusNotFound},
		{"invite", "POST", "/projects/" + p.ID + "/invite", `{"email":"Editor@example.com"}`, owner.ID, http.StatusCreated},
		{"snapshot by editor", "GET", "/projects/" + p.ID + "/snapshots/latest", "", editor.ID, http.StatusOK},
		{"remove owner", "DELETE", "/projects/" + p.ID + "/members/" + owner.ID, "", owner.ID, http.StatusBadRequest},
		{"export", "GET", "/projects/" + p.ID + "/export/SVG", "", editor.ID, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(tt.method, tt.path, tt.body, tt.user)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}

	if renderer.format != "svg" || renderer.doc == nil || renderer.doc.Project.ID != p.ID {
		t.Errorf("renderer got format %q doc %+v", renderer.format, renderer.doc)
	}
}
