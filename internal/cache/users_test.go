package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tablerohq/tablero/internal/api"
	"github.com/tablerohq/tablero/internal/models"
)

type fakeUserAPI struct {
	users  []models.User
	nextID int
	fail   error
}

func (f *fakeUserAPI) List(ctx context.Context) ([]models.User, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]models.User, len(f.users))
	copy(out, f.users)
	return out, nil
}

func (f *fakeUserAPI) Register(ctx context.Context, draft models.UserDraft) (*models.User, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.nextID++
	u := models.User{
		ID:     fmt.Sprintf("u%d", f.nextID),
		Name:   draft.Name,
		Email:  draft.Email,
		Role:   draft.Role,
		Status: models.UserActive,
	}
	f.users = append(f.users, u)
	return &u, nil
}

func (f *fakeUserAPI) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	for i := range f.users {
		if f.users[i].ID == id {
			patch.Apply(&f.users[i])
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, &api.RequestError{Status: 404, Message: "user not found"}
}

func (f *fakeUserAPI) Delete(ctx context.Context, id string) error {
	if f.fail != nil {
		return f.fail
	}
	for i := range f.users {
		if f.users[i].ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return &api.RequestError{Status: 404, Message: "user not found"}
}

func TestUserStoreFetchAll(t *testing.T) {
	fake := &fakeUserAPI{users: []models.User{
		{ID: "u1", Role: models.RoleAdmin},
		{ID: "u2", Role: models.RoleCollaborator},
	}}
	store := NewUserStore(fake)

	if err := store.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if got := len(store.Users()); got != 2 {
		t.Errorf("Expected 2 users, got %d", got)
	}
}

func TestUserStoreCreate(t *testing.T) {
	store := NewUserStore(&fakeUserAPI{})

	u, err := store.Create(context.Background(), models.UserDraft{
		Name:  "Ana",
		Email: "ana@tablero.test",
		Role:  models.RoleCollaborator,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.ID == "" {
		t.Error("Expected server-assigned ID")
	}
	if got := len(store.Users()); got != 1 {
		t.Errorf("Expected user appended, got %d", got)
	}
}

func TestUserStoreUpdateToggleStatus(t *testing.T) {
	fake := &fakeUserAPI{users: []models.User{{ID: "u1", Status: models.UserActive}}}
	store := NewUserStore(fake)
	if err := store.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	status := models.UserInactive
	if err := store.Update(context.Background(), "u1", models.UserPatch{Status: &status}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if got := store.Users()[0].Status; got != models.UserInactive {
		t.Errorf("Expected inactive, got %s", got)
	}
}

func TestUserStoreDeleteNoCascade(t *testing.T) {
	fake := &fakeUserAPI{users: []models.User{{ID: "u1"}, {ID: "u2"}}}
	store := NewUserStore(fake)
	if err := store.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	taskFake := &fakeTaskAPI{tasks: []models.Task{{ID: "t1", AssignedTo: "u1"}}}
	tasks := NewTaskStore(taskFake)
	if err := tasks.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	if err := store.Delete(context.Background(), "u1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if store.Get("u1") != nil {
		t.Error("Deleted user still present")
	}
	// The task collection keeps the orphaned assignment until its next fetch.
	if got := len(tasks.ByUser("u1")); got != 1 {
		t.Errorf("Expected orphaned task kept, got %d", got)
	}
}

func TestUserStoreUpdateErrorLeavesCollection(t *testing.T) {
	fake := &fakeUserAPI{users: []models.User{{ID: "u1", Name: "Ana"}}}
	store := NewUserStore(fake)
	if err := store.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	fake.fail = errors.New("boom")
	name := "Renamed"
	if err := store.Update(context.Background(), "u1", models.UserPatch{Name: &name}); err == nil {
		t.Fatal("Expected update error")
	}
	if got := store.Users()[0].Name; got != "Ana" {
		t.Errorf("Failed update must leave the user untouched, got %s", got)
	}
}

func TestUserStoreByRole(t *testing.T) {
	fake := &fakeUserAPI{users: []models.User{
		{ID: "u1", Role: models.RoleAdmin},
		{ID: "u2", Role: models.RoleCollaborator},
		{ID: "u3", Role: models.RoleCollaborator},
	}}
	store := NewUserStore(fake)
	if err := store.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	if got := len(store.ByRole(models.RoleCollaborator)); got != 2 {
		t.Errorf("Expected 2 collaborators, got %d", got)
	}
}
