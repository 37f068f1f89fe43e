package tasks

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tidytask/tidytask/internal/folders"
	"github.com/tidytask/tidytask/internal/models"
	"github.com/tidytask/tidytask/internal/storage"
	"github.com/tidytask/tidytask/internal/store"
	"github.com/tidytask/tidytask/internal/window"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mem := storage.NewMemory()
	todoCol, err := store.NewCollection[*models.Todo]("todos", mem)
	if err != nil {
		t.Fatalf("todo collection: %v", err)
	}
	folderCol, err := store.NewCollection[*models.Folder]("folders", mem)
	if err != nil {
		t.Fatalf("folder collection: %v", err)
	}
	mgr := folders.NewManager(folderCol, todoCol, nil)
	if err := mgr.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}
	return NewService(todoCol, mgr, nil)
}

func mustCreateTodo(t *testing.T, svc *Service, in CreateTodoInput) *models.Todo {
	t.Helper()
	todo, err := svc.CreateTodo(in)
	if err != nil {
		t.Fatalf("CreateTodo(%q) failed: %v", in.Title, err)
	}
	return todo
}

func TestService_CreateTodoRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	created := mustCreateTodo(t, svc, CreateTodoInput{
		Title:       "Buy groceries",
		Description: "Milk and bread",
		Priority:    models.PriorityHigh,
		Tags:        []string{"errand", "errand", " home "},
		DueDate:     &due,
	})

	got, err := svc.GetTodo(created.ID)
	if err != nil {
		t.Fatalf("GetTodo failed: %v", err)
	}
	if got.Title != "Buy groceries" || got.Description != "Milk and bread" {
		t.Errorf("Unexpected content: %+v", got)
	}
	if got.Priority != models.PriorityHigh {
		t.Errorf("Expected high priority, got %s", got.Priority)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "errand" || got.Tags[1] != "home" {
		t.Errorf("Expected normalized tags [errand home], got %v", got.Tags)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("Due date did not survive: %v", got.DueDate)
	}
	if got.FolderID != nil {
		t.Error("Todos default to the root folder, stored as nil")
	}
	if got.Completed {
		t.Error("New todos must start active")
	}
}

func TestService_CreateTodoDefaultsAndValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	todo := mustCreateTodo(t, svc, CreateTodoInput{Title: "Plain"})
	if todo.Priority != models.PriorityMedium {
		t.Errorf("Expected default medium priority, got %s", todo.Priority)
	}

	tests := []struct {
		name string
		in   CreateTodoInput
	}{
		{"missing title", CreateTodoInput{}},
		{"single char title", CreateTodoInput{Title: "x"}},
		{"unknown priority", CreateTodoInput{Title: "Valid title", Priority: "urgent"}},
		{"bad tag", CreateTodoInput{Title: "Valid title", Tags: []string{"has spaces"}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreateTodo(tt.in)
			var verr *store.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
		})
	}
}

func TestService_CreateTodoInMissingFolder(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	bogus := uuid.New()
	_, err := svc.CreateTodo(CreateTodoInput{Title: "Lost todo", FolderID: &bogus})
	var nf *store.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

func TestService_UpdateTodo(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	created := mustCreateTodo(t, svc, CreateTodoInput{Title: "Original", Priority: models.PriorityLow})

	title := "Renamed task"
	prio := models.PriorityHigh
	updated, err := svc.UpdateTodo(created.ID, models.TodoPatch{Title: &title, Priority: &prio})
	if err != nil {
		t.Fatalf("UpdateTodo failed: %v", err)
	}
	if updated.Title != "Renamed task" || updated.Priority != models.PriorityHigh {
		t.Errorf("Patch not applied: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("updatedAt must advance on update")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("createdAt must not change on update")
	}

	_, err = svc.UpdateTodo(uuid.New(), models.TodoPatch{Title: &title})
	var nf *store.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected NotFoundError for unknown todo, got %v", err)
	}
}

func TestService_UpdateTodoRejectsInvalidPatch(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	created := mustCreateTodo(t, svc, CreateTodoInput{Title: "Keep me intact"})

	short := "x"
	_, err := svc.UpdateTodo(created.ID, models.TodoPatch{Title: &short})
	var verr *store.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	got, _ := svc.GetTodo(created.ID)
	if got.Title != "Keep me intact" {
		t.Error("Failed patch must leave the record unchanged")
	}
}

func TestService_UpdateTodoClearsDueDate(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	created := mustCreateTodo(t, svc, CreateTodoInput{Title: "Due soon", DueDate: &due})

	updated, err := svc.UpdateTodo(created.ID, models.TodoPatch{ClearDueDate: true})
	if err != nil {
		t.Fatalf("UpdateTodo failed: %v", err)
	}
	if updated.DueDate != nil {
		t.Errorf("Expected cleared due date, got %v", updated.DueDate)
	}
}

func TestService_MoveTodoBetweenFolders(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	folder, err := svc.CreateFolder("Work", uuid.Nil, "")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	created := mustCreateTodo(t, svc, CreateTodoInput{Title: "Ship release"})

	moved, err := svc.UpdateTodo(created.ID, models.TodoPatch{FolderID: &folder.ID})
	if err != nil {
		t.Fatalf("UpdateTodo failed: %v", err)
	}
	if moved.FolderID == nil || *moved.FolderID != folder.ID {
		t.Errorf("Expected folder %s, got %v", folder.ID, moved.FolderID)
	}

	// the root folder id resolves back to "unfiled"
	back, err := svc.UpdateTodo(created.ID, models.TodoPatch{FolderID: &models.RootFolderID})
	if err != nil {
		t.Fatalf("UpdateTodo failed: %v", err)
	}
	if back.FolderID != nil {
		t.Errorf("Expected nil folder after moving to root, got %v", back.FolderID)
	}

	bogus := uuid.New()
	if _, err := svc.UpdateTodo(created.ID, models.TodoPatch{FolderID: &bogus}); err == nil {
		t.Error("Moving to an unknown folder must fail")
	}
}

func TestService_ToggleTwiceRestoresState(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	created := mustCreateTodo(t, svc, CreateTodoInput{Title: "Flip me"})

	once, err := svc.ToggleTodo(created.ID)
	if err != nil {
		t.Fatalf("First toggle failed: %v", err)
	}
	if !once.Completed {
		t.Error("First toggle must complete the todo")
	}
	if !once.UpdatedAt.After(created.UpdatedAt) {
		t.Error("updatedAt must advance on first toggle")
	}

	twice, err := svc.ToggleTodo(created.ID)
	if err != nil {
		t.Fatalf("Second toggle failed: %v", err)
	}
	if twice.Completed {
		t.Error("Second toggle must restore the active state")
	}
	if !twice.UpdatedAt.After(once.UpdatedAt) {
		t.Error("updatedAt must advance on every toggle")
	}
}

func TestService_DeleteTodo(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	created := mustCreateTodo(t, svc, CreateTodoInput{Title: "Ephemeral"})

	if err := svc.DeleteTodo(created.ID); err != nil {
		t.Fatalf("DeleteTodo failed: %v", err)
	}
	if _, err := svc.GetTodo(created.ID); err == nil {
		t.Error("Deleted todo must be gone")
	}
	var nf *store.NotFoundError
	if err := svc.DeleteTodo(created.ID); !errors.As(err, &nf) {
		t.Errorf("Expected NotFoundError on double delete, got %v", err)
	}
}

func TestService_ListTodosFiltersSortsPaginates(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	mustCreateTodo(t, svc, CreateTodoInput{Title: "Gamma", Priority: models.PriorityMedium})
	mustCreateTodo(t, svc, CreateTodoInput{Title: "Alpha", Priority: models.PriorityLow})
	mustCreateTodo(t, svc, CreateTodoInput{Title: "Beta", Priority: models.PriorityHigh})

	got := svc.ListTodos(models.FilterOptions{}, models.SortByPriority, models.SortDesc, 0, 0)
	want := []string{"Beta", "Gamma", "Alpha"}
	for i, title := range want {
		if got[i].Title != title {
			t.Fatalf("Priority desc position %d: expected %q, got %q", i, title, got[i].Title)
		}
	}

	got = svc.ListTodos(models.FilterOptions{}, models.SortByTitle, models.SortAsc, 1, 1)
	if len(got) != 1 || got[0].Title != "Beta" {
		t.Errorf("Expected page [Beta], got %d results", len(got))
	}
}

func TestService_SearchTodos(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	mustCreateTodo(t, svc, CreateTodoInput{Title: "Water the plants"})
	mustCreateTodo(t, svc, CreateTodoInput{Title: "File taxes", Description: "water bill too"})
	mustCreateTodo(t, svc, CreateTodoInput{Title: "Call mom"})

	got := svc.SearchTodos("WATER")
	if len(got) != 2 {
		t.Errorf("Expected 2 matches, got %d", len(got))
	}
}

func TestService_BulkOperations(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	for _, title := range []string{"One task", "Two task", "Three task"} {
		mustCreateTodo(t, svc, CreateTodoInput{Title: title})
	}

	n, err := svc.MarkAllCompleted()
	if err != nil {
		t.Fatalf("MarkAllCompleted failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 completed, got %d", n)
	}

	// second run touches nothing, so no updatedAt churn
	n, err = svc.MarkAllCompleted()
	if err != nil || n != 0 {
		t.Errorf("Repeated MarkAllCompleted: got n=%d err=%v", n, err)
	}

	n, err = svc.MarkAllActive()
	if err != nil || n != 3 {
		t.Errorf("MarkAllActive: got n=%d err=%v", n, err)
	}

	if _, err := svc.ToggleTodo(svc.AllTodos()[0].ID); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	n, err = svc.ClearCompleted()
	if err != nil || n != 1 {
		t.Errorf("ClearCompleted: got n=%d err=%v", n, err)
	}

	n, err = svc.ClearAll()
	if err != nil || n != 2 {
		t.Errorf("ClearAll: got n=%d err=%v", n, err)
	}
	if len(svc.AllTodos()) != 0 {
		t.Error("Expected empty collection after ClearAll")
	}
}

func TestService_StatsOverLiveCollection(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	s := svc.Stats()
	if s.Total != 0 || s.CompletionRate != 0 {
		t.Errorf("Empty stats must be zero, got %+v", s)
	}

	for i := 0; i < 5; i++ {
		mustCreateTodo(t, svc, CreateTodoInput{Title: "Work item", Tags: []string{"work"}})
	}
	for i := 0; i < 3; i++ {
		mustCreateTodo(t, svc, CreateTodoInput{Title: "Home item", Tags: []string{"home"}})
	}
	if _, err := svc.ToggleTodo(svc.AllTodos()[0].ID); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	s = svc.Stats()
	if s.Total != 8 || s.Completed != 1 || s.Active != 7 {
		t.Errorf("Unexpected stats: %+v", s)
	}
	if s.CompletionRate != 12.5 {
		t.Errorf("Expected completion rate 12.5, got %v", s.CompletionRate)
	}
	if s.TodayAdded != 8 {
		t.Errorf("Expected 8 added today, got %d", s.TodayAdded)
	}

	tags := svc.TagStats()
	if tags["work"] != 5 || tags["home"] != 3 {
		t.Errorf("Expected work:5 home:3, got %v", tags)
	}

	prios := svc.PriorityStats()
	if prios[models.PriorityMedium] != 8 {
		t.Errorf("Expected 8 medium-priority todos, got %v", prios)
	}
}

func TestService_WindowTodos(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	for i := 0; i < 150; i++ {
		mustCreateTodo(t, svc, CreateTodoInput{Title: "Row item"})
	}

	cfg := window.DefaultConfig()
	r, slice := svc.WindowTodos(models.FilterOptions{}, models.SortByCreatedAt, models.SortAsc, cfg, 640, 64*50)
	if !r.Windowed {
		t.Error("150 rows must activate windowing")
	}
	if len(slice) != r.Count() {
		t.Errorf("Slice length %d must equal range count %d", len(slice), r.Count())
	}
	if !r.Contains(50) {
		t.Errorf("Window %+v must contain the first visible row 50", r)
	}

	// short lists come back whole
	few := newTestService(t)
	mustCreateTodo(t, few, CreateTodoInput{Title: "Only one"})
	r, slice = few.WindowTodos(models.FilterOptions{}, "", "", cfg, 640, 0)
	if r.Windowed {
		t.Error("A short list must not be windowed")
	}
	if len(slice) != 1 {
		t.Errorf("Expected the whole list, got %d rows", len(slice))
	}
}

func TestService_SubscribeSpansBothCollections(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	var events []store.Event
	unsub := svc.Subscribe(func(ev store.Event) { events = append(events, ev) })

	mustCreateTodo(t, svc, CreateTodoInput{Title: "Observe me"})
	if _, err := svc.CreateFolder("Watched", uuid.Nil, ""); err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Collection != "todos" || events[1].Collection != "folders" {
		t.Errorf("Unexpected event sources: %+v", events)
	}

	unsub()
	events = nil
	mustCreateTodo(t, svc, CreateTodoInput{Title: "Silent change"})
	if len(events) != 0 {
		t.Error("Unsubscribed callback must not fire")
	}
}

func TestService_PersistenceFailureSurfacesButApplies(t *testing.T) {
	t.Parallel()

	mem := storage.NewMemory()
	todoCol, err := store.NewCollection[*models.Todo]("todos", mem)
	if err != nil {
		t.Fatalf("todo collection: %v", err)
	}
	folderCol, err := store.NewCollection[*models.Folder]("folders", mem)
	if err != nil {
		t.Fatalf("folder collection: %v", err)
	}
	mgr := folders.NewManager(folderCol, todoCol, nil)
	if err := mgr.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}
	svc := NewService(todoCol, mgr, nil)

	mem.WriteErr = errors.New("read-only filesystem")
	created, err := svc.CreateTodo(CreateTodoInput{Title: "Best effort"})
	var perr *store.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected PersistenceError, got %v", err)
	}
	if created == nil {
		t.Fatal("The created record must still be returned")
	}
	if _, err := svc.GetTodo(created.ID); err != nil {
		t.Error("The in-memory record must remain readable")
	}

	// update-shaped mutations return the live record too, not nil
	toggled, err := svc.ToggleTodo(created.ID)
	if !errors.As(err, &perr) {
		t.Fatalf("Expected PersistenceError from toggle, got %v", err)
	}
	if toggled == nil || !toggled.Completed {
		t.Errorf("Toggle must return the mutated record alongside the error, got %+v", toggled)
	}

	title := "Renamed anyway"
	updated, err := svc.UpdateTodo(created.ID, models.TodoPatch{Title: &title})
	if !errors.As(err, &perr) {
		t.Fatalf("Expected PersistenceError from update, got %v", err)
	}
	if updated == nil || updated.Title != "Renamed anyway" {
		t.Errorf("Update must return the mutated record alongside the error, got %+v", updated)
	}
}
