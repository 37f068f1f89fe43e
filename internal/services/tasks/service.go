// Package tasks exposes the operation contract the UI layer calls: todo
// and folder CRUD, filtering, sorting, statistics, bulk operations,
// windowed listing and change subscription. Every write funnels through
// the record store, which persists and notifies before returning.
package tasks

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tidytask/tidytask/internal/folders"
	"github.com/tidytask/tidytask/internal/models"
	"github.com/tidytask/tidytask/internal/query"
	"github.com/tidytask/tidytask/internal/stats"
	"github.com/tidytask/tidytask/internal/store"
	"github.com/tidytask/tidytask/internal/validation"
	"github.com/tidytask/tidytask/internal/window"
)

// Service wires the record store, query engine, statistics aggregator and
// folder manager behind one facade. Construct exactly one per process and
// inject it; there is no package-level instance.
type Service struct {
	todos   *store.Collection[*models.Todo]
	folders *folders.Manager
	log     *zap.Logger
	now     func() time.Time
}

// NewService builds the facade. The folder manager's root folder must be
// ensured by the caller during startup (see folders.Manager.EnsureRoot).
func NewService(todoCol *store.Collection[*models.Todo], folderMgr *folders.Manager, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		todos:   todoCol,
		folders: folderMgr,
		log:     log,
		now:     time.Now,
	}
}

// CreateTodoInput carries the fields a caller may set when creating a todo
type CreateTodoInput struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description,omitempty"`
	Priority    models.Priority `json:"priority,omitempty" validate:"omitempty,todo_priority"`
	Tags        []string        `json:"tags,omitempty" validate:"omitempty,max=10,dive,tag_format"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	FolderID    *uuid.UUID      `json:"folderId,omitempty"`
}

// CreateTodo validates and inserts a new todo, returning the stored
// record with its assigned id and timestamps. A nil or root folder id
// files the todo at the root.
func (s *Service) CreateTodo(in CreateTodoInput) (*models.Todo, error) {
	if err := validation.Validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, &store.ValidationError{Reason: verrs[0].Error()}
		}
		return nil, &store.ValidationError{Reason: err.Error()}
	}

	folderID, err := s.resolveFolder(in.FolderID)
	if err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	t := &models.Todo{
		Title:       validation.SanitizeText(in.Title),
		Description: validation.SanitizeText(in.Description),
		Priority:    priority,
		Tags:        models.NormalizeTags(in.Tags),
		FolderID:    folderID,
	}
	if in.DueDate != nil {
		d := *in.DueDate
		t.DueDate = &d
	}

	id, err := s.todos.Insert(t)
	if err != nil {
		var perr *store.PersistenceError
		if !errors.As(err, &perr) {
			return nil, err
		}
		s.log.Warn("todo_created_but_save_failed", zap.String("todo_id", id.String()), zap.Error(err))
	}
	created, _ := s.todos.Get(id)
	return created, err
}

// GetTodo returns a copy of the todo with the given id
func (s *Service) GetTodo(id uuid.UUID) (*models.Todo, error) {
	t, ok := s.todos.Get(id)
	if !ok {
		return nil, &store.NotFoundError{Kind: "todo", ID: id}
	}
	return t, nil
}

// UpdateTodo applies a partial update. The merged record is validated
// before anything changes; a patch that targets a nonexistent folder
// fails with NotFoundError.
func (s *Service) UpdateTodo(id uuid.UUID, patch models.TodoPatch) (*models.Todo, error) {
	moveToRoot := false
	if patch.FolderID != nil {
		resolved, err := s.resolveFolder(patch.FolderID)
		if err != nil {
			return nil, err
		}
		if resolved == nil {
			// the patch named the root folder, stored as a nil reference
			moveToRoot = true
		}
		patch.FolderID = resolved
	}
	n, err := s.todos.UpdateOne(store.ByID[*models.Todo](id), func(t *models.Todo) {
		if patch.Title != nil {
			title := validation.SanitizeText(*patch.Title)
			patch.Title = &title
		}
		if patch.Description != nil {
			desc := validation.SanitizeText(*patch.Description)
			patch.Description = &desc
		}
		patch.Apply(t)
		if moveToRoot {
			t.FolderID = nil
		}
	})
	return s.updateResult(id, n, err)
}

// ToggleTodo flips the completed flag and returns the updated record
func (s *Service) ToggleTodo(id uuid.UUID) (*models.Todo, error) {
	n, err := s.todos.UpdateOne(store.ByID[*models.Todo](id), func(t *models.Todo) {
		t.Completed = !t.Completed
	})
	return s.updateResult(id, n, err)
}

// updateResult resolves an UpdateOne outcome to the record the caller
// should see. Like CreateTodo, a persistence failure still returns the
// live mutated record alongside the error, per the store's no-rollback
// policy.
func (s *Service) updateResult(id uuid.UUID, n int, err error) (*models.Todo, error) {
	if err != nil {
		var perr *store.PersistenceError
		if !errors.As(err, &perr) {
			return nil, err
		}
	}
	if n == 0 {
		return nil, &store.NotFoundError{Kind: "todo", ID: id}
	}
	updated, _ := s.todos.Get(id)
	return updated, err
}

// DeleteTodo removes the todo with the given id
func (s *Service) DeleteTodo(id uuid.UUID) error {
	n, err := s.todos.RemoveOne(store.ByID[*models.Todo](id))
	if err != nil {
		return err
	}
	if n == 0 {
		return &store.NotFoundError{Kind: "todo", ID: id}
	}
	return nil
}

// AllTodos returns every todo in insertion order
func (s *Service) AllTodos() []*models.Todo {
	return s.todos.Find(store.All[*models.Todo](), nil)
}

// FilterTodos returns the todos matching the filter, in insertion order
func (s *Service) FilterTodos(f models.FilterOptions) []*models.Todo {
	return query.Filter(s.AllTodos(), f)
}

// SearchTodos returns the todos whose title, description or tags contain
// the term, case-insensitively
func (s *Service) SearchTodos(term string) []*models.Todo {
	return s.FilterTodos(models.FilterOptions{Search: term})
}

// SortTodos orders records by field and direction; the sort is stable
func (s *Service) SortTodos(todos []*models.Todo, field models.SortField, dir models.SortDirection) []*models.Todo {
	return query.Sort(todos, field, dir)
}

// ListTodos filters, sorts and paginates in one call for the HTTP surface
func (s *Service) ListTodos(f models.FilterOptions, field models.SortField, dir models.SortDirection, offset, limit int) []*models.Todo {
	result := s.FilterTodos(f)
	if field != "" {
		result = query.Sort(result, field, dir)
	}
	return query.Paginate(result, offset, limit)
}

// WindowTodos filters and sorts like ListTodos, then computes the window
// of rows to materialize for the given viewport and returns just that
// slice with its index range.
func (s *Service) WindowTodos(f models.FilterOptions, field models.SortField, dir models.SortDirection, cfg window.Config, viewportHeight, scrollOffset int) (window.Range, []*models.Todo) {
	result := s.FilterTodos(f)
	if field != "" {
		result = query.Sort(result, field, dir)
	}
	r := window.Compute(len(result), cfg, viewportHeight, scrollOffset)
	if r.Count() == 0 {
		return r, []*models.Todo{}
	}
	return r, result[r.Start : r.End+1]
}

// Stats computes the derived statistics over the full collection
func (s *Service) Stats() models.TodoStats {
	return stats.Compute(s.AllTodos(), s.now())
}

// TagStats returns the tag-frequency map over the full collection
func (s *Service) TagStats() models.TagStats {
	return stats.TagCounts(s.AllTodos())
}

// PriorityStats returns the priority-frequency map over the full collection
func (s *Service) PriorityStats() models.PriorityStats {
	return stats.PriorityCounts(s.AllTodos())
}

// ClearCompleted removes every completed todo and returns the count
func (s *Service) ClearCompleted() (int, error) {
	return s.todos.RemoveMany(func(t *models.Todo) bool { return t.Completed })
}

// ClearAll removes every todo and returns the count
func (s *Service) ClearAll() (int, error) {
	return s.todos.RemoveMany(store.All[*models.Todo]())
}

// MarkAllCompleted completes every active todo and returns the count
// changed. Already-completed todos are untouched so their updatedAt does
// not move.
func (s *Service) MarkAllCompleted() (int, error) {
	return s.todos.UpdateMany(
		func(t *models.Todo) bool { return !t.Completed },
		func(t *models.Todo) { t.Completed = true },
	)
}

// MarkAllActive reactivates every completed todo and returns the count
// changed
func (s *Service) MarkAllActive() (int, error) {
	return s.todos.UpdateMany(
		func(t *models.Todo) bool { return t.Completed },
		func(t *models.Todo) { t.Completed = false },
	)
}

// Subscribe registers a callback for every todo or folder mutation. The
// returned function removes both subscriptions.
func (s *Service) Subscribe(fn store.Subscriber) func() {
	unsubTodos := s.todos.Subscribe(fn)
	unsubFolders := s.folders.SubscribeFolders(fn)
	return func() {
		unsubTodos()
		unsubFolders()
	}
}

// Folders returns the folder hierarchy manager
func (s *Service) Folders() *folders.Manager {
	return s.folders
}

// CreateFolder adds a folder under the given parent (zero means root)
func (s *Service) CreateFolder(name string, parentID uuid.UUID, color string) (*models.Folder, error) {
	return s.folders.Create(name, parentID, color)
}

// RenameFolder applies a rename/recolor patch to a folder
func (s *Service) RenameFolder(id uuid.UUID, patch models.FolderPatch) (*models.Folder, error) {
	return s.folders.Update(id, patch)
}

// MoveFolder reparents a folder, rejecting moves that would create a cycle
func (s *Service) MoveFolder(id, newParentID uuid.UUID) error {
	return s.folders.Move(id, newParentID)
}

// DeleteFolder removes a folder, its descendants and all their todos
func (s *Service) DeleteFolder(id uuid.UUID) (todosRemoved, foldersRemoved int, err error) {
	return s.folders.Delete(id)
}

// ListFolders returns every folder in insertion order
func (s *Service) ListFolders() []*models.Folder {
	return s.folders.List()
}

// resolveFolder maps a caller-supplied folder reference to its stored
// form: nil and the root id both mean "unfiled", stored as nil. Any other
// id must name an existing folder.
func (s *Service) resolveFolder(id *uuid.UUID) (*uuid.UUID, error) {
	if id == nil || *id == models.RootFolderID || *id == uuid.Nil {
		return nil, nil
	}
	if !s.folders.Exists(*id) {
		return nil, &store.NotFoundError{Kind: "folder", ID: *id}
	}
	resolved := *id
	return &resolved, nil
}

// MoveTodoToRoot files a todo at the root, clearing its folder reference
func (s *Service) MoveTodoToRoot(id uuid.UUID) (*models.Todo, error) {
	n, err := s.todos.UpdateOne(store.ByID[*models.Todo](id), func(t *models.Todo) {
		t.FolderID = nil
	})
	return s.updateResult(id, n, err)
}
