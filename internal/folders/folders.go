// Package folders maintains the single-rooted folder tree and the folder
// membership of todos. The parent relation must stay a forest rooted at
// the root folder: acyclicity is checked before every reparent, never
// after.
package folders

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tidytask/tidytask/internal/models"
	"github.com/tidytask/tidytask/internal/store"
)

// Manager owns all folder tree operations. It keeps a parentId -> childIds
// index that is invalidated through the folder collection's change
// subscription and rebuilt lazily on the next traversal.
type Manager struct {
	folders *store.Collection[*models.Folder]
	todos   *store.Collection[*models.Todo]
	log     *zap.Logger

	mu       sync.Mutex
	children map[uuid.UUID][]uuid.UUID
	dirty    bool
}

// NewManager builds a Manager over the two collections and subscribes to
// folder changes to keep the child index fresh.
func NewManager(folderCol *store.Collection[*models.Folder], todoCol *store.Collection[*models.Todo], log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		folders: folderCol,
		todos:   todoCol,
		log:     log,
		dirty:   true,
	}
	folderCol.Subscribe(func(store.Event) {
		m.mu.Lock()
		m.dirty = true
		m.mu.Unlock()
	})
	return m
}

// EnsureRoot creates the permanent root folder if it is absent. Called
// once at store initialization.
func (m *Manager) EnsureRoot() error {
	if _, ok := m.folders.Get(models.RootFolderID); ok {
		return nil
	}
	root := models.NewRootFolder(m.folders.Now())
	if _, err := m.folders.Insert(root); err != nil {
		return err
	}
	m.log.Info("root_folder_created", zap.String("folder_id", models.RootFolderID.String()))
	return nil
}

// SubscribeFolders registers a callback invoked after every folder
// mutation, returning an unsubscribe function
func (m *Manager) SubscribeFolders(fn store.Subscriber) func() {
	return m.folders.Subscribe(fn)
}

// Exists reports whether a folder with the given id exists
func (m *Manager) Exists(id uuid.UUID) bool {
	_, ok := m.folders.Get(id)
	return ok
}

// Get returns a copy of the folder with the given id
func (m *Manager) Get(id uuid.UUID) (*models.Folder, error) {
	f, ok := m.folders.Get(id)
	if !ok {
		return nil, &store.NotFoundError{Kind: "folder", ID: id}
	}
	return f, nil
}

// List returns every folder in insertion order
func (m *Manager) List() []*models.Folder {
	return m.folders.Find(store.All[*models.Folder](), nil)
}

// Create adds a folder under parentID. A zero parentID means the root
// folder. The parent must exist.
func (m *Manager) Create(name string, parentID uuid.UUID, color string) (*models.Folder, error) {
	if parentID == uuid.Nil {
		parentID = models.RootFolderID
	}
	if !m.Exists(parentID) {
		return nil, &store.NotFoundError{Kind: "parent folder", ID: parentID}
	}

	parent := parentID
	f := &models.Folder{
		Name:     strings.TrimSpace(name),
		Color:    color,
		ParentID: &parent,
	}
	id, err := m.folders.Insert(f)
	if err != nil {
		var perr *store.PersistenceError
		if !errors.As(err, &perr) {
			return nil, err
		}
		// the in-memory insert stands, surface the save failure alongside
	}
	created, _ := m.folders.Get(id)
	return created, err
}

// Update applies a rename/recolor patch. The root folder's display
// attributes may change like any other folder's; its identity may not,
// which is structural and not expressible through FolderPatch.
func (m *Manager) Update(id uuid.UUID, patch models.FolderPatch) (*models.Folder, error) {
	if patch.IsZero() {
		return m.Get(id)
	}
	n, err := m.folders.UpdateOne(store.ByID[*models.Folder](id), func(f *models.Folder) {
		patch.Apply(f)
		f.Name = strings.TrimSpace(f.Name)
	})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, &store.NotFoundError{Kind: "folder", ID: id}
	}
	return m.Get(id)
}

// Move reparents a folder. It rejects with CycleError moving the root,
// moving a folder under itself, or moving it under any of its own
// descendants. The ancestry check runs before the pointer mutation;
// mutating first and checking after would corrupt the tree.
func (m *Manager) Move(id, newParentID uuid.UUID) error {
	if newParentID == uuid.Nil {
		newParentID = models.RootFolderID
	}
	if id == models.RootFolderID {
		return &store.CycleError{FolderID: id, TargetID: newParentID}
	}
	if !m.Exists(id) {
		return &store.NotFoundError{Kind: "folder", ID: id}
	}
	if !m.Exists(newParentID) {
		return &store.NotFoundError{Kind: "parent folder", ID: newParentID}
	}
	if id == newParentID || m.IsDescendant(id, newParentID) {
		return &store.CycleError{FolderID: id, TargetID: newParentID}
	}

	parent := newParentID
	_, err := m.folders.UpdateOne(store.ByID[*models.Folder](id), func(f *models.Folder) {
		f.ParentID = &parent
	})
	return err
}

// Delete removes a folder, every descendant folder, and every todo filed
// in any of them. Todos are removed before folders so no todo ever
// references a missing folder, even transiently. Returns the number of
// todos and folders removed.
func (m *Manager) Delete(id uuid.UUID) (todosRemoved, foldersRemoved int, err error) {
	if id == models.RootFolderID {
		return 0, 0, &store.ValidationError{Reason: "the root folder cannot be deleted"}
	}
	if !m.Exists(id) {
		return 0, 0, &store.NotFoundError{Kind: "folder", ID: id}
	}

	doomed := map[uuid.UUID]struct{}{id: {}}
	for _, d := range m.DescendantIDs(id) {
		doomed[d] = struct{}{}
	}

	todosRemoved, err = m.todos.RemoveMany(func(t *models.Todo) bool {
		if t.FolderID == nil {
			return false
		}
		_, gone := doomed[*t.FolderID]
		return gone
	})
	if err != nil {
		m.log.Warn("cascade_todo_removal_save_failed", zap.Error(err))
	}

	foldersRemoved, ferr := m.folders.RemoveMany(func(f *models.Folder) bool {
		_, gone := doomed[f.ID]
		return gone
	})
	if ferr != nil {
		err = ferr
	}

	m.log.Info("folder_deleted",
		zap.String("folder_id", id.String()),
		zap.Int("folders_removed", foldersRemoved),
		zap.Int("todos_removed", todosRemoved),
	)
	return todosRemoved, foldersRemoved, err
}

// DescendantIDs returns the full descendant closure of a folder,
// excluding the folder itself
func (m *Manager) DescendantIDs(id uuid.UUID) []uuid.UUID {
	children := m.childIndex()
	var out []uuid.UUID
	queue := append([]uuid.UUID(nil), children[id]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		out = append(out, next)
		queue = append(queue, children[next]...)
	}
	return out
}

// IsDescendant reports whether candidate is in the descendant closure of
// ancestor. Used by both move-cycle detection and cascading delete.
func (m *Manager) IsDescendant(ancestor, candidate uuid.UUID) bool {
	for _, id := range m.DescendantIDs(ancestor) {
		if id == candidate {
			return true
		}
	}
	return false
}

// childIndex returns the parentId -> childIds map, rebuilding it when a
// folder mutation has invalidated it
func (m *Manager) childIndex() map[uuid.UUID][]uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirty && m.children != nil {
		return m.children
	}
	index := make(map[uuid.UUID][]uuid.UUID)
	for _, f := range m.folders.Find(store.All[*models.Folder](), nil) {
		if f.ParentID == nil {
			continue
		}
		index[*f.ParentID] = append(index[*f.ParentID], f.ID)
	}
	m.children = index
	m.dirty = false
	return index
}
