// Package commands implements the tidytask CLI subcommands. Every command
// opens the same local store the server uses, runs one operation through
// the service facade and exits.
package commands

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tidytask/tidytask/internal/config"
	"github.com/tidytask/tidytask/internal/folders"
	"github.com/tidytask/tidytask/internal/logger"
	"github.com/tidytask/tidytask/internal/models"
	"github.com/tidytask/tidytask/internal/services/tasks"
	"github.com/tidytask/tidytask/internal/storage"
	"github.com/tidytask/tidytask/internal/store"
)

// openService loads config, opens the snapshot database and wires the
// core. The returned close function must run before exit.
func openService() (*tasks.Service, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	zapLogger, err := logger.NewDevelopmentLogger(cfg.DebugMode)
	if err != nil {
		return nil, nil, err
	}

	snap, err := storage.Open(cfg.DataPath)
	if err != nil {
		return nil, nil, err
	}

	todoCol, err := store.NewCollection[*models.Todo]("todos", snap,
		store.WithLogger[*models.Todo](zapLogger))
	if err != nil {
		_ = snap.Close()
		return nil, nil, err
	}
	folderCol, err := store.NewCollection[*models.Folder]("folders", snap,
		store.WithLogger[*models.Folder](zapLogger))
	if err != nil {
		_ = snap.Close()
		return nil, nil, err
	}

	folderMgr := folders.NewManager(folderCol, todoCol, zapLogger)
	if err := folderMgr.EnsureRoot(); err != nil {
		_ = snap.Close()
		return nil, nil, err
	}

	svc := tasks.NewService(todoCol, folderMgr, zapLogger)
	return svc, snap.Close, nil
}

// resolveTodo finds a todo by full id or unique id prefix
func resolveTodo(svc *tasks.Service, arg string) (*models.Todo, error) {
	if id, err := uuid.Parse(arg); err == nil {
		return svc.GetTodo(id)
	}

	var match *models.Todo
	for _, t := range svc.AllTodos() {
		if strings.HasPrefix(t.ID.String(), strings.ToLower(arg)) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous id prefix %q", arg)
			}
			match = t
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no todo matches %q", arg)
	}
	return match, nil
}

// resolveFolder finds a folder by id, unique id prefix, or exact name
func resolveFolder(svc *tasks.Service, arg string) (*models.Folder, error) {
	if id, err := uuid.Parse(arg); err == nil {
		return svc.Folders().Get(id)
	}

	var match *models.Folder
	for _, f := range svc.ListFolders() {
		if f.Name == arg || strings.HasPrefix(f.ID.String(), strings.ToLower(arg)) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous folder %q", arg)
			}
			match = f
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no folder matches %q", arg)
	}
	return match, nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
