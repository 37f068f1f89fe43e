package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tidytask/tidytask/internal/models"
	"github.com/tidytask/tidytask/internal/services/tasks"
)

// NewFolderCmd creates the folder command group
func NewFolderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage the folder hierarchy",
	}
	cmd.AddCommand(newFolderAddCmd())
	cmd.AddCommand(newFolderListCmd())
	cmd.AddCommand(newFolderMoveCmd())
	cmd.AddCommand(newFolderRemoveCmd())
	return cmd
}

func newFolderAddCmd() *cobra.Command {
	var (
		parent string
		color  string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			parentID := uuid.Nil
			if parent != "" {
				p, err := resolveFolder(svc, parent)
				if err != nil {
					return err
				}
				parentID = p.ID
			}

			folder, err := svc.CreateFolder(args[0], parentID, color)
			if err != nil {
				return err
			}
			fmt.Printf("Created folder %s: %s\n", shortID(folder.ID), folder.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Parent folder name or id (default root)")
	cmd.Flags().StringVarP(&color, "color", "c", "", "Display color")
	return cmd
}

func newFolderListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the folder tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			printFolderTree(svc, models.RootFolderID, 0)
			return nil
		},
	}
}

// printFolderTree renders the hierarchy depth-first with indentation
func printFolderTree(svc *tasks.Service, id uuid.UUID, depth int) {
	folder, err := svc.Folders().Get(id)
	if err != nil {
		return
	}
	count := 0
	for _, t := range svc.AllTodos() {
		if t.FolderID == nil {
			if folder.IsRoot() {
				count++
			}
		} else if *t.FolderID == folder.ID {
			count++
		}
	}
	for i := 0; i < depth; i++ {
		fmt.Print("  ")
	}
	fmt.Printf("%s %s (%d)\n", shortID(folder.ID), folder.Name, count)

	for _, f := range svc.ListFolders() {
		if f.ParentID != nil && *f.ParentID == id {
			printFolderTree(svc, f.ID, depth+1)
		}
	}
}

func newFolderMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <folder> <new-parent>",
		Short: "Move a folder under a new parent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			folder, err := resolveFolder(svc, args[0])
			if err != nil {
				return err
			}
			parent, err := resolveFolder(svc, args[1])
			if err != nil {
				return err
			}
			if err := svc.MoveFolder(folder.ID, parent.ID); err != nil {
				return err
			}
			fmt.Printf("Moved %s under %s\n", folder.Name, parent.Name)
			return nil
		},
	}
}

func newFolderRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <folder>",
		Short: "Delete a folder, its subfolders and their todos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			folder, err := resolveFolder(svc, args[0])
			if err != nil {
				return err
			}
			todosRemoved, foldersRemoved, err := svc.DeleteFolder(folder.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d folder(s) and %d todo(s)\n", foldersRemoved, todosRemoved)
			return nil
		},
	}
}
