package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidytask/tidytask/internal/models"
	"github.com/tidytask/tidytask/internal/services/tasks"
)

// NewAddCmd creates the add command
func NewAddCmd() *cobra.Command {
	var (
		description string
		priority    string
		tags        []string
		due         string
		folder      string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			in := tasks.CreateTodoInput{
				Title:       args[0],
				Description: description,
				Priority:    models.Priority(priority),
				Tags:        tags,
			}

			if due != "" {
				d, err := time.ParseInLocation("2006-01-02", due, time.Local)
				if err != nil {
					return fmt.Errorf("invalid due date %q (use YYYY-MM-DD)", due)
				}
				in.DueDate = &d
			}

			if folder != "" {
				f, err := resolveFolder(svc, folder)
				if err != nil {
					return err
				}
				in.FolderID = &f.ID
			}

			todo, err := svc.CreateTodo(in)
			if err != nil {
				return err
			}
			fmt.Printf("Added %s: %s\n", shortID(todo.ID), todo.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Todo description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority: low, medium or high (default medium)")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Tag (repeatable)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "Folder name or id")
	return cmd
}
