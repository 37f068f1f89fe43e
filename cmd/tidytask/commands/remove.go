package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRemoveCmd creates the rm command
func NewRemoveCmd() *cobra.Command {
	var completed bool

	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Remove a todo, or all completed todos with --completed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			if completed {
				n, err := svc.ClearCompleted()
				if err != nil {
					return err
				}
				fmt.Printf("Removed %d completed todo(s)\n", n)
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("an id is required unless --completed is set")
			}
			todo, err := resolveTodo(svc, args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteTodo(todo.ID); err != nil {
				return err
			}
			fmt.Printf("Removed %s: %s\n", shortID(todo.ID), todo.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", false, "Remove every completed todo")
	return cmd
}
