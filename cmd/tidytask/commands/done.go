package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDoneCmd creates the done command
func NewDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a todo's completed state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			todo, err := resolveTodo(svc, args[0])
			if err != nil {
				return err
			}
			updated, err := svc.ToggleTodo(todo.ID)
			if err != nil {
				return err
			}
			state := "active"
			if updated.Completed {
				state = "completed"
			}
			fmt.Printf("%s is now %s\n", shortID(updated.ID), state)
			return nil
		},
	}
}
