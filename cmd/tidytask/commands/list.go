package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tidytask/tidytask/internal/models"
	"github.com/tidytask/tidytask/internal/validation"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		status    string
		priority  string
		tags      []string
		search    string
		sortField string
		direction string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" {
				if err := validation.ValidateStatusFilter(status); err != nil {
					return err
				}
			}
			if priority != "" {
				if err := validation.ValidatePriority(priority); err != nil {
					return err
				}
			}
			if sortField != "" {
				if err := validation.ValidateSortField(sortField); err != nil {
					return err
				}
			}
			if err := validation.ValidateSortDirection(direction); err != nil {
				return err
			}

			svc, closeStore, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			todos := svc.FilterTodos(models.FilterOptions{
				Status:   models.StatusFilter(status),
				Priority: models.Priority(priority),
				Tags:     tags,
				Search:   search,
			})
			if sortField != "" {
				todos = svc.SortTodos(todos, models.SortField(sortField), models.SortDirection(direction))
			}

			if len(todos) == 0 {
				fmt.Println("No todos.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\t \tPRI\tTITLE\tTAGS\tDUE")
			for _, t := range todos {
				done := " "
				if t.Completed {
					done = "x"
				}
				due := ""
				if t.DueDate != nil {
					due = t.DueDate.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\t%s\t%s\n",
					shortID(t.ID), done, t.Priority, t.Title, strings.Join(t.Tags, ","), due)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status: all, active or completed")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Filter by priority")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Filter by tag (repeatable, any-of)")
	cmd.Flags().StringVar(&search, "search", "", "Search title, description and tags")
	cmd.Flags().StringVar(&sortField, "sort", "", "Sort by createdAt, title or priority")
	cmd.Flags().StringVar(&direction, "direction", "asc", "Sort direction: asc or desc")
	return cmd
}
