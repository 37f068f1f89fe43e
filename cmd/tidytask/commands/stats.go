package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tidytask/tidytask/internal/models"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show todo statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			s := svc.Stats()
			fmt.Printf("Total:       %d\n", s.Total)
			fmt.Printf("Completed:   %d (%.1f%%)\n", s.Completed, s.CompletionRate)
			fmt.Printf("Active:      %d\n", s.Active)
			fmt.Printf("Added today: %d\n", s.TodayAdded)
			fmt.Printf("Overdue:     %d\n", s.OverdueCount)

			byPriority := svc.PriorityStats()
			fmt.Println("\nBy priority:")
			for _, p := range []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
				fmt.Printf("  %-7s %d\n", p, byPriority[p])
			}

			byTag := svc.TagStats()
			if len(byTag) > 0 {
				tags := make([]string, 0, len(byTag))
				for tag := range byTag {
					tags = append(tags, tag)
				}
				sort.Strings(tags)
				fmt.Println("\nBy tag:")
				for _, tag := range tags {
					fmt.Printf("  %-20s %d\n", tag, byTag[tag])
				}
			}
			return nil
		},
	}
}
