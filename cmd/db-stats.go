package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
	"github.com/spf13/cobra"
)

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Show database statistics",
	Long:  `Display statistics about users, training sessions, goals and generated summaries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		db := mustOpenDatabase(cfg)
		defer db.Close() //nolint: errcheck

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get database stats: %w", err)
		}

		fmt.Println("Database Statistics:")
		fmt.Printf("Users: %s (%s admins)\n", humanize.Comma(stats.Users), humanize.Comma(stats.Admins))
		fmt.Printf("Training Sessions: %s\n", humanize.Comma(stats.Trainings))
		fmt.Printf("Total Training Time: %s\n", time.Duration(stats.TotalMinutes)*time.Minute)
		fmt.Printf("Season Goals: %s\n", humanize.Comma(stats.Goals))
		fmt.Printf("Generated Summaries: %s\n", humanize.Comma(stats.Summaries))

		if stats.LastTrainingAt != nil {
			fmt.Printf("Last Training: %s (%s)\n", stats.LastTrainingAt.Format(time.DateOnly), timediff.TimeDiff(*stats.LastTrainingAt))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbStatsCmd)
}
