package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trainlog/trainlog/internal/database"
)

var summarizeFlags struct {
	Email string
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Generate and send training summaries now",
	Long: `Run the summary job immediately. Without --email every user with sessions in
the last 30 days gets a summary, with --email only that user.`,
	Example: `trainlog summarize
trainlog summarize --email athlete@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		db := mustOpenDatabase(cfg)
		defer db.Close() //nolint: errcheck

		analysisService, err := newAnalysisService(cmd.Context(), cfg, db)
		if err != nil {
			return err
		}
		if !analysisService.Enabled() {
			return errors.New("no AI API key configured")
		}
		job := newSummaryJob(cfg, db, analysisService)

		if summarizeFlags.Email == "" {
			report, err := job.Run(cmd.Context())
			fmt.Printf("Users: %d, generated: %d, skipped: %d, failed: %d\n",
				report.Users, report.Generated, report.Skipped, report.Failed)
			return err
		}

		user, err := db.GetUserByEmail(cmd.Context(), summarizeFlags.Email)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("no user with email %s", summarizeFlags.Email)
			}
			return err
		}
		generated, err := job.RunForUser(cmd.Context(), *user)
		if err != nil {
			return err
		}
		if !generated {
			fmt.Println("No training sessions in the last 30 days, nothing to summarize.")
			return nil
		}
		fmt.Printf("Summary generated for %s\n", user.Email)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeFlags.Email, "email", "", "Only summarize this user")
	rootCmd.AddCommand(summarizeCmd)
}
