package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dwellscan/survey-cli/pkg/analysis"
)

var analyzeLanguage string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <session-id>",
	Short: "Generate a compliance report for a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		session, err := st.GetSession(ctx, args[0])
		if err != nil {
			return err
		}

		language := analyzeLanguage
		if language == "" {
			language = cfg.Locale.Language
		}

		client := analysis.NewClient(cfg.Analysis.Key,
			analysis.WithModel(cfg.Analysis.Model),
			analysis.WithMaxTokens(int64(cfg.Analysis.MaxTokens)),
		)
		report, err := client.Analyze(ctx, analysis.Request{
			Floors:    session.Floors,
			Language:  language,
			PlaceName: session.Name,
		})
		if err != nil {
			return err
		}

		if err := st.SaveReport(ctx, session.ID, report); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Overall score: %d\n%s\n\n", report.OverallScore, report.Summary)
		for _, f := range report.Spaces {
			fmt.Fprintf(out, "%-16s %-5s %s\n", f.Category, f.Status, f.Observation)
			if f.Remedy != "" {
				fmt.Fprintf(out, "%16s       remedy: %s\n", "", f.Remedy)
			}
		}
		for _, r := range report.GeneralRemedies {
			fmt.Fprintf(out, "* %s\n", r)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeLanguage, "language", "", "report language (default from config)")
	rootCmd.AddCommand(analyzeCmd)
}
