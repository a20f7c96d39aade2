package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dwellscan/survey-cli/internal/geomio"
	"github.com/dwellscan/survey-cli/internal/model"
)

var importName string

var importCmd = &cobra.Command{
	Use:   "import <shapefile>",
	Short: "Create a session from a plot shapefile",
	Long:  "Reads the first polygon from a shapefile and seeds a new session's ground floor boundary with its corners.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		boundary, err := geomio.ImportBoundary(args[0])
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		session := model.NewSession(importName)
		session.Floors[0].Boundary = boundary
		if err := st.CreateSession(ctx, &session); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created session %s with %d boundary corners\n",
			session.ID, len(boundary))
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importName, "name", "Imported Plot", "session name")
	rootCmd.AddCommand(importCmd)
}
