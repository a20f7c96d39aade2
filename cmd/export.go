package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dwellscan/survey-cli/internal/locale"
	"github.com/dwellscan/survey-cli/pkg/export"
)

var (
	exportFTP    bool
	exportNotion bool
)

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session's report as xlsx and GeoJSON",
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
		report, err := st.GetReport(ctx, session.ID)
		if err != nil {
			return err
		}

		language := report.Language
		if language == "" {
			language = cfg.Locale.Language
		}
		catalog, err := locale.Match(language)
		if err != nil {
			return err
		}

		base := strings.ReplaceAll(strings.ToLower(session.Name), " ", "-")
		xlsxPath := filepath.Join(cfg.Export.OutputDir, base+".xlsx")
		geoPath := filepath.Join(cfg.Export.OutputDir, base+".geojson")

		if err := export.WriteWorkbook(session, report, catalog, xlsxPath); err != nil {
			return err
		}
		if err := export.WriteGeoJSON(session, geoPath); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Wrote %s\nWrote %s\n", xlsxPath, geoPath)

		if exportFTP {
			target := export.FTPTarget{
				Host:     cfg.Export.FTP.Host,
				User:     cfg.Export.FTP.User,
				Password: cfg.Export.FTP.Password,
				Dir:      cfg.Export.FTP.Dir,
			}
			if err := export.UploadFTP(ctx, target, xlsxPath); err != nil {
				return err
			}
			fmt.Fprintf(out, "Uploaded to %s\n", target.Host)
		}

		if exportNotion {
			publisher := export.NewNotionPublisher(cfg.Export.Notion.Token, cfg.Export.Notion.DatabaseID)
			pageID, err := publisher.Publish(ctx, session, report, catalog)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Published Notion page %s\n", pageID)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportFTP, "ftp", false, "upload the workbook to the configured FTP server")
	exportCmd.Flags().BoolVar(&exportNotion, "notion", false, "publish the report to the configured Notion database")
	rootCmd.AddCommand(exportCmd)
}
