// Package export delivers generated reports as xlsx workbooks, GeoJSON
// files, FTP uploads, and Notion pages.
package export

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/dwellscan/survey-cli/internal/locale"
	"github.com/dwellscan/survey-cli/internal/model"
)

// WriteWorkbook renders a report as an xlsx workbook with a summary sheet
// and a per-space findings sheet, using localized headers.
func WriteWorkbook(session *model.Session, report *model.Report, catalog *locale.Catalog, path string) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet(catalog.Label("summary"))
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addPair := func(sheet *xlsx.Sheet, key, value string) {
		row := sheet.AddRow()
		row.AddCell().Value = key
		row.AddCell().Value = value
	}
	addPair(summary, catalog.Label("report"), session.Name)
	addPair(summary, catalog.Label("overall_score"), fmt.Sprintf("%d", report.OverallScore))
	addPair(summary, catalog.Label("summary"), report.Summary)
	for _, remedy := range report.GeneralRemedies {
		addPair(summary, catalog.Label("remedies"), remedy)
	}

	findings, err := f.AddSheet(catalog.Label("spaces"))
	if err != nil {
		return eris.Wrap(err, "export: add findings sheet")
	}

	header := findings.AddRow()
	for _, h := range []string{
		catalog.Label("floor"), catalog.Label("spaces"), "Status", "Observation", catalog.Label("remedies"),
	} {
		header.AddCell().Value = h
	}

	for _, finding := range report.Spaces {
		row := findings.AddRow()
		row.AddCell().Value = finding.FloorName
		row.AddCell().Value = catalog.Category(finding.Category)
		row.AddCell().Value = catalog.Status(finding.Status)
		row.AddCell().Value = finding.Observation
		row.AddCell().Value = finding.Remedy
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}
