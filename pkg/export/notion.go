package export

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/dwellscan/survey-cli/internal/locale"
	"github.com/dwellscan/survey-cli/internal/model"
)

// NotionPublisher creates one page per report in a Notion database.
type NotionPublisher interface {
	Publish(ctx context.Context, session *model.Session, report *model.Report, catalog *locale.Catalog) (string, error)
}

// pageCreator is the single Notion call the publisher depends on.
type pageCreator interface {
	createPage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
}

type notionAPI struct {
	inner *notionapi.Client
}

func (n *notionAPI) createPage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	return n.inner.Page.Create(ctx, req)
}

type notionPublisher struct {
	api        pageCreator
	databaseID string
	limiter    *rate.Limiter
}

// NewNotionPublisher creates a publisher writing to the given database.
// Calls are throttled to Notion's 3 req/s limit.
func NewNotionPublisher(token, databaseID string) NotionPublisher {
	return &notionPublisher{
		api:        &notionAPI{inner: notionapi.NewClient(notionapi.Token(token))},
		databaseID: databaseID,
		limiter:    rate.NewLimiter(3, 1),
	}
}

func (p *notionPublisher) Publish(ctx context.Context, session *model.Session, report *model.Report, catalog *locale.Catalog) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "export: notion rate limit")
	}

	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(p.databaseID),
		},
		Properties: notionapi.Properties{
			"Name": notionapi.TitleProperty{
				Title: richText(session.Name),
			},
			"Score": notionapi.NumberProperty{
				Number: float64(report.OverallScore),
			},
			"Language": notionapi.RichTextProperty{
				RichText: richText(report.Language),
			},
		},
		Children: reportBlocks(report, catalog),
	}

	page, err := p.api.createPage(ctx, req)
	if err != nil {
		return "", eris.Wrapf(err, "export: notion create page for session %s", session.ID)
	}
	return string(page.ID), nil
}

// reportBlocks renders the report body as Notion blocks: summary
// paragraph, one bullet per finding, then general remedies.
func reportBlocks(report *model.Report, catalog *locale.Catalog) []notionapi.Block {
	blocks := []notionapi.Block{
		&notionapi.ParagraphBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeParagraph),
			Paragraph: notionapi.Paragraph{
				RichText: richText(report.Summary),
			},
		},
	}

	for _, finding := range report.Spaces {
		line := fmt.Sprintf("%s (%s): %s. %s",
			catalog.Category(finding.Category),
			catalog.Status(finding.Status),
			finding.Observation,
			finding.Remedy,
		)
		blocks = append(blocks, &notionapi.BulletedListItemBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeBulletedListItem),
			BulletedListItem: notionapi.ListItem{
				RichText: richText(line),
			},
		})
	}

	for _, remedy := range report.GeneralRemedies {
		blocks = append(blocks, &notionapi.BulletedListItemBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeBulletedListItem),
			BulletedListItem: notionapi.ListItem{
				RichText: richText(catalog.Label("remedies") + ": " + remedy),
			},
		})
	}

	return blocks
}

func basicBlock(t notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{
		Object: notionapi.ObjectTypeBlock,
		Type:   t,
	}
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{Text: &notionapi.Text{Content: content}},
	}
}
