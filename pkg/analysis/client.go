// Package analysis generates structured compliance reports from captured
// floor geometry using the Anthropic API.
package analysis

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/dwellscan/survey-cli/internal/model"
)

// ErrAnalysisFailed wraps any terminal failure of report generation. The
// capture workflow matches on it to return to space tagging.
var ErrAnalysisFailed = eris.New("analysis: report generation failed")

// Request carries the geometry snapshot for one analysis run.
type Request struct {
	// Floors is an isolated copy of the captured floors.
	Floors []model.Floor

	// Language is the report language tag, "en" or "hi".
	Language string

	// PlaceName optionally names the surveyed property for the prompt.
	PlaceName string
}

// Client turns captured geometry into a compliance report.
type Client interface {
	Analyze(ctx context.Context, req Request) (*model.Report, error)
}

// messenger is the single SDK call the analyzer depends on. Tests
// substitute a scripted implementation.
type messenger interface {
	createMessage(ctx context.Context, params sdk.MessageNewParams) (*sdk.Message, error)
}

// sdkMessenger implements messenger with the official anthropic-sdk-go.
type sdkMessenger struct {
	client sdk.Client
}

func (m *sdkMessenger) createMessage(ctx context.Context, params sdk.MessageNewParams) (*sdk.Message, error) {
	return m.client.Messages.New(ctx, params)
}

// Option configures the analyzer.
type Option func(*analyzer)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(a *analyzer) {
		a.model = model
	}
}

// WithMaxTokens overrides the response token limit.
func WithMaxTokens(n int64) Option {
	return func(a *analyzer) {
		a.maxTokens = n
	}
}

type analyzer struct {
	messenger messenger
	model     string
	maxTokens int64
}

// NewClient creates an analysis Client backed by the Anthropic API.
func NewClient(apiKey string, opts ...Option) Client {
	a := &analyzer{
		messenger: &sdkMessenger{
			client: sdk.NewClient(option.WithAPIKey(apiKey)),
		},
		model:     "claude-sonnet-4-20250514",
		maxTokens: 4096,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
