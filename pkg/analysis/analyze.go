package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dwellscan/survey-cli/internal/model"
	"github.com/dwellscan/survey-cli/internal/resilience"
)

// Analyze digests the captured geometry, asks the model for a structured
// report, and validates the response. All failures are wrapped in
// ErrAnalysisFailed so the workflow can treat them uniformly.
func (a *analyzer) Analyze(ctx context.Context, req Request) (*model.Report, error) {
	if len(req.Floors) == 0 {
		return nil, eris.Wrap(ErrAnalysisFailed, "no floors captured")
	}
	if req.Language == "" {
		req.Language = "en"
	}

	digest, err := buildDigest(req)
	if err != nil {
		return nil, eris.Wrap(ErrAnalysisFailed, err.Error())
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(a.model),
		MaxTokens: a.maxTokens,
		System: []sdk.TextBlockParam{
			{Text: systemPrompt(req.Language)},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(digest)),
		},
	}

	var msg *sdk.Message
	err = resilience.Do(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) error {
		var callErr error
		msg, callErr = a.messenger.createMessage(ctx, params)
		return callErr
	})
	if err != nil {
		return nil, eris.Wrapf(ErrAnalysisFailed, "create message: %v", err)
	}

	text := textContent(msg)
	if text == "" {
		return nil, eris.Wrap(ErrAnalysisFailed, "empty response")
	}

	report, err := parseReport(text)
	if err != nil {
		zap.L().Warn("analysis: rejected model response", zap.Error(err))
		return nil, eris.Wrapf(ErrAnalysisFailed, "parse report: %v", err)
	}

	report.Language = req.Language
	report.GeneratedAt = time.Now().UTC()

	zap.L().Info("analysis: report generated",
		zap.Int("overall_score", report.OverallScore),
		zap.Int("spaces", len(report.Spaces)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)
	return report, nil
}

func textContent(msg *sdk.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// parseReport extracts the JSON object from the response text and
// validates it. Models occasionally wrap JSON in markdown fences.
func parseReport(text string) (*model.Report, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, eris.New("no JSON object in response")
	}

	var report model.Report
	if err := json.Unmarshal([]byte(text[start:end+1]), &report); err != nil {
		return nil, eris.Wrap(err, "unmarshal report")
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}
	return &report, nil
}
