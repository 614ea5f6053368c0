package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
)

const defaultAIModel = "claude-sonnet-4-5-20250929"

// aiDecision is one mapping proposal returned by the model. Confidence is
// 0-100 to match the similarity oracle's scale.
type aiDecision struct {
	Code       string `json:"code"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning,omitempty"`
}

type aiResponse struct {
	Decisions []aiDecision `json:"decisions"`
}

// reviewLowConfidence asks the model for a second opinion on every account
// whose best similarity score fell below the threshold. Proposals are only
// shown in the review loop, never auto-accepted, and proposals naming a code
// outside the target chart are dropped.
func reviewLowConfidence(accounts []SourceAccount, sugg map[string]Suggestion, chart []ChartEntry,
	threshold int, apiKey, model string, batchSize int) (map[string]aiDecision, error) {

	var low []SourceAccount
	for _, acc := range accounts {
		if !sugg[acc.ID].Confident(threshold) {
			low = append(low, acc)
		}
	}
	decisions := make(map[string]aiDecision)
	if len(low) == 0 {
		return decisions, nil
	}
	fmt.Printf("Sending %d low-confidence accounts for AI review...\n", len(low))

	validCodes := make(map[string]bool, len(chart))
	for _, e := range chart {
		validCodes[e.Code] = true
	}

	for start := 0; start < len(low); start += batchSize {
		end := min(start+batchSize, len(low))
		batch := low[start:end]

		resp, err := callClaude(apiKey, model, buildAIPrompt(batch, sugg, chart))
		if err != nil {
			return nil, errors.Wrapf(err, "batch %d", start/batchSize+1)
		}
		if len(resp.Decisions) != len(batch) {
			return nil, errors.Errorf("model returned %d decisions for %d accounts", len(resp.Decisions), len(batch))
		}
		for i, d := range resp.Decisions {
			if len(d.Code) == 0 || !validCodes[d.Code] {
				continue
			}
			decisions[batch[i].ID] = d
		}
	}
	return decisions, nil
}

func buildAIPrompt(batch []SourceAccount, sugg map[string]Suggestion, chart []ChartEntry) string {
	var b strings.Builder
	b.WriteString(`You map general-ledger accounts between two charts of accounts.

**Target chart** (one per line: code|classification|name):

`)
	for _, e := range chart {
		fmt.Fprintf(&b, "%s|%s|%s\n", e.Code, e.Classification, e.Name)
	}
	b.WriteString(`
**Source accounts to map** (one per line: classification|name|best fuzzy guess so far with its 0-100 score):

`)
	for _, acc := range batch {
		sg := sugg[acc.ID]
		if sg.Found {
			fmt.Fprintf(&b, "%s|%s|%s (%d)\n", acc.Classification, acc.Name, sg.Entry.Name, sg.Score)
		} else {
			fmt.Fprintf(&b, "%s|%s|-\n", acc.Classification, acc.Name)
		}
	}
	b.WriteString(`
For each source account pick the target account whose meaning matches best.
Accounting meaning beats surface similarity: "Caixa Geral" belongs with
"Caixa", not with an unrelated account whose spelling happens to be closer.

Return a JSON object, decisions in the SAME ORDER as the source accounts,
exactly one per account:

{
  "decisions": [
    {"code": "10", "confidence": 85, "reasoning": "same cash account, name variant"}
  ]
}

Rules:
- "code" must be a code from the target chart.
- "confidence" is 0-100.
- "reasoning" must be brief (under 12 words).
`)
	return b.String()
}

func callClaude(apiKey, model string, prompt string) (aiResponse, error) {
	var empty aiResponse
	if len(apiKey) == 0 {
		return empty, errors.New("ANTHROPIC_API_KEY not set. Set it in the environment or config.yaml")
	}
	if len(model) == 0 {
		model = defaultAIModel
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	message, err := client.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 8192,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return empty, errors.Wrap(err, "claude API call failed")
	}
	if len(message.Content) == 0 {
		return empty, errors.New("empty response from Claude API")
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	// The model may wrap its JSON in a markdown code block.
	jsonStart := strings.Index(responseText, "{")
	jsonEnd := strings.LastIndex(responseText, "}")
	if jsonStart == -1 || jsonEnd == -1 {
		return empty, errors.Errorf("no JSON found in response: %s", responseText)
	}

	var resp aiResponse
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd+1]), &resp); err != nil {
		return empty, errors.Wrapf(err, "parsing model response %s", responseText)
	}
	return resp, nil
}
