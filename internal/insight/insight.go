// Package insight produces a short natural-language comment on a
// monthly spending summary. The OpenAI-backed commentator is optional;
// callers fall back to FallbackComment when it is absent or fails.
package insight

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"finlog/internal/core"
)

// Commentator turns an aggregated summary into one or two sentences of
// commentary for the monthly report email.
type Commentator interface {
	MonthlyComment(ctx context.Context, summary core.Summary, periodLabel string) (string, error)
}

type OpenAICommentator struct {
	client *openai.Client
	model  string
}

func NewOpenAICommentator(apiKey, model string) *OpenAICommentator {
	return &OpenAICommentator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *OpenAICommentator) MonthlyComment(ctx context.Context, summary core.Summary, periodLabel string) (string, error) {
	prompt := buildPrompt(summary, periodLabel)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: 120,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(summary core.Summary, periodLabel string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a personal finance assistant. In at most two sentences, comment on this spending summary for %s.\n", periodLabel)
	fmt.Fprintf(&b, "Income: %s, Expenses: %s, Net: %s.\n",
		summary.TotalIncome.String(), summary.TotalExpense.String(), summary.NetBalance.String())
	for _, ca := range summary.ByCategory() {
		fmt.Fprintf(&b, "- %s: %s\n", ca.Name, ca.Amount.String())
	}
	b.WriteString("Be concrete and friendly. No markdown.")
	return b.String()
}

// FallbackComment is the canned line used when no commentator is
// configured or the API call fails. The email must never be blocked on
// the commentary.
func FallbackComment(summary core.Summary) string {
	top := summary.TopCategory()
	if top == "" {
		return "No categorized spending this month."
	}
	total := summary.CategoryTotals[top]
	return fmt.Sprintf("Your largest spending category this month was %s at %s.", top, total.String())
}
