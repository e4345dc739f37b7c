package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"wealthflow/internal/core"
)

// RecentLimit is how many of the newest transactions go into the prompt.
const RecentLimit = 20

var (
	WelcomeInsight = core.Insight{
		Title:   "Welcome",
		Message: "Add your API Key to enable AI insights.",
		Tone:    core.ToneNeutral,
	}
	UnavailableInsight = core.Insight{
		Title:   "Analysis Unavailable",
		Message: "Could not generate insights at this moment.",
		Tone:    core.ToneNeutral,
	}
)

const (
	fallbackTitle   = "Financial Update"
	fallbackMessage = "Keep tracking your expenses to stay on top of your budget."
)

// compactTx is the token-saving shape sent to the model.
type compactTx struct {
	T core.TransactionType `json:"t"`
	A decimal.Decimal      `json:"a"`
	C string               `json:"c"`
	D time.Time            `json:"d"`
}

func compact(txs []core.Transaction) []compactTx {
	recent := core.RecentTransactions(txs, RecentLimit)
	out := make([]compactTx, len(recent))
	for i, t := range recent {
		out[i] = compactTx{T: t.Type, A: t.Amount, C: t.Category, D: t.Date}
	}
	return out
}

func insightPrompt(summary []byte, dailyLimit decimal.Decimal, currency string) string {
	return fmt.Sprintf(`Analyze these recent financial transactions and the user's daily spending limit of %s%s.
Transactions (JSON): %s

Provide a short, helpful insight or tip (max 2 sentences).
Determine the tone: 'positive' (good habits), 'warning' (overspending), or 'neutral'.`,
		currency, dailyLimit.String(), summary)
}

var insightSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":   {Type: genai.TypeString},
		"message": {Type: genai.TypeString},
		"tone": {
			Type: genai.TypeString,
			Enum: []string{string(core.TonePositive), string(core.ToneWarning), string(core.ToneNeutral)},
		},
	},
}

// AnalyzeFinances returns a short insight about the newest transactions.
func (c *Client) AnalyzeFinances(ctx context.Context, txs []core.Transaction, dailyLimit decimal.Decimal, currency string) core.Insight {
	if !c.Enabled() {
		return WelcomeInsight
	}

	summary, err := json.Marshal(compact(txs))
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to encode transactions for analysis", "error", err)
		return UnavailableInsight
	}

	text, err := c.generate(ctx, insightPrompt(summary, dailyLimit, currency), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   insightSchema,
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "Gemini analysis failed", "error", err)
		return UnavailableInsight
	}

	insight, err := parseInsight(text)
	if err != nil {
		c.logger.ErrorContext(ctx, "Gemini analysis returned invalid JSON", "error", err)
		return UnavailableInsight
	}
	return insight
}

var errNotObject = errors.New("insight answer is not a JSON object")

// parseInsight decodes the model answer and fills in each missing field.
// An empty answer is treated as an empty object; any other non-object,
// null included, is an error.
func parseInsight(text string) (core.Insight, error) {
	var raw *struct {
		Title   string `json:"title"`
		Message string `json:"message"`
		Tone    string `json:"tone"`
	}
	if text == "" {
		text = "{}"
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return core.Insight{}, err
	}
	if raw == nil {
		return core.Insight{}, errNotObject
	}

	insight := core.Insight{Title: raw.Title, Message: raw.Message, Tone: core.Tone(raw.Tone)}
	if insight.Title == "" {
		insight.Title = fallbackTitle
	}
	if insight.Message == "" {
		insight.Message = fallbackMessage
	}
	if !insight.Tone.Valid() {
		insight.Tone = core.ToneNeutral
	}
	return insight, nil
}
