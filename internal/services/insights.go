package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/models"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var ErrInsightsDisabled = errors.New("insights are not configured")

const (
	defaultInsightsModel = "gpt-4o-mini"
	insightsLookback     = 90 * 24 * time.Hour
)

const insightsSystemPrompt = "You are a personal finance assistant. Given a " +
	"spending digest, point out notable patterns, category overspending and " +
	"one or two concrete saving opportunities. Be concise and concrete; do " +
	"not invent numbers that are not in the digest."

// Insight is the generated advice plus token accounting.
type Insight struct {
	Text        string    `json:"text"`
	Model       string    `json:"model"`
	TotalTokens int64     `json:"total_tokens"`
	GeneratedAt time.Time `json:"generated_at"`
}

type InsightsService struct {
	cfg          *config.Config
	transactions *TransactionService
}

func NewInsightsService(cfg *config.Config) *InsightsService {
	return &InsightsService{
		cfg:          cfg,
		transactions: NewTransactionService(cfg),
	}
}

// Enabled reports whether an API key is configured.
func (s *InsightsService) Enabled() bool {
	return s.cfg.Insights.APIKey != ""
}

// Generate builds a digest of the user's recent activity and asks the model
// for spending insights.
func (s *InsightsService) Generate(ctx context.Context, userID uint) (*Insight, error) {
	if !s.Enabled() {
		return nil, ErrInsightsDisabled
	}

	digest, err := s.buildDigest(userID)
	if err != nil {
		return nil, err
	}

	model := s.cfg.Insights.Model
	if model == "" {
		model = defaultInsightsModel
	}

	client := openai.NewClient(option.WithAPIKey(s.cfg.Insights.APIKey))
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(insightsSystemPrompt),
			openai.UserMessage(digest),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("insights request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("insights request: no choices returned")
	}

	return &Insight{
		Text:        resp.Choices[0].Message.Content,
		Model:       model,
		TotalTokens: resp.Usage.TotalTokens,
		GeneratedAt: time.Now(),
	}, nil
}

// buildDigest summarizes the lookback window as compact text: monthly
// income/expense totals and the top expense categories.
func (s *InsightsService) buildDigest(userID uint) (string, error) {
	since := time.Now().Add(-insightsLookback)

	var transactions []models.Transaction
	if err := models.DB.Where("user_id = ? AND occurred_at >= ?", userID, since).
		Preload("Category").
		Order("occurred_at").
		Find(&transactions).Error; err != nil {
		return "", err
	}
	if len(transactions) == 0 {
		return "No transactions recorded in the last 90 days.", nil
	}

	type monthTotals struct {
		income, expenses int64
	}
	months := map[string]*monthTotals{}
	monthOrder := []string{}
	categoryTotals := map[string]int64{}

	for _, tx := range transactions {
		month := tx.OccurredAt.Format("2006-01")
		mt, ok := months[month]
		if !ok {
			mt = &monthTotals{}
			months[month] = mt
			monthOrder = append(monthOrder, month)
		}
		if tx.Kind == models.KindIncome {
			mt.income += tx.Amount
		} else {
			mt.expenses += tx.Amount
			categoryTotals[tx.Category.Name] += tx.Amount
		}
	}

	var b strings.Builder
	b.WriteString("Spending digest, last 90 days (amounts in cents):\n")
	for _, month := range monthOrder {
		mt := months[month]
		fmt.Fprintf(&b, "%s: income %d, expenses %d, net %d\n",
			month, mt.income, mt.expenses, mt.income-mt.expenses)
	}
	// stable prompt: biggest categories first, ties by name
	names := make([]string, 0, len(categoryTotals))
	for name := range categoryTotals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if categoryTotals[names[i]] != categoryTotals[names[j]] {
			return categoryTotals[names[i]] > categoryTotals[names[j]]
		}
		return names[i] < names[j]
	})

	b.WriteString("Expense totals by category:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %d\n", name, categoryTotals[name])
	}
	return b.String(), nil
}
