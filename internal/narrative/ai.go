package narrative

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"airmarket/internal/config"
	"airmarket/pkg/contracts/domain"
)

// NotConfiguredMessage is returned when no API key is set
const NotConfiguredMessage = "AI narrative not configured. Set AIRMARKET_NARRATIVE_API_KEY to enable AI-powered insights."

const systemPrompt = "You are an airline market analyst. Answer with concise, actionable bullet points."

// AINarrator asks a chat completion model for business insights about a
// dataset summary. It never returns an error; failures become a message.
type AINarrator struct {
	client    openai.Client
	enabled   bool
	model     string
	maxTokens int64
	timeout   time.Duration
	logger    *slog.Logger
}

// NewAINarrator creates a narrator from configuration. Without an API key no
// client calls are made.
func NewAINarrator(cfg config.NarrativeConfig, logger *slog.Logger) *AINarrator {
	if logger == nil {
		logger = slog.Default()
	}

	n := &AINarrator{
		enabled:   strings.TrimSpace(cfg.APIKey) != "",
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		logger:    logger.With(slog.String("component", "ai_narrator")),
	}
	if !n.enabled {
		return n
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	n.client = openai.NewClient(opts...)
	return n
}

// Enabled reports whether an API key is configured
func (n *AINarrator) Enabled() bool {
	return n.enabled
}

// Narrate returns AI generated insights for summary, or a fixed message when
// the collaborator is not configured or the call fails
func (n *AINarrator) Narrate(ctx context.Context, summary domain.DataSummary) string {
	if !n.enabled {
		return NotConfiguredMessage
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(n.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(Prompt(summary)),
		},
	}
	if n.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(n.maxTokens)
	}

	start := time.Now()
	resp, err := n.client.Chat.Completions.New(ctx, params)
	if err != nil {
		n.logger.WarnContext(ctx, "AI narrative request failed",
			slog.String("model", n.model),
			slog.String("error", err.Error()))
		return "AI narrative unavailable: " + err.Error()
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		n.logger.WarnContext(ctx, "AI narrative returned no content", slog.String("model", n.model))
		return "AI narrative unavailable: empty response"
	}

	n.logger.InfoContext(ctx, "AI narrative generated",
		slog.String("model", n.model),
		slog.Duration("duration", time.Since(start)),
		slog.Int64("total_tokens", resp.Usage.TotalTokens))

	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

// Prompt builds the analysis request for a dataset summary
func Prompt(summary domain.DataSummary) string {
	var b strings.Builder
	b.WriteString("Analyze this airline market data and provide 3-5 key business insights.\n\n")
	b.WriteString("Data Summary:\n")
	fmt.Fprintf(&b, "- Total Flights: %d\n", summary.TotalFlights)
	fmt.Fprintf(&b, "- Date Range: %s\n", summary.DateRange)
	fmt.Fprintf(&b, "- Airlines: %d\n", summary.AirlineCount)
	fmt.Fprintf(&b, "- Routes: %d\n", summary.RouteCount)
	fmt.Fprintf(&b, "- Average Price: %s\n", summary.AvgPrice)
	fmt.Fprintf(&b, "- Average Occupancy: %s\n\n", summary.AvgOccupancy)
	b.WriteString("Cover market trends and patterns, revenue optimization opportunities, ")
	b.WriteString("route performance, competitive insights and recommendations for airlines.\n")
	b.WriteString("Format as bullet points with clear, actionable insights.")
	return b.String()
}
