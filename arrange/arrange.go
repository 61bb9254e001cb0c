// Package arrange proposes semantic board layouts through an
// OpenAI-compatible chat completions API. The model clusters items by their
// descriptions and returns new positions through a forced function call.
package arrange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phanxgames/pinboard"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrNoAPIKey is returned by New when no API key is configured.
var ErrNoAPIKey = errors.New("arrange: api key is required")

// ErrNoToolCall is returned when the model answers without calling the
// layout function.
var ErrNoToolCall = errors.New("arrange: model did not call " + FunctionName)

const tracerName = "github.com/phanxgames/pinboard/arrange"

const (
	systemPrompt = "You are a spatial layouter. You form semantic clusters and place objects without overlaps."
	temperature  = 0.2
)

// Client calls the model. It implements pinboard.Arranger.
type Client struct {
	client  *openai.Client
	model   string
	locale  string
	timeout time.Duration
	logger  *slog.Logger
	tracer  trace.Tracer
}

var _ pinboard.Arranger = (*Client)(nil)

// New creates a client from the arrange section of the board config.
func New(settings pinboard.ArrangeSettings, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(settings.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg := openai.DefaultConfig(settings.APIKey)
	if base := strings.TrimSpace(settings.BaseURL); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	d := pinboard.DefaultConfig().Arrange
	model := settings.Model
	if strings.TrimSpace(model) == "" {
		model = d.Model
	}
	locale := settings.Locale
	if strings.TrimSpace(locale) == "" {
		locale = d.Locale
	}
	timeout := time.Duration(settings.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(d.TimeoutSec) * time.Second
	}
	return &Client{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		locale:  locale,
		timeout: timeout,
		logger:  logger.With("component", "arrange"),
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// SetTracerProvider routes the client's spans to tp instead of the global
// provider.
func (c *Client) SetTracerProvider(tp trace.TracerProvider) {
	c.tracer = tp.Tracer(tracerName)
}

// Arrange sends items to the model and returns the proposed placements.
// Sizes are never changed; IDs the model invents are returned as-is and are
// dropped by the board.
func (c *Client) Arrange(ctx context.Context, items []pinboard.ArrangeItem) ([]pinboard.Placement, error) {
	if len(items) == 0 {
		return nil, nil
	}
	ctx, span := c.tracer.Start(ctx, "arrange.layout",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int("arrange.items", len(items)),
			attribute.String("arrange.model", c.model),
		))
	defer span.End()

	placements, err := c.arrange(ctx, items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("arrange.placements", len(placements)))
	return placements, nil
}

func (c *Client) arrange(ctx context.Context, items []pinboard.ArrangeItem) ([]pinboard.Placement, error) {
	params, _, err := parametersSchema()
	if err != nil {
		return nil, err
	}
	prompt, err := userPrompt(items, c.locale)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        FunctionName,
				Description: "Returns the arranged items with updated positions and optional group IDs.",
				Parameters:  params,
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: FunctionName},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("arrange: chat completion: %w", err)
	}
	raw, ok := firstToolCallArguments(resp)
	if !ok {
		return nil, ErrNoToolCall
	}
	args, err := decodeArgs(raw)
	if err != nil {
		return nil, fmt.Errorf("arrange: %w", err)
	}
	c.logger.Info("layout received",
		"items", len(items),
		"placements", len(args.Items),
		"took", time.Since(start))

	out := make([]pinboard.Placement, 0, len(args.Items))
	for _, it := range args.Items {
		out = append(out, pinboard.Placement{
			ID:       it.ID,
			Position: pinboard.Vec2{X: it.Position.X, Y: it.Position.Y},
		})
	}
	return out, nil
}

func userPrompt(items []pinboard.ArrangeItem, locale string) (string, error) {
	wire := make([]wireItem, len(items))
	for i, it := range items {
		wire[i] = wireItem{
			ID:          it.ID,
			Description: it.Description,
			Position:    wirePosition{X: it.Position.X, Y: it.Position.Y},
			Size:        wireSize{Width: it.Size.Width, Height: it.Size.Height},
		}
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("arrange: encode items: %w", err)
	}
	var b strings.Builder
	b.WriteString("Arrange all objects spatially by their semantic relatedness. ")
	b.WriteString("Look for natural clusters, leave enough space between groups and keep local order within a group. ")
	b.WriteString("Only move positions (x,y); sizes stay the same. ")
	b.WriteString("Return the result exclusively through the function call '" + FunctionName + "' as JSON.\n")
	b.WriteString("Language: " + locale + "\n")
	b.WriteString("Input objects (JSON):\n")
	b.Write(data)
	return b.String(), nil
}

func firstToolCallArguments(resp openai.ChatCompletionResponse) (string, bool) {
	if len(resp.Choices) == 0 {
		return "", false
	}
	for _, tc := range resp.Choices[0].Message.ToolCalls {
		if tc.Function.Name == FunctionName && tc.Function.Arguments != "" {
			return tc.Function.Arguments, true
		}
	}
	return "", false
}
