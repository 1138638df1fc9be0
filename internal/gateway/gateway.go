// internal/gateway/gateway.go
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"nutrifacil/internal/config"
	"nutrifacil/internal/models"
)

// ContentGenerator is the slice of the genai SDK the gateway needs.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Recorder receives one record per outbound call.
type Recorder interface {
	RecordCall(ctx context.Context, record models.CallRecord) error
}

type Options struct {
	Model       string
	Temperature float64
	Timeout     time.Duration
	Recorder    Recorder
	Logger      *slog.Logger
}

type Client struct {
	generator   ContentGenerator
	model       string
	temperature float32
	timeout     time.Duration
	recorder    Recorder
	logger      *slog.Logger
}

// New validates cfg and connects a Gemini client. A missing API key fails
// here, before any request is attempted.
func New(ctx context.Context, cfg *config.Config, recorder Recorder) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gateway configuration: %w", err)
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return NewWithGenerator(genaiClient.Models, Options{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.RequestTimeout,
		Recorder:    recorder,
	}), nil
}

func NewWithGenerator(generator ContentGenerator, opts Options) *Client {
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		generator:   generator,
		model:       opts.Model,
		temperature: float32(opts.Temperature),
		timeout:     opts.Timeout,
		recorder:    opts.Recorder,
		logger:      opts.Logger,
	}
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// GenerateDietPlan asks the service for a complete plan constrained by
// dietSchema. The plan is returned only when every required field is present
// and valid.
func (c *Client) GenerateDietPlan(ctx context.Context, profile models.UserProfile) (*models.DietPlan, error) {
	if err := profile.Validate(); err != nil {
		return nil, &OpError{Op: OpGenerateDietPlan, Err: fmt.Errorf("%w: %w", ErrInvalidRequest, err)}
	}

	generateConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   dietSchema(),
		Temperature:      genai.Ptr(c.temperature),
	}

	var plan *models.DietPlan
	err := c.call(ctx, OpGenerateDietPlan, genai.Text(buildDietPrompt(profile)), generateConfig, func(text string) error {
		parsed, err := parseDietPlan(text)
		if err != nil {
			return err
		}
		plan = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// GetSubstitution returns free text with three alternatives for food at
// roughly targetCalories. The text is meant to be shown verbatim.
func (c *Client) GetSubstitution(ctx context.Context, food string, targetCalories int) (string, error) {
	food = strings.TrimSpace(food)
	if food == "" {
		return "", &OpError{Op: OpGetSubstitution, Err: fmt.Errorf("%w: food name is required", ErrInvalidRequest)}
	}
	if targetCalories <= 0 {
		return "", &OpError{Op: OpGetSubstitution, Err: fmt.Errorf("%w: target calories must be positive, got %d", ErrInvalidRequest, targetCalories)}
	}

	var suggestion string
	err := c.call(ctx, OpGetSubstitution, genai.Text(buildSubstitutionPrompt(food, targetCalories)), nil, func(text string) error {
		suggestion = text
		return nil
	})
	if err != nil {
		return "", err
	}

	return suggestion, nil
}

// ChatWithNutritionist sends the whole prior conversation plus message and
// returns the assistant reply. Nothing is kept between calls.
func (c *Client) ChatWithNutritionist(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", &OpError{Op: OpChat, Err: fmt.Errorf("%w: message is required", ErrInvalidRequest)}
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, genai.NewContentFromText(turn.Text, roleFor(turn.Role)))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	chatConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: nutritionistPersona}}},
	}

	var reply string
	err := c.call(ctx, OpChat, contents, chatConfig, func(text string) error {
		reply = text
		return nil
	})
	if err != nil {
		return "", err
	}

	return reply, nil
}

func roleFor(role models.ChatRole) genai.Role {
	if role == models.RoleUser {
		return genai.RoleUser
	}
	return genai.RoleModel
}

// call runs one bounded request, hands non-empty text to handle and records
// the outcome. Every error it returns is an *OpError.
func (c *Client) call(ctx context.Context, op Op, contents []*genai.Content, generateConfig *genai.GenerateContentConfig, handle func(text string) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	err := c.generate(ctx, contents, generateConfig, handle)
	duration := time.Since(started)

	c.record(ctx, op, duration, err)

	if err != nil {
		c.logger.Warn("AI call failed", "operation", op, "kind", Kind(err), "duration_ms", duration.Milliseconds(), "error", err)
		return &OpError{Op: op, Err: err}
	}

	c.logger.Info("AI call succeeded", "operation", op, "duration_ms", duration.Milliseconds())
	return nil
}

func (c *Client) generate(ctx context.Context, contents []*genai.Content, generateConfig *genai.GenerateContentConfig, handle func(text string) error) error {
	response, err := c.generator.GenerateContent(ctx, c.model, contents, generateConfig)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServiceFailure, err)
	}
	if response == nil {
		return ErrEmptyResponse
	}

	text := response.Text()
	if strings.TrimSpace(text) == "" {
		return ErrEmptyResponse
	}

	return handle(text)
}

func (c *Client) record(ctx context.Context, op Op, duration time.Duration, callErr error) {
	if c.recorder == nil {
		return
	}

	record := models.CallRecord{
		ID:        uuid.NewString(),
		Operation: string(op),
		Model:     c.model,
		Status:    models.CallSucceeded,
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}
	if callErr != nil {
		record.Status = models.CallFailed
		record.ErrorKind = Kind(callErr)
	}

	// The request context may already be done; the record should still land.
	if err := c.recorder.RecordCall(context.WithoutCancel(ctx), record); err != nil {
		c.logger.Warn("recording AI call", "operation", op, "error", err)
	}
}
