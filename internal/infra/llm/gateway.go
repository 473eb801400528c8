package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"askme-quiz-service/internal/domain"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama-3.3-70b-versatile"
	DefaultTemperature = 0.2
	DefaultTimeout     = 60 * time.Second
)

// Options configures the gateway. A blank APIKey is not an error until Generate is called.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	// Strict rejects replies that violate ResponseSchema or whose answer is not an option.
	Strict     bool
	HTTPClient *http.Client
}

// Gateway asks an OpenAI-compatible chat completion endpoint for one quiz per call.
// It keeps no state between calls and never retries.
type Gateway struct {
	opts      Options
	model     llms.Model
	initErr   error
	validator *strictValidator
}

func NewGateway(opts Options) *Gateway {
	opts = withDefaults(opts)
	g := &Gateway{opts: opts}

	if opts.Strict {
		validator, err := newStrictValidator()
		if err != nil {
			g.initErr = err
			return g
		}
		g.validator = validator
	}

	if strings.TrimSpace(opts.APIKey) == "" {
		g.initErr = domain.ErrMissingCredential
		return g
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	model, err := openai.New(
		openai.WithToken(opts.APIKey),
		openai.WithBaseURL(opts.BaseURL),
		openai.WithModel(opts.Model),
		openai.WithHTTPClient(client),
	)
	if err != nil {
		g.initErr = fmt.Errorf("init completion client: %w", err)
		return g
	}
	g.model = model
	return g
}

func withDefaults(opts Options) Options {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return opts
}

// SystemPrompt is the instruction sent with every request.
func SystemPrompt() string {
	return fmt.Sprintf(`You are a quiz generator that creates multiple-choice questions.
Generate exactly %d quiz questions based on the user's topic or content.
For each question, provide %d options with only one correct answer, and copy that answer verbatim from the options.
Make sure the questions cover different aspects of the topic and vary in difficulty.
The output must be a single JSON object that follows this schema: %s`,
		domain.QuestionsPerQuiz, domain.OptionsPerQuestion, ResponseSchema)
}

func userPrompt(topic string) string {
	return "Create a quiz from the given content: " + topic
}

// Generate requests one quiz for topic. Every failure is a *domain.GenerationError.
func (g *Gateway) Generate(ctx context.Context, topic string) ([]domain.QuizQuestion, error) {
	if g.initErr != nil {
		return nil, domain.NewGenerationError(domain.GenerationConfig, g.initErr)
	}

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, SystemPrompt()),
		llms.TextParts(schema.ChatMessageTypeHuman, userPrompt(topic)),
	}

	log.Printf("requesting quiz from %s (model=%s, topic length %d)", g.opts.BaseURL, g.opts.Model, len(topic))
	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, messages,
		llms.WithModel(g.opts.Model),
		llms.WithTemperature(g.opts.Temperature),
		llms.WithJSONMode(),
	)
	elapsed := time.Since(start)
	if err != nil {
		kind := classify(ctx, err)
		log.Printf("quiz request failed after %v (%s): %v", elapsed, kind, err)
		return nil, domain.NewGenerationError(kind, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		log.Printf("quiz request returned empty completion after %v", elapsed)
		return nil, domain.NewGenerationError(domain.GenerationParse, errors.New("empty completion"))
	}
	content := resp.Choices[0].Content
	log.Printf("quiz completion received in %v (%d bytes)", elapsed, len(content))

	questions, err := parseQuestions(content)
	if err != nil {
		return nil, domain.NewGenerationError(domain.GenerationParse, err)
	}
	if g.validator != nil {
		if err := g.validator.validate(content, questions); err != nil {
			log.Printf("quiz completion rejected: %v", err)
			return nil, domain.NewGenerationError(domain.GenerationSchema, err)
		}
	}
	return questions, nil
}

func classify(ctx context.Context, err error) domain.GenerationKind {
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.GenerationTransport
	}
	return domain.GenerationUpstream
}
