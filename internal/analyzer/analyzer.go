// Package analyzer sends ticket text to Gemini for free-form analysis.
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	gocache "github.com/patrickmn/go-cache"
	"google.golang.org/api/option"

	"github.com/Sobarinetech/elscalyticsone/internal/config"
)

// analysisPrompt is the fixed instruction sent ahead of the ticket excerpt.
// The model's reply is treated as opaque text; no structure is enforced.
const analysisPrompt = `Analyze this ticket and extract:
- Summary
- Sentiment (Positive, Neutral, Negative)
- Root Cause
- Actionable Steps
- Severity Level (High, Medium, Low)
- Responsible Person (if identifiable)

Text:

`

// Generator produces text for a prompt. Satisfied by the Gemini client and
// by test fakes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is the outcome of one analysis. Err is non-nil when the service
// call failed; Text then carries an error-annotated placeholder so the
// pipeline can continue.
type Result struct {
	Text   string
	Cached bool
	Err    error
}

// Analyzer wraps a Generator with an excerpt cap and a TTL cache keyed by
// excerpt text, so repeated runs against the same ticket within the window
// do not re-bill.
type Analyzer struct {
	gen        Generator
	cache      *gocache.Cache
	excerptCap int
	closer     func() error
}

// New builds an Analyzer backed by the Gemini API.
func New(ctx context.Context, cfg config.AIConfig) (*Analyzer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}

	a := NewWithGenerator(&geminiGenerator{model: client.GenerativeModel(model)}, cfg.ExcerptCap, cfg.CacheTTL)
	a.closer = client.Close
	return a, nil
}

// NewWithGenerator builds an Analyzer around any Generator. Used by tests.
func NewWithGenerator(gen Generator, excerptCap int, cacheTTL time.Duration) *Analyzer {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &Analyzer{
		gen:        gen,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
		excerptCap: excerptCap,
	}
}

// Analyze runs the fixed prompt against a bounded excerpt of description.
// Service failures are non-fatal: the Result carries the error and a
// readable placeholder text.
func (a *Analyzer) Analyze(ctx context.Context, description string) Result {
	excerpt := a.excerpt(description)

	if v, ok := a.cache.Get(excerpt); ok {
		return Result{Text: v.(string), Cached: true}
	}

	text, err := a.gen.Generate(ctx, analysisPrompt+excerpt)
	if err != nil {
		return Result{Text: fmt.Sprintf("Analysis Error: %v", err), Err: err}
	}

	text = strings.TrimSpace(text)
	a.cache.Set(excerpt, text, gocache.DefaultExpiration)
	return Result{Text: text}
}

// excerpt truncates to the configured cap, counting characters the way the
// ticket text reads (runes, not bytes).
func (a *Analyzer) excerpt(description string) string {
	if a.excerptCap <= 0 {
		return description
	}
	runes := []rune(description)
	if len(runes) <= a.excerptCap {
		return description
	}
	return string(runes[:a.excerptCap])
}

// Close releases the underlying API client, if any.
func (a *Analyzer) Close() error {
	if a.closer != nil {
		return a.closer()
	}
	return nil
}

// geminiGenerator adapts a genai model to the Generator interface.
type geminiGenerator struct {
	model *genai.GenerativeModel
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("model returned no text")
	}
	return sb.String(), nil
}
