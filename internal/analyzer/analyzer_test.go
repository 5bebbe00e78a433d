package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeGenerator struct {
	calls   int
	prompts []string
	reply   string
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestAnalyzeCachesByExcerpt(t *testing.T) {
	gen := &fakeGenerator{reply: "Summary: login is broken\n"}
	a := NewWithGenerator(gen, 1000, time.Hour)

	first := a.Analyze(context.Background(), "the login page is down")
	if first.Err != nil {
		t.Fatalf("unexpected error: %v", first.Err)
	}
	if first.Cached {
		t.Error("first call should not be cached")
	}
	if first.Text != "Summary: login is broken" {
		t.Errorf("reply should be trimmed, got %q", first.Text)
	}

	second := a.Analyze(context.Background(), "the login page is down")
	if !second.Cached {
		t.Error("second call with same text should hit the cache")
	}
	if gen.calls != 1 {
		t.Errorf("expected 1 generator call, got %d", gen.calls)
	}

	a.Analyze(context.Background(), "a different ticket entirely")
	if gen.calls != 2 {
		t.Errorf("distinct text should miss the cache, got %d calls", gen.calls)
	}
}

func TestAnalyzeExcerptCap(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	a := NewWithGenerator(gen, 10, time.Hour)

	long := strings.Repeat("x", 50)
	a.Analyze(context.Background(), long)

	if len(gen.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(gen.prompts))
	}
	sent := strings.TrimPrefix(gen.prompts[0], analysisPrompt)
	if sent != strings.Repeat("x", 10) {
		t.Errorf("excerpt not capped at 10 chars: %q", sent)
	}
}

func TestAnalyzeUnboundedWhenCapZero(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	a := NewWithGenerator(gen, 0, time.Hour)

	long := strings.Repeat("y", 2000)
	a.Analyze(context.Background(), long)

	sent := strings.TrimPrefix(gen.prompts[0], analysisPrompt)
	if len(sent) != 2000 {
		t.Errorf("cap 0 should send full text, sent %d chars", len(sent))
	}
}

func TestAnalyzeServiceErrorIsNonFatal(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	a := NewWithGenerator(gen, 1000, time.Hour)

	res := a.Analyze(context.Background(), "some ticket")
	if res.Err == nil {
		t.Fatal("expected error in result")
	}
	if !strings.Contains(res.Text, "Analysis Error") || !strings.Contains(res.Text, "quota exceeded") {
		t.Errorf("error text should be readable, got %q", res.Text)
	}

	// Failures are not cached; the next call retries.
	a.Analyze(context.Background(), "some ticket")
	if gen.calls != 2 {
		t.Errorf("expected failed result to bypass cache, got %d calls", gen.calls)
	}
}
