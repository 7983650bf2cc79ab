package llm

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"talentscout/interview/internal/models"
)

type testProvider struct{}

func (testProvider) GenerateContent(context.Context, string, string) (*GenerationResponse, error) {
	return &GenerationResponse{Content: "ok"}, nil
}
func (testProvider) GetProviderName() string { return "test" }

// scriptedProvider returns the queued results in order.
type scriptedProvider struct {
	results []error
	calls   int
	block   bool
}

func (p *scriptedProvider) GenerateContent(ctx context.Context, prompt, requestID string) (*GenerationResponse, error) {
	p.calls++
	if p.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if len(p.results) == 0 {
		return &GenerationResponse{Content: "done", RequestID: requestID}, nil
	}
	err := p.results[0]
	p.results = p.results[1:]
	if err != nil {
		return nil, err
	}
	return &GenerationResponse{Content: "done", RequestID: requestID}, nil
}

func (p *scriptedProvider) GetProviderName() string { return "scripted" }

func noSleep(t *testing.T) {
	t.Helper()
	original := sleep
	sleep = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { sleep = original })
}

func TestProviderErrorError(t *testing.T) {
	err := &ProviderError{Provider: "gemini", Message: "failed"}
	if err.Error() != "gemini error: failed" {
		t.Fatalf("unexpected error message: %s", err.Error())
	}

	detail := errors.New("detail")
	wrapped := &ProviderError{Provider: "gemini", Message: "failed", Err: detail}
	if got := wrapped.Error(); got != "gemini error: failed (detail)" {
		t.Fatalf("unexpected wrapped error message: %s", got)
	}
	if !errors.Is(wrapped, detail) {
		t.Fatal("expected ProviderError to unwrap its cause")
	}
}

func TestRegisterAndNewProvider(t *testing.T) {
	RegisterProvider("test_provider", func() (Provider, error) {
		return testProvider{}, nil
	})
	defer func() {
		registryMu.Lock()
		delete(providers, "test_provider")
		registryMu.Unlock()
	}()

	provider, err := NewProvider("test_provider")
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	if name := provider.GetProviderName(); name != "test" {
		t.Fatalf("expected provider name test, got %s", name)
	}
	found := false
	for _, name := range RegisteredProviders() {
		found = found || name == "test_provider"
	}
	if !found {
		t.Fatal("expected test_provider to be listed")
	}

	if _, err := NewProvider("missing"); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestIsRateLimitError(t *testing.T) {
	cases := map[string]bool{
		"429 rate limit exceeded": true,
		"RESOURCE_EXHAUSTED":      true,
		"quota exceeded":          true,
		"other error":             false,
	}
	for input, expect := range cases {
		if got := IsRateLimitError(errors.New(input)); got != expect {
			t.Fatalf("IsRateLimitError(%s) = %v, expected %v", input, got, expect)
		}
	}
	if IsRateLimitError(nil) {
		t.Fatal("expected nil error to return false")
	}
	if !IsRateLimitError(&ProviderError{Provider: "x", Code: ErrCodeRateLimit, Message: "slow down"}) {
		t.Fatal("expected rate limit code to be detected")
	}
}

func TestRetrierRetriesTemporaryErrors(t *testing.T) {
	noSleep(t)
	provider := &scriptedProvider{results: []error{
		&ProviderError{Provider: "scripted", Code: ErrCodeServiceDown, Message: "down"},
	}}
	r := NewRetrier(provider, RetryConfig{Timeout: time.Second, Retries: 2}, zap.NewNop())

	resp, err := r.GenerateContent(context.Background(), "prompt", "req-1")
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if provider.calls != 2 || resp.Metadata.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got calls=%d attempts=%d", provider.calls, resp.Metadata.Attempts)
	}
	if r.GetProviderName() != "scripted" {
		t.Fatalf("unexpected provider name %s", r.GetProviderName())
	}
}

func TestRetrierStopsAfterRetriesExhausted(t *testing.T) {
	noSleep(t)
	down := &ProviderError{Provider: "scripted", Code: ErrCodeServiceDown, Message: "down"}
	provider := &scriptedProvider{results: []error{down, down, down, down}}
	r := NewRetrier(provider, RetryConfig{Timeout: time.Second, Retries: 2}, zap.NewNop())

	_, err := r.GenerateContent(context.Background(), "prompt", "req")
	if !errors.Is(err, models.ErrCollaborator) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
	if ErrorCode(err) != ErrCodeServiceDown {
		t.Fatalf("expected provider code to survive wrapping, got %q", ErrorCode(err))
	}
	if provider.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", provider.calls)
	}
}

func TestRetrierDoesNotRetryInvalidKey(t *testing.T) {
	noSleep(t)
	provider := &scriptedProvider{results: []error{
		&ProviderError{Provider: "scripted", Code: ErrCodeAPIKey, Message: "bad key"},
	}}
	r := NewRetrier(provider, RetryConfig{Retries: 3}, zap.NewNop())

	if _, err := r.GenerateContent(context.Background(), "prompt", "req"); err == nil {
		t.Fatal("expected error")
	}
	if provider.calls != 1 {
		t.Fatalf("expected single call, got %d", provider.calls)
	}
}

func TestRetrierTimeout(t *testing.T) {
	noSleep(t)
	provider := &scriptedProvider{block: true}
	r := NewRetrier(provider, RetryConfig{Timeout: 10 * time.Millisecond, Retries: 1}, zap.NewNop())

	_, err := r.GenerateContent(context.Background(), "prompt", "req")
	if !errors.Is(err, models.ErrCollaboratorTimeout) {
		t.Fatalf("expected collaborator timeout, got %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected timed out attempts to be retried, got %d calls", provider.calls)
	}
}

func TestParseObject(t *testing.T) {
	data, ok := ParseObject("```json\n{\"reply\": \"hi\", \"score\": \"7.5\", \"advance\": \"yes\"}\n```")
	if !ok {
		t.Fatal("expected fenced JSON to parse")
	}
	if CoerceString(data["reply"]) != "hi" || CoerceFloat(data["score"]) != 7.5 || !CoerceBool(data["advance"]) {
		t.Fatalf("unexpected coercion results: %+v", data)
	}

	data, ok = ParseObject("Sure! Here it is: {\"reply\": \"ok\"} hope that helps")
	if !ok || CoerceString(data["reply"]) != "ok" {
		t.Fatal("expected embedded JSON object to parse")
	}

	if _, ok := ParseObject("just some prose"); ok {
		t.Fatal("expected prose to be rejected")
	}
	if !math.IsNaN(CoerceFloat("n/a")) || !math.IsNaN(CoerceFloat(nil)) {
		t.Fatal("expected NaN for non-numeric values")
	}
	if CoerceString(nil) != "" || CoerceString(3.0) != "3" {
		t.Fatal("unexpected string coercion")
	}
}
