package platforms

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/learned-geek/socialpress/internal/domain"
)

type stubAdapter struct {
	id string
}

func (s stubAdapter) ID() string                                  { return s.id }
func (s stubAdapter) IsConfigured() bool                          { return true }
func (s stubAdapter) HasValidToken(domain.Credential) bool        { return true }
func (s stubAdapter) BuildAuthorizationURL(string) (string, error) { return "", nil }
func (s stubAdapter) ExchangeCode(context.Context, string) (domain.Credential, error) {
	return domain.Credential{}, nil
}
func (s stubAdapter) Publish(context.Context, domain.Credential, domain.PublishJob) domain.PublishResult {
	return domain.PublishResult{}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry(stubAdapter{id: "Instagram"}, stubAdapter{id: "facebook"})

	for _, id := range []string{"instagram", "Instagram", " INSTAGRAM "} {
		a, err := reg.AdapterFor(id)
		if err != nil {
			t.Fatalf("lookup %q: %v", id, err)
		}
		if a.ID() != "Instagram" {
			t.Fatalf("lookup %q returned %q", id, a.ID())
		}
	}

	if _, err := reg.AdapterFor("mastodon"); err == nil {
		t.Fatalf("expected error for unknown platform")
	}
	if _, err := reg.AdapterFor(""); err == nil {
		t.Fatalf("expected error for empty platform id")
	}
	if got := len(reg.All()); got != 2 {
		t.Fatalf("expected 2 registered adapters, got %d", got)
	}
}

func TestPollPolicyNormalized(t *testing.T) {
	def := PollPolicy{}.Normalized()
	if def.Attempts != 30 || def.Delay != 2*time.Second {
		t.Fatalf("unexpected defaults: %+v", def)
	}

	custom := PollPolicy{Attempts: 5, Delay: time.Millisecond}.Normalized()
	if custom.Attempts != 5 || custom.Delay != time.Millisecond {
		t.Fatalf("explicit values must survive normalization: %+v", custom)
	}
}

func TestTrailLines(t *testing.T) {
	var trail Trail
	trail = trail.Add("GET /me/accounts", 200, "1 pages")
	trail = trail.Add("GET /page-1", 200, "")

	lines := trail.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "1. GET /me/accounts -> 200 (1 pages)" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if strings.Contains(lines[1], "(") {
		t.Fatalf("empty notes must not render parentheses: %q", lines[1])
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	body := []byte(`{"error":{"message":"token expired","type":"OAuthException","code":190}}`)
	if got := ErrorMessage(body); got != "token expired" {
		t.Fatalf("ErrorMessage = %q", got)
	}

	raw := []byte(`<html>bad gateway</html>`)
	if got := ErrorMessage(raw); got != "<html>bad gateway</html>" {
		t.Fatalf("non-JSON bodies must pass through, got %q", got)
	}

	long := []byte(strings.Repeat("x", 2048))
	if got := BodySnippet(long); len(got) > 515 {
		t.Fatalf("snippet not capped: %d bytes", len(got))
	}
}
