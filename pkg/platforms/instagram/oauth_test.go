package instagram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/learned-geek/socialpress/pkg/platforms"
)

func TestExchangeCodeFullChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/oauth/access_token" && r.URL.Query().Get("grant_type") == "":
			if got := r.URL.Query().Get("code"); got != "auth-code" {
				t.Fatalf("code = %q", got)
			}
			fmt.Fprint(w, `{"access_token":"short-token","expires_in":3600}`)
		case r.URL.Path == "/oauth/access_token" && r.URL.Query().Get("grant_type") == "fb_exchange_token":
			if got := r.URL.Query().Get("fb_exchange_token"); got != "short-token" {
				t.Fatalf("fb_exchange_token = %q", got)
			}
			fmt.Fprint(w, `{"access_token":"long-token","expires_in":5184000}`)
		case r.URL.Path == "/me/accounts":
			fmt.Fprint(w, `{"data":[{"id":"page-1","name":"Test Page"}]}`)
		case r.URL.Path == "/page-1":
			if got := r.URL.Query().Get("access_token"); got != "long-token" {
				t.Fatalf("resolution must use the long-lived token, got %q", got)
			}
			fmt.Fprint(w, `{"instagram_business_account":{"id":"ig-42"}}`)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	adapter := testAdapter(srv.URL, 3)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	adapter.now = func() time.Time { return fixed }

	cred, err := adapter.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if cred.AccessToken != "long-token" {
		t.Fatalf("access token = %q", cred.AccessToken)
	}
	if cred.AccountID != "ig-42" {
		t.Fatalf("account id = %q", cred.AccountID)
	}
	if !cred.LongLived {
		t.Fatalf("credential must be marked long-lived")
	}
	if want := fixed.Add(5184000 * time.Second); !cred.ExpiresAt.Equal(want) {
		t.Fatalf("expires at %v, want %v", cred.ExpiresAt, want)
	}
}

func TestExchangeCodeRejectedCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"invalid authorization code"}}`)
	}))
	defer srv.Close()

	_, err := testAdapter(srv.URL, 3).ExchangeCode(context.Background(), "stale-code")
	var exErr platforms.ExchangeError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected ExchangeError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "invalid authorization code") {
		t.Fatalf("error should carry the platform message: %v", err)
	}
}

func TestResolveAccountNoPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/accounts" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	_, trail, err := testAdapter(srv.URL, 3).resolveAccount(context.Background(), "tok")
	var resErr platforms.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %T: %v", err, err)
	}
	if len(trail) != 1 {
		t.Fatalf("expected 1 trail step, got %d", len(trail))
	}
	if lines := trail.Lines(); !strings.Contains(lines[0], "0 pages") {
		t.Fatalf("trail should record the empty listing: %v", lines)
	}
}

func TestResolveAccountUnlinkedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/me/accounts":
			fmt.Fprint(w, `{"data":[{"id":"page-1","name":"Test Page"}]}`)
		case "/page-1":
			fmt.Fprint(w, `{"id":"page-1"}`)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	_, _, err := testAdapter(srv.URL, 3).resolveAccount(context.Background(), "tok")
	var resErr platforms.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %T: %v", err, err)
	}
	if !strings.Contains(resErr.Reason, "page-1") {
		t.Fatalf("reason should name the page: %q", resErr.Reason)
	}
	if len(resErr.Trail) != 2 {
		t.Fatalf("expected 2 trail steps, got %d", len(resErr.Trail))
	}
}

func TestBuildAuthorizationURL(t *testing.T) {
	adapter := New(Config{
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		RedirectURI:  "https://example.com/callback",
	}, nil)

	got, err := adapter.BuildAuthorizationURL("nonce-1")
	if err != nil {
		t.Fatalf("build url: %v", err)
	}
	for _, want := range []string{
		defaultAuthDialogURL + "?",
		"client_id=client-1",
		"state=nonce-1",
		"redirect_uri=https%3A%2F%2Fexample.com%2Fcallback",
		"instagram_content_publish",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("url %q missing %q", got, want)
		}
	}

	again, _ := adapter.BuildAuthorizationURL("nonce-1")
	if got != again {
		t.Fatalf("url construction must be deterministic")
	}
}
