package facebook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/learned-geek/socialpress/internal/domain"
	"github.com/learned-geek/socialpress/pkg/platforms"
)

func testAdapter(srvURL string) *Adapter {
	return New(Config{
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		RedirectURI:  "https://example.com/callback",
		GraphBaseURL: srvURL,
	}, nil)
}

func testCredential() domain.Credential {
	return domain.Credential{
		Platform:    platformID,
		AccessToken: "page-token",
		AccountID:   "page-1",
	}
}

func TestPublishPagePhoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/page-1/photos" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("url"); got != "https://cdn.example.com/a.png" {
			t.Fatalf("url = %q", got)
		}
		if got := r.PostForm.Get("caption"); got != "page post" {
			t.Fatalf("caption = %q", got)
		}
		if got := r.PostForm.Get("access_token"); got != "page-token" {
			t.Fatalf("access_token = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"photo-1","post_id":"page-1_99"}`)
	}))
	defer srv.Close()

	res := testAdapter(srv.URL).Publish(context.Background(), testCredential(), domain.PublishJob{
		Caption: "page post",
		Mode:    domain.ModeSingle,
		Slides:  []domain.Slide{{Kind: domain.SlideImage, ImageURL: "https://cdn.example.com/a.png"}},
	})
	if !res.Succeeded || res.Err != nil {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.PostID != "page-1_99" {
		t.Fatalf("post_id must win over id, got %q", res.PostID)
	}
}

func TestPublishFallsBackToPhotoID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"photo-1"}`)
	}))
	defer srv.Close()

	res := testAdapter(srv.URL).Publish(context.Background(), testCredential(), domain.PublishJob{
		Caption: "page post",
		Mode:    domain.ModeSingle,
		Slides:  []domain.Slide{{Kind: domain.SlideImage, ImageURL: "https://cdn.example.com/a.png"}},
	})
	if !res.Succeeded {
		t.Fatalf("expected success, got %v", res.Err)
	}
	if res.PostID != "photo-1" {
		t.Fatalf("post id = %q", res.PostID)
	}
}

func TestPublishSurfacesPlatformError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"message":"insufficient permission"}}`)
	}))
	defer srv.Close()

	res := testAdapter(srv.URL).Publish(context.Background(), testCredential(), domain.PublishJob{
		Caption: "page post",
		Mode:    domain.ModeSingle,
		Slides:  []domain.Slide{{Kind: domain.SlideImage, ImageURL: "https://cdn.example.com/a.png"}},
	})
	if res.Succeeded {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(res.Err.Error(), "insufficient permission") {
		t.Fatalf("error should carry the platform message: %v", res.Err)
	}
}

func TestPublishRejectsCarouselWithoutNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		t.Fatalf("no network call expected, got %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	res := testAdapter(srv.URL).Publish(context.Background(), testCredential(), domain.PublishJob{
		Caption: "two slides",
		Mode:    domain.ModeCarousel,
		Slides: []domain.Slide{
			{Kind: domain.SlideImage, ImageURL: "https://cdn.example.com/1.png"},
			{Kind: domain.SlideImage, ImageURL: "https://cdn.example.com/2.png"},
		},
	})
	if res.Succeeded || res.Err == nil {
		t.Fatalf("expected carousel rejection")
	}
}

func TestHasValidTokenExpiry(t *testing.T) {
	adapter := testAdapter("http://unused")
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	adapter.now = func() time.Time { return fixed }

	cred := testCredential()
	if !adapter.HasValidToken(cred) {
		t.Fatalf("credential without expiry must be valid")
	}

	cred.ExpiresAt = fixed.Add(time.Hour)
	if !adapter.HasValidToken(cred) {
		t.Fatalf("future expiry must be valid")
	}

	cred.ExpiresAt = fixed.Add(-time.Hour)
	if adapter.HasValidToken(cred) {
		t.Fatalf("past expiry must be invalid")
	}

	if adapter.HasValidToken(domain.Credential{Platform: platformID}) {
		t.Fatalf("missing token must be invalid")
	}
}

func TestExchangeCodeResolvesPageToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/oauth/access_token" && r.URL.Query().Get("grant_type") == "":
			fmt.Fprint(w, `{"access_token":"short-token","expires_in":3600}`)
		case r.URL.Path == "/oauth/access_token" && r.URL.Query().Get("grant_type") == "fb_exchange_token":
			fmt.Fprint(w, `{"access_token":"long-token","expires_in":5184000}`)
		case r.URL.Path == "/me/accounts":
			fmt.Fprint(w, `{"data":[{"id":"page-1","name":"Test Page","access_token":"page-token"}]}`)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	adapter := testAdapter(srv.URL)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	adapter.now = func() time.Time { return fixed }

	cred, err := adapter.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if cred.AccessToken != "page-token" {
		t.Fatalf("credential must hold the page token, got %q", cred.AccessToken)
	}
	if cred.AccountID != "page-1" {
		t.Fatalf("account id = %q", cred.AccountID)
	}
	if want := fixed.Add(5184000 * time.Second); !cred.ExpiresAt.Equal(want) {
		t.Fatalf("expires at %v, want %v", cred.ExpiresAt, want)
	}
}

func TestExchangeCodeMissingPageToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/oauth/access_token":
			fmt.Fprint(w, `{"access_token":"tok","expires_in":3600}`)
		case "/me/accounts":
			fmt.Fprint(w, `{"data":[{"id":"page-1","name":"Test Page"}]}`)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	_, err := testAdapter(srv.URL).ExchangeCode(context.Background(), "auth-code")
	var resErr platforms.ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %T: %v", err, err)
	}
	if len(resErr.Trail) == 0 {
		t.Fatalf("resolution failures must carry the diagnostic trail")
	}
}

func TestExchangeCodeUpgradeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("grant_type") == "fb_exchange_token" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"message":"upgrade denied"}}`)
			return
		}
		fmt.Fprint(w, `{"access_token":"short-token","expires_in":3600}`)
	}))
	defer srv.Close()

	_, err := testAdapter(srv.URL).ExchangeCode(context.Background(), "auth-code")
	var upErr platforms.UpgradeError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpgradeError, got %T: %v", err, err)
	}
}
