package renderer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/learned-geek/socialpress/internal/domain"
)

func TestMaterializeImagePassthrough(t *testing.T) {
	svc := NewService("", time.Second, nil)

	url, err := svc.Materialize(context.Background(), domain.Slide{
		Kind:     domain.SlideImage,
		ImageURL: "https://cdn.example.com/a.png",
	})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if url != "https://cdn.example.com/a.png" {
		t.Fatalf("image slides must pass through unchanged, got %q", url)
	}

	if _, err := svc.Materialize(context.Background(), domain.Slide{Kind: domain.SlideImage}); err == nil {
		t.Fatalf("empty image url must fail")
	}
}

func TestMaterializeCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/render" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
			t.Fatalf("content type = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"url":"https://cdn.example.com/rendered.png"}`)
	}))
	defer srv.Close()

	svc := NewService(srv.URL, time.Second, nil)
	url, err := svc.Materialize(context.Background(), domain.Slide{
		Kind: domain.SlideCard,
		Card: &domain.CardRequest{Title: "headline", Body: "body text"},
	})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if url != "https://cdn.example.com/rendered.png" {
		t.Fatalf("url = %q", url)
	}
}

func TestMaterializeCardRendererError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "template not found")
	}))
	defer srv.Close()

	svc := NewService(srv.URL, time.Second, nil)
	_, err := svc.Materialize(context.Background(), domain.Slide{
		Kind: domain.SlideCard,
		Card: &domain.CardRequest{Title: "headline"},
	})
	if err == nil || !strings.Contains(err.Error(), "template not found") {
		t.Fatalf("expected renderer error body, got %v", err)
	}
}

func TestMaterializeCardWithoutRendererURL(t *testing.T) {
	svc := NewService("", time.Second, nil)
	_, err := svc.Materialize(context.Background(), domain.Slide{
		Kind: domain.SlideCard,
		Card: &domain.CardRequest{Title: "headline"},
	})
	if err == nil {
		t.Fatalf("card slides without a renderer url must fail")
	}
}

func TestMaterializeArticleExtractsOpenGraphImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head>
			<meta property="og:title" content="An Article"/>
			<meta property="og:image" content="https://cdn.example.com/og.png"/>
		</head><body>text</body></html>`)
	}))
	defer srv.Close()

	svc := NewService("", time.Second, nil)
	url, err := svc.Materialize(context.Background(), domain.Slide{
		Kind:       domain.SlideArticle,
		ArticleURL: srv.URL + "/article",
	})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if url != "https://cdn.example.com/og.png" {
		t.Fatalf("url = %q", url)
	}
}

func TestMaterializeArticleWithoutImageTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><title>plain</title></head><body>text</body></html>`)
	}))
	defer srv.Close()

	svc := NewService("", time.Second, nil)
	_, err := svc.Materialize(context.Background(), domain.Slide{
		Kind:       domain.SlideArticle,
		ArticleURL: srv.URL + "/article",
	})
	if err == nil || !strings.Contains(err.Error(), "og:image") {
		t.Fatalf("expected og:image error, got %v", err)
	}
}

func TestMaterializeUnknownKind(t *testing.T) {
	svc := NewService("", time.Second, nil)
	if _, err := svc.Materialize(context.Background(), domain.Slide{Kind: "video"}); err == nil {
		t.Fatalf("unknown slide kinds must fail")
	}
}
