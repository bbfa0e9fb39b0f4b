package renderer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/learned-geek/socialpress/internal/domain"
	"github.com/learned-geek/socialpress/pkg/httpclient"
)

// Renderer materializes a slide descriptor into a publicly fetchable image
// URL. Both platforms fetch media by URL, never by direct byte upload, so
// this is the only media contract the pipeline needs.
type Renderer interface {
	Materialize(ctx context.Context, slide domain.Slide) (string, error)
}

const defaultTimeout = 15 * time.Second

// Service talks to the external card-image renderer and extracts Open Graph
// images from article pages.
type Service struct {
	rendererURL string
	client      *resty.Client
	fetcher     httpclient.Client
}

// NewService builds a renderer client. fetcher may be nil, in which case a
// default HTTP client is used for article page fetches.
func NewService(rendererURL string, timeout time.Duration, fetcher httpclient.Client) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if fetcher == nil {
		fetcher = httpclient.NewRestyClient(timeout)
	}
	return &Service{
		rendererURL: strings.TrimRight(rendererURL, "/"),
		client:      httpclient.NewRestyHTTPClient(timeout),
		fetcher:     fetcher,
	}
}

// renderResponse is the card renderer's reply.
type renderResponse struct {
	URL string `json:"url"`
}

// Materialize resolves a slide to its public image URL.
func (s *Service) Materialize(ctx context.Context, slide domain.Slide) (string, error) {
	switch slide.Kind {
	case domain.SlideImage:
		if strings.TrimSpace(slide.ImageURL) == "" {
			return "", fmt.Errorf("image slide has no url")
		}
		return slide.ImageURL, nil
	case domain.SlideCard:
		return s.renderCard(ctx, slide.Card)
	case domain.SlideArticle:
		return s.extractArticleImage(ctx, slide.ArticleURL)
	default:
		return "", fmt.Errorf("unknown slide kind %q", slide.Kind)
	}
}

// renderCard forwards the render request to the external renderer service,
// which answers with a publicly fetchable URL for the produced image.
func (s *Service) renderCard(ctx context.Context, card *domain.CardRequest) (string, error) {
	if card == nil {
		return "", fmt.Errorf("card slide has no render request")
	}
	if s.rendererURL == "" {
		return "", fmt.Errorf("renderer url is not configured")
	}

	var out renderResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(card).
		SetResult(&out).
		Post(s.rendererURL + "/render")
	if err != nil {
		return "", fmt.Errorf("render card: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("render card: status %d: %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	if out.URL == "" {
		return "", fmt.Errorf("renderer returned no url")
	}
	return out.URL, nil
}

// extractArticleImage fetches an article page and pulls the og:image URL
// from its Open Graph tags.
func (s *Service) extractArticleImage(ctx context.Context, articleURL string) (string, error) {
	if strings.TrimSpace(articleURL) == "" {
		return "", fmt.Errorf("article slide has no url")
	}

	resp, err := s.fetcher.Get(ctx, articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch article page: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", fmt.Errorf("fetch article page: status %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return "", fmt.Errorf("parse article page: %w", err)
	}

	image, ok := doc.Find(`meta[property="og:image"]`).Attr("content")
	if !ok || strings.TrimSpace(image) == "" {
		return "", fmt.Errorf("article page %s has no og:image tag", articleURL)
	}
	return image, nil
}
