package domain

import (
	"fmt"
	"time"
)

// Domain contains core models shared across the pipeline.

// Slide kinds supported by publish jobs.
const (
	SlideImage   = "image"
	SlideCard    = "card"
	SlideArticle = "article"
)

// Publish modes.
const (
	ModeSingle   = "single"
	ModeCarousel = "carousel"
)

// Carousel bounds enforced before any network call.
const (
	CarouselMinSlides = 2
	CarouselMaxSlides = 10
)

// Credential is the externally persisted authorization state for one platform.
// The pipeline only reads it during publish calls; it is written exclusively
// on the OAuth callback path and handed back to the caller to store.
type Credential struct {
	Platform    string    `json:"platform"`
	AccessToken string    `json:"access_token"`
	LongLived   bool      `json:"long_lived"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
	AccountID   string    `json:"account_id,omitempty"`
}

// Valid reports whether the credential can be used to publish: access token
// and resolved account id present, and not past expiry when one is set.
func (c Credential) Valid(now time.Time) bool {
	if c.AccessToken == "" || c.AccountID == "" {
		return false
	}
	if c.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(c.ExpiresAt)
}

// Slide describes one piece of content in a publish job. Exactly one of the
// kind-specific fields is meaningful for a given Kind.
type Slide struct {
	Kind string `json:"kind"`

	// ImageURL is the publicly fetchable URL for SlideImage slides.
	ImageURL string `json:"image_url,omitempty"`

	// Card holds the render request forwarded to the external card renderer
	// for SlideCard slides.
	Card *CardRequest `json:"card,omitempty"`

	// ArticleURL points at a blog post page for SlideArticle slides; the
	// slide image is extracted from the page's Open Graph tags.
	ArticleURL string `json:"article_url,omitempty"`
}

// CardRequest is the payload sent to the external card-image renderer.
type CardRequest struct {
	Template string `json:"template"`
	Title    string `json:"title,omitempty"`
	Body     string `json:"body,omitempty"`
}

// PublishJob is one unit of work handed to a platform adapter.
type PublishJob struct {
	Caption string
	Mode    string
	Slides  []Slide
}

// Validate checks job shape before any network activity.
func (j PublishJob) Validate() error {
	switch j.Mode {
	case ModeSingle:
		if len(j.Slides) != 1 {
			return fmt.Errorf("single mode requires exactly 1 slide, got %d", len(j.Slides))
		}
	case ModeCarousel:
		if len(j.Slides) < CarouselMinSlides || len(j.Slides) > CarouselMaxSlides {
			return fmt.Errorf("carousel requires %d-%d slides, got %d",
				CarouselMinSlides, CarouselMaxSlides, len(j.Slides))
		}
	default:
		return fmt.Errorf("unknown publish mode %q", j.Mode)
	}
	return nil
}

// PublishResult is the terminal outcome of one publish job. Errors cross the
// component boundary inside this value, never as panics.
type PublishResult struct {
	Succeeded bool
	PostID    string
	Err       error
}

// Container statuses reported by the media processing protocol.
const (
	ContainerCreated    = "CREATED"
	ContainerProcessing = "PROCESSING"
	ContainerReady      = "READY"
	ContainerFailed     = "FAILED"
)

// MediaContainer is a transient server-side staging object for one piece of
// content. It lives only for the duration of a publish job.
type MediaContainer struct {
	ID       string
	Status   string
	ParentID string
}
