package instagram

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/learned-geek/socialpress/internal/domain"
	"github.com/learned-geek/socialpress/pkg/httpclient"
	"github.com/learned-geek/socialpress/pkg/platforms"
)

const (
	platformID = "instagram"

	defaultAuthDialogURL = "https://www.facebook.com/v19.0/dialog/oauth"
	defaultScopes        = "instagram_basic,instagram_content_publish,pages_show_list"
	defaultTimeout       = 15 * time.Second
)

// Config holds the settings needed to run the Instagram adapter.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// GraphBaseURL roots all API calls; overridden in tests.
	GraphBaseURL string

	// AuthDialogURL overrides the login dialog endpoint.
	AuthDialogURL string

	Scopes  string
	Timeout time.Duration

	// Poll bounds the container readiness loop.
	Poll platforms.PollPolicy
}

// Adapter publishes through the asynchronous media container protocol:
// container create, status poll, publish. Supports single images and
// carousels of 2-10 slides.
type Adapter struct {
	cfg    Config
	poll   platforms.PollPolicy
	client *resty.Client
	log    platforms.Logger
	now    func() time.Time
}

// New constructs the Instagram adapter.
func New(cfg Config, log platforms.Logger) *Adapter {
	if cfg.AuthDialogURL == "" {
		cfg.AuthDialogURL = defaultAuthDialogURL
	}
	if cfg.Scopes == "" {
		cfg.Scopes = defaultScopes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Adapter{
		cfg:    cfg,
		poll:   cfg.Poll.Normalized(),
		client: httpclient.NewGraphClient(cfg.GraphBaseURL, cfg.Timeout),
		log:    platforms.EnsureLogger(log),
		now:    time.Now,
	}
}

// ID identifies the platform.
func (a *Adapter) ID() string { return platformID }

// IsConfigured reports whether client id and secret are present.
func (a *Adapter) IsConfigured() bool {
	return strings.TrimSpace(a.cfg.ClientID) != "" && strings.TrimSpace(a.cfg.ClientSecret) != ""
}

// HasValidToken reports whether the credential satisfies its invariant.
func (a *Adapter) HasValidToken(cred domain.Credential) bool {
	return cred.Valid(a.now())
}

// BuildAuthorizationURL constructs the login dialog redirect for the given
// state nonce. Pure URL construction, no side effects.
func (a *Adapter) BuildAuthorizationURL(state string) (string, error) {
	if err := a.requireConfig(); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("client_id", a.cfg.ClientID)
	q.Set("redirect_uri", a.cfg.RedirectURI)
	q.Set("state", state)
	q.Set("scope", a.cfg.Scopes)
	return a.cfg.AuthDialogURL + "?" + q.Encode(), nil
}

// Publish runs the container state machine for one job. Any HTTP failure at
// create, poll, or publish aborts the whole job; no partial carousel is ever
// published and no cleanup is attempted beyond the platform's own garbage
// collection of unused containers.
func (a *Adapter) Publish(ctx context.Context, cred domain.Credential, job domain.PublishJob) domain.PublishResult {
	if err := job.Validate(); err != nil {
		return failure(err)
	}
	if err := a.requireConfig(); err != nil {
		return failure(err)
	}
	if !a.HasValidToken(cred) {
		return failure(platforms.AuthorizationError{Platform: platformID, Reason: "credential is missing or expired"})
	}

	var (
		containerID string
		err         error
	)
	switch job.Mode {
	case domain.ModeCarousel:
		containerID, err = a.createCarousel(ctx, cred, job)
	default:
		containerID, err = a.createImageContainer(ctx, cred, job.Slides[0].ImageURL, job.Caption, false)
	}
	if err != nil {
		return failure(err)
	}

	if err := a.waitForContainer(ctx, cred, containerID); err != nil {
		return failure(err)
	}

	postID, err := a.publishContainer(ctx, cred, containerID)
	if err != nil {
		return failure(err)
	}

	a.log.InfoObj("instagram post published", "instagram_publish", map[string]any{
		"account_id": cred.AccountID,
		"post_id":    postID,
		"mode":       job.Mode,
		"slides":     len(job.Slides),
	})
	return domain.PublishResult{Succeeded: true, PostID: postID}
}

// createCarousel creates one child container per slide, then the aggregate
// container carrying the caption and the child ids. A child failure aborts
// before any parent call is made.
func (a *Adapter) createCarousel(ctx context.Context, cred domain.Credential, job domain.PublishJob) (string, error) {
	children := make([]string, 0, len(job.Slides))
	for i, slide := range job.Slides {
		id, err := a.createImageContainer(ctx, cred, slide.ImageURL, "", true)
		if err != nil {
			a.log.ErrorObj("carousel child container failed", "instagram_carousel", map[string]any{
				"slide":  i + 1,
				"slides": len(job.Slides),
			})
			return "", err
		}
		children = append(children, id)
	}
	return a.createCarouselContainer(ctx, cred, children, job.Caption)
}

func (a *Adapter) requireConfig() error {
	var missing []string
	if strings.TrimSpace(a.cfg.ClientID) == "" {
		missing = append(missing, "client_id")
	}
	if strings.TrimSpace(a.cfg.ClientSecret) == "" {
		missing = append(missing, "client_secret")
	}
	if len(missing) > 0 {
		return platforms.ConfigurationError{Platform: platformID, Missing: missing}
	}
	return nil
}

func failure(err error) domain.PublishResult {
	return domain.PublishResult{Succeeded: false, Err: err}
}
