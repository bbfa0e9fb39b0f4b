package facebook

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/learned-geek/socialpress/internal/domain"
	"github.com/learned-geek/socialpress/pkg/httpclient"
	"github.com/learned-geek/socialpress/pkg/platforms"
)

const (
	platformID = "facebook"

	defaultAuthDialogURL = "https://www.facebook.com/v19.0/dialog/oauth"
	defaultScopes        = "pages_manage_posts,pages_read_engagement"
	defaultTimeout       = 15 * time.Second
)

// Config holds the settings needed to run the Facebook adapter.
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
}

// Adapter publishes page feed photos in a single synchronous call. No
// container protocol, no status polling.
type Adapter struct {
	cfg    Config
	client *resty.Client
	log    platforms.Logger
	now    func() time.Time
}

// New constructs the Facebook adapter.
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

// photoResponse is the page feed photo creation response.
type photoResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

// Publish posts a single photo to the resolved page feed. Carousels are not
// part of the page photo surface; they are rejected before any network call.
func (a *Adapter) Publish(ctx context.Context, cred domain.Credential, job domain.PublishJob) domain.PublishResult {
	if err := job.Validate(); err != nil {
		return failure(err)
	}
	if job.Mode == domain.ModeCarousel {
		return failure(fmt.Errorf("facebook page feed does not support carousel posts"))
	}
	if err := a.requireConfig(); err != nil {
		return failure(err)
	}
	if !a.HasValidToken(cred) {
		return failure(platforms.AuthorizationError{Platform: platformID, Reason: "credential is missing or expired"})
	}

	slide := job.Slides[0]
	var out photoResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"url":          slide.ImageURL,
			"caption":      job.Caption,
			"access_token": cred.AccessToken,
		}).
		SetResult(&out).
		Post("/" + cred.AccountID + "/photos")
	if err != nil {
		return failure(fmt.Errorf("post page photo: %w", err))
	}
	if resp.IsError() {
		return failure(platforms.ContainerError{
			Platform: platformID,
			Op:       "page photo post",
			Status:   resp.StatusCode(),
			Body:     platforms.ErrorMessage(resp.Body()),
		})
	}

	postID := out.PostID
	if postID == "" {
		postID = out.ID
	}
	a.log.InfoObj("facebook photo published", "facebook_publish", map[string]any{
		"page_id": cred.AccountID,
		"post_id": postID,
	})
	return domain.PublishResult{Succeeded: true, PostID: postID}
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
