package facebook

import (
	"context"
	"fmt"
	"time"

	"github.com/learned-geek/socialpress/internal/domain"
	"github.com/learned-geek/socialpress/pkg/platforms"
)

// tokenResponse is the token endpoint response shape, shared by the code
// exchange and the long-lived upgrade.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// accountsResponse is the manageable pages listing.
type accountsResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

// ExchangeCode turns an authorization code into a publish-ready credential:
// code exchange, long-lived upgrade, then page resolution. The caller
// persists the returned credential; nothing is stored here.
func (a *Adapter) ExchangeCode(ctx context.Context, code string) (domain.Credential, error) {
	if err := a.requireConfig(); err != nil {
		return domain.Credential{}, err
	}

	short, err := a.exchangeCode(ctx, code)
	if err != nil {
		return domain.Credential{}, err
	}

	long, expiresAt, err := a.upgradeToken(ctx, short)
	if err != nil {
		return domain.Credential{}, err
	}

	pageID, pageToken, err := a.resolvePage(ctx, long)
	if err != nil {
		return domain.Credential{}, err
	}

	a.log.InfoObj("facebook credential assembled", "facebook_auth", map[string]any{
		"page_id":    pageID,
		"expires_at": expiresAt,
	})

	return domain.Credential{
		Platform:    platformID,
		AccessToken: pageToken,
		LongLived:   true,
		ExpiresAt:   expiresAt,
		AccountID:   pageID,
	}, nil
}

// exchangeCode swaps the callback code for a short-lived user token.
func (a *Adapter) exchangeCode(ctx context.Context, code string) (string, error) {
	var out tokenResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client_id":     a.cfg.ClientID,
			"client_secret": a.cfg.ClientSecret,
			"redirect_uri":  a.cfg.RedirectURI,
			"code":          code,
		}).
		SetResult(&out).
		Get("/oauth/access_token")
	if err != nil {
		return "", fmt.Errorf("token exchange request: %w", err)
	}
	if resp.IsError() || out.AccessToken == "" {
		return "", platforms.ExchangeError{
			Platform: platformID,
			Status:   resp.StatusCode(),
			Body:     platforms.ErrorMessage(resp.Body()),
		}
	}
	return out.AccessToken, nil
}

// upgradeToken swaps a short-lived user token for a long-lived one. Absolute
// expiry is computed as now + the returned expires_in seconds.
func (a *Adapter) upgradeToken(ctx context.Context, shortLived string) (string, time.Time, error) {
	var out tokenResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type":        "fb_exchange_token",
			"client_id":         a.cfg.ClientID,
			"client_secret":     a.cfg.ClientSecret,
			"fb_exchange_token": shortLived,
		}).
		SetResult(&out).
		Get("/oauth/access_token")
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token upgrade request: %w", err)
	}
	if resp.IsError() || out.AccessToken == "" {
		return "", time.Time{}, platforms.UpgradeError{
			Platform: platformID,
			Status:   resp.StatusCode(),
			Body:     platforms.ErrorMessage(resp.Body()),
		}
	}

	var expiresAt time.Time
	if out.ExpiresIn > 0 {
		expiresAt = a.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return out.AccessToken, expiresAt, nil
}

// resolvePage lists pages manageable by the authenticated user and picks the
// first as the publish target, capturing a diagnostic trail on the way.
func (a *Adapter) resolvePage(ctx context.Context, userToken string) (string, string, error) {
	var trail platforms.Trail

	var out accountsResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", userToken).
		SetResult(&out).
		Get("/me/accounts")
	if err != nil {
		return "", "", fmt.Errorf("list manageable pages: %w", err)
	}
	trail = trail.Add("GET /me/accounts", resp.StatusCode(), fmt.Sprintf("%d pages", len(out.Data)))

	if resp.IsError() {
		return "", "", platforms.ResolutionError{
			Platform: platformID,
			Reason:   platforms.ErrorMessage(resp.Body()),
			Trail:    trail,
		}
	}
	if len(out.Data) == 0 {
		return "", "", platforms.ResolutionError{
			Platform: platformID,
			Reason:   "no manageable pages for the authenticated user",
			Trail:    trail,
		}
	}

	page := out.Data[0]
	if page.AccessToken == "" {
		return "", "", platforms.ResolutionError{
			Platform: platformID,
			Reason:   fmt.Sprintf("page %s returned no page access token", page.ID),
			Trail:    trail,
		}
	}
	return page.ID, page.AccessToken, nil
}
