package instagram

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

// ExchangeCode turns an authorization code into a publish-ready credential:
// code exchange, long-lived upgrade, then the account resolution chain down
// to the business account id. The caller persists the returned credential.
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

	accountID, trail, err := a.resolveAccount(ctx, long)
	if err != nil {
		return domain.Credential{}, err
	}

	a.log.InfoObj("instagram credential assembled", "instagram_auth", map[string]any{
		"account_id": accountID,
		"expires_at": expiresAt,
		"trail":      trail.Lines(),
	})

	return domain.Credential{
		Platform:    platformID,
		AccessToken: long,
		LongLived:   true,
		ExpiresAt:   expiresAt,
		AccountID:   accountID,
	}, nil
}

// exchangeCode swaps the callback code for a short-lived token.
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

// upgradeToken swaps a short-lived token for a long-lived one. Absolute
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
