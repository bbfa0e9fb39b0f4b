package instagram

import (
	"context"
	"fmt"

	"github.com/learned-geek/socialpress/pkg/platforms"
)

// accountsResponse is the manageable pages listing.
type accountsResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

// linkedAccountResponse is the page -> business account lookup.
type linkedAccountResponse struct {
	InstagramBusinessAccount *struct {
		ID string `json:"id"`
	} `json:"instagram_business_account"`
}

// resolveAccount walks the lookup chain from the authenticated user to the
// business account id authorized to publish: list manageable pages, then
// fetch the linked business account of the first page. Every step's request
// summary and response status is appended to the trail, which is returned
// with failures so the operator can self-diagnose platform-side
// misconfiguration (the usual root cause: the account is not linked to the
// page).
func (a *Adapter) resolveAccount(ctx context.Context, userToken string) (string, platforms.Trail, error) {
	var trail platforms.Trail

	var pages accountsResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", userToken).
		SetResult(&pages).
		Get("/me/accounts")
	if err != nil {
		return "", trail, fmt.Errorf("list manageable pages: %w", err)
	}
	trail = trail.Add("GET /me/accounts", resp.StatusCode(), fmt.Sprintf("%d pages", len(pages.Data)))

	if resp.IsError() {
		return "", trail, platforms.ResolutionError{
			Platform: platformID,
			Reason:   platforms.ErrorMessage(resp.Body()),
			Trail:    trail,
		}
	}
	if len(pages.Data) == 0 {
		return "", trail, platforms.ResolutionError{
			Platform: platformID,
			Reason:   "no manageable pages for the authenticated user",
			Trail:    trail,
		}
	}

	page := pages.Data[0]
	var linked linkedAccountResponse
	resp, err = a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fields":       "instagram_business_account",
			"access_token": userToken,
		}).
		SetResult(&linked).
		Get("/" + page.ID)
	if err != nil {
		return "", trail, fmt.Errorf("look up linked business account: %w", err)
	}

	note := "no linked business account"
	if linked.InstagramBusinessAccount != nil {
		note = "linked business account " + linked.InstagramBusinessAccount.ID
	}
	trail = trail.Add(fmt.Sprintf("GET /%s?fields=instagram_business_account", page.ID), resp.StatusCode(), note)

	if resp.IsError() {
		return "", trail, platforms.ResolutionError{
			Platform: platformID,
			Reason:   platforms.ErrorMessage(resp.Body()),
			Trail:    trail,
		}
	}
	if linked.InstagramBusinessAccount == nil || linked.InstagramBusinessAccount.ID == "" {
		return "", trail, platforms.ResolutionError{
			Platform: platformID,
			Reason:   fmt.Sprintf("page %s has no linked business account", page.ID),
			Trail:    trail,
		}
	}

	return linked.InstagramBusinessAccount.ID, trail, nil
}
