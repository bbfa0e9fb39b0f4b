package authflow

import (
	"context"
	"fmt"

	"github.com/learned-geek/socialpress/internal/domain"
	"github.com/learned-geek/socialpress/internal/logger"
	"github.com/learned-geek/socialpress/internal/storage"
	"github.com/learned-geek/socialpress/pkg/platforms"
)

// Coordinator drives the OAuth authorization flow: it hands out
// authorization URLs bound to state nonces and turns callbacks into stored
// credentials. This is the only code path that writes credentials; publish
// calls read them, so the two flows never contend.
type Coordinator struct {
	adapters *platforms.Registry
	states   *StateRegistry
	store    storage.Store
	log      logger.Logger

	// allowStateMismatch tolerates a missing or mismatched state nonce,
	// for transports known to drop session state. Documented risk
	// tolerance, not a security guarantee; mismatches are always logged.
	allowStateMismatch bool
}

// NewCoordinator wires the authorization flow.
func NewCoordinator(adapters *platforms.Registry, states *StateRegistry, store storage.Store, log logger.Logger, allowStateMismatch bool) *Coordinator {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Coordinator{
		adapters:           adapters,
		states:             states,
		store:              store,
		log:                log,
		allowStateMismatch: allowStateMismatch,
	}
}

// Begin issues a state nonce and returns the authorization redirect URL for
// the platform.
func (c *Coordinator) Begin(platformID string) (string, error) {
	adapter, err := c.adapters.AdapterFor(platformID)
	if err != nil {
		return "", err
	}
	if !adapter.IsConfigured() {
		return "", platforms.ConfigurationError{Platform: adapter.ID()}
	}

	state, err := c.states.Issue()
	if err != nil {
		return "", err
	}
	return adapter.BuildAuthorizationURL(state)
}

// HandleCallback validates the callback, exchanges the code for a fully
// resolved credential, and persists it. The updated credential is also
// returned so the caller can render it.
func (c *Coordinator) HandleCallback(ctx context.Context, platformID, code, state, errParam string) (domain.Credential, error) {
	adapter, err := c.adapters.AdapterFor(platformID)
	if err != nil {
		return domain.Credential{}, err
	}

	if errParam != "" {
		return domain.Credential{}, platforms.AuthorizationError{
			Platform: adapter.ID(),
			Reason:   "authorization denied: " + errParam,
		}
	}

	if !c.states.Consume(state) {
		c.log.WarnObj("oauth state mismatch", "authflow_state", map[string]any{
			"platform":  adapter.ID(),
			"tolerated": c.allowStateMismatch,
		})
		if !c.allowStateMismatch {
			return domain.Credential{}, platforms.AuthorizationError{
				Platform: adapter.ID(),
				Reason:   "state nonce mismatch",
			}
		}
	}

	if code == "" {
		return domain.Credential{}, platforms.AuthorizationError{
			Platform: adapter.ID(),
			Reason:   "callback carried no authorization code",
		}
	}

	cred, err := adapter.ExchangeCode(ctx, code)
	if err != nil {
		return domain.Credential{}, err
	}

	if err := c.store.SaveCredential(cred); err != nil {
		return domain.Credential{}, fmt.Errorf("persist credential: %w", err)
	}

	c.log.InfoObj("credential stored", "authflow_credential", map[string]any{
		"platform":   cred.Platform,
		"account_id": cred.AccountID,
		"expires_at": cred.ExpiresAt,
	})
	return cred, nil
}
