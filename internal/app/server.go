package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/learned-geek/socialpress/internal/domain"
	"github.com/learned-geek/socialpress/internal/pipeline"
	"github.com/learned-geek/socialpress/pkg/platforms"
)

// publishRequest is the inbound publish contract from the calling layer.
type publishRequest struct {
	Platform string         `json:"platform"`
	Caption  string         `json:"caption"`
	Mode     string         `json:"mode,omitempty"`
	Slides   []domain.Slide `json:"slides"`
}

// publishResponse renders a PublishResult to the caller.
type publishResponse struct {
	Succeeded bool     `json:"succeeded"`
	PostID    string   `json:"post_id,omitempty"`
	Error     string   `json:"error,omitempty"`
	Trail     []string `json:"trail,omitempty"`
}

// credentialResponse renders a stored credential without its tokens.
type credentialResponse struct {
	Platform  string    `json:"platform"`
	AccountID string    `json:"account_id"`
	LongLived bool      `json:"long_lived"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Run serves the HTTP surface until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealth)
	mux.HandleFunc("GET /auth/{platform}/start", a.handleAuthStart)
	mux.HandleFunc("GET /auth/{platform}/callback", a.handleAuthCallback)
	mux.HandleFunc("POST /publish", a.handlePublish)

	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.InfoObj("publisher listening", "server_state", map[string]any{
			"addr": a.cfg.ListenAddr,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		a.log.InfoObj("publisher stopped", "reason", ctx.Err())
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAuthStart redirects the operator to the platform's login dialog.
func (a *App) handleAuthStart(w http.ResponseWriter, r *http.Request) {
	url, err := a.auth.Begin(r.PathValue("platform"))
	if err != nil {
		writeJSON(w, statusFor(err), publishResponse{Error: err.Error()})
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// handleAuthCallback completes the authorization flow and stores the
// resolved credential.
func (a *App) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cred, err := a.auth.HandleCallback(r.Context(), r.PathValue("platform"),
		q.Get("code"), q.Get("state"), q.Get("error"))
	if err != nil {
		resp := publishResponse{Error: err.Error()}
		var resErr platforms.ResolutionError
		if errors.As(err, &resErr) {
			resp.Trail = resErr.Trail.Lines()
		}
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, credentialResponse{
		Platform:  cred.Platform,
		AccountID: cred.AccountID,
		LongLived: cred.LongLived,
		ExpiresAt: cred.ExpiresAt,
	})
}

// handlePublish runs one publish job and renders its result.
func (a *App) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, publishResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = domain.ModeSingle
		if len(req.Slides) > 1 {
			mode = domain.ModeCarousel
		}
	}

	res := a.pipe.Publish(r.Context(), req.Platform, domain.PublishJob{
		Caption: req.Caption,
		Mode:    mode,
		Slides:  req.Slides,
	})

	resp := publishResponse{Succeeded: res.Succeeded, PostID: res.PostID}
	status := http.StatusOK
	if res.Err != nil {
		resp.Error = res.Err.Error()
		status = statusFor(res.Err)
		var resErr platforms.ResolutionError
		if errors.As(res.Err, &resErr) {
			resp.Trail = resErr.Trail.Lines()
		}
	}
	writeJSON(w, status, resp)
}

// statusFor maps the failure taxonomy onto HTTP statuses so the caller can
// always render a deterministic response.
func statusFor(err error) int {
	var (
		cfgErr     platforms.ConfigurationError
		authErr    platforms.AuthorizationError
		exchErr    platforms.ExchangeError
		upgErr     platforms.UpgradeError
		resErr     platforms.ResolutionError
		contErr    platforms.ContainerError
		timeoutErr platforms.TimeoutError
	)
	switch {
	case errors.Is(err, pipeline.ErrAlreadyPublished):
		return http.StatusConflict
	case errors.As(err, &cfgErr):
		return http.StatusPreconditionFailed
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &exchErr), errors.As(err, &upgErr):
		return http.StatusBadGateway
	case errors.As(err, &resErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &contErr):
		return http.StatusBadGateway
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
