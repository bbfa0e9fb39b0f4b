package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/learned-geek/socialpress/internal/domain"
	"github.com/learned-geek/socialpress/internal/logger"
	"github.com/learned-geek/socialpress/internal/storage"
	"github.com/learned-geek/socialpress/pkg/notifiers"
	"github.com/learned-geek/socialpress/pkg/platforms"
	"github.com/learned-geek/socialpress/pkg/renderer"
)

// ErrAlreadyPublished marks a job whose content was published before and is
// still inside the dedupe window.
var ErrAlreadyPublished = errors.New("post was already published")

// Service runs publish jobs end to end: credential lookup, slide
// materialization, the platform publish call, dedupe bookkeeping, and result
// notification. Each job is one sequential chain of network operations; jobs
// share no mutable state beyond the externally stored credential, which is
// read-only here.
type Service struct {
	adapters *platforms.Registry
	renderer renderer.Renderer
	store    storage.Store
	fanout   *notifiers.Fanout
	log      logger.Logger
}

// NewService wires the publish pipeline.
func NewService(adapters *platforms.Registry, rend renderer.Renderer, store storage.Store, fanout *notifiers.Fanout, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		adapters: adapters,
		renderer: rend,
		store:    store,
		fanout:   fanout,
		log:      log,
	}
}

// Publish executes one job against the named platform. Failures come back
// inside the result; no error escapes as a panic.
func (s *Service) Publish(ctx context.Context, platformID string, job domain.PublishJob) domain.PublishResult {
	if err := job.Validate(); err != nil {
		return s.finish(ctx, platformID, job, failure(err))
	}

	adapter, err := s.adapters.AdapterFor(platformID)
	if err != nil {
		return s.finish(ctx, platformID, job, failure(err))
	}
	if !adapter.IsConfigured() {
		return s.finish(ctx, platformID, job, failure(platforms.ConfigurationError{Platform: adapter.ID()}))
	}

	cred, found, err := s.store.Credential(adapter.ID())
	if err != nil {
		return s.finish(ctx, platformID, job, failure(fmt.Errorf("load credential: %w", err)))
	}
	if !found || !adapter.HasValidToken(cred) {
		return s.finish(ctx, platformID, job, failure(platforms.AuthorizationError{
			Platform: adapter.ID(),
			Reason:   "no valid credential stored; complete the authorization flow first",
		}))
	}

	materialized, err := s.materialize(ctx, job)
	if err != nil {
		return s.finish(ctx, platformID, job, failure(err))
	}

	key := dedupeKey(adapter.ID(), materialized)
	seen, err := s.store.SeenPost(key)
	if err != nil {
		return s.finish(ctx, platformID, job, failure(fmt.Errorf("dedupe lookup: %w", err)))
	}
	if seen {
		s.log.InfoObj("duplicate post skipped", "pipeline_dedupe", map[string]any{
			"platform": adapter.ID(),
			"key":      key,
		})
		return s.finish(ctx, platformID, job, failure(ErrAlreadyPublished))
	}

	res := adapter.Publish(ctx, cred, materialized)
	if res.Succeeded {
		if err := s.store.MarkPost(key); err != nil {
			s.log.ErrorObj("dedupe mark failed", "pipeline_dedupe", map[string]any{
				"platform": adapter.ID(),
				"error":    err.Error(),
			})
		}
	}
	return s.finish(ctx, platformID, materialized, res)
}

// materialize resolves every slide descriptor to a publicly fetchable URL.
// Slides are resolved sequentially so a failure names the exact slide.
func (s *Service) materialize(ctx context.Context, job domain.PublishJob) (domain.PublishJob, error) {
	out := job
	out.Slides = make([]domain.Slide, len(job.Slides))
	for i, slide := range job.Slides {
		url, err := s.renderer.Materialize(ctx, slide)
		if err != nil {
			return domain.PublishJob{}, fmt.Errorf("materialize slide %d: %w", i+1, err)
		}
		out.Slides[i] = domain.Slide{Kind: domain.SlideImage, ImageURL: url}
	}
	return out, nil
}

// finish notifies downstream sinks and returns the result unchanged.
func (s *Service) finish(ctx context.Context, platformID string, job domain.PublishJob, res domain.PublishResult) domain.PublishResult {
	if s.fanout != nil && s.fanout.Size() > 0 {
		if _, err := s.fanout.Notify(ctx, notifiers.NewEvent(platformID, job, res)); err != nil {
			s.log.ErrorObj("result notification failed", "pipeline_notify", map[string]any{
				"platform": platformID,
				"error":    err.Error(),
			})
		}
	}

	if res.Err != nil {
		s.log.ErrorObj("publish job failed", "pipeline_result", map[string]any{
			"platform": platformID,
			"mode":     job.Mode,
			"slides":   len(job.Slides),
			"error":    res.Err.Error(),
		})
	} else {
		s.log.InfoObj("publish job finished", "pipeline_result", map[string]any{
			"platform": platformID,
			"mode":     job.Mode,
			"slides":   len(job.Slides),
			"post_id":  res.PostID,
		})
	}
	return res
}

// dedupeKey fingerprints the materialized job content.
func dedupeKey(platform string, job domain.PublishJob) string {
	h := sha256.New()
	h.Write([]byte(platform))
	h.Write([]byte{0})
	h.Write([]byte(job.Caption))
	for _, slide := range job.Slides {
		h.Write([]byte{0})
		h.Write([]byte(strings.TrimSpace(slide.ImageURL)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func failure(err error) domain.PublishResult {
	return domain.PublishResult{Succeeded: false, Err: err}
}
