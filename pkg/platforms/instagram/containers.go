package instagram

import (
	"context"
	"strings"
	"time"

	"github.com/learned-geek/socialpress/internal/domain"
	"github.com/learned-geek/socialpress/pkg/platforms"
)

// Raw container status codes reported by the platform.
const (
	statusFinished   = "FINISHED"
	statusInProgress = "IN_PROGRESS"
	statusError      = "ERROR"
	statusExpired    = "EXPIRED"
)

// containerResponse is the container creation response.
type containerResponse struct {
	ID string `json:"id"`
}

// statusResponse is the container status poll response. The status field is
// optional: some content types skip asynchronous processing entirely and the
// platform omits it.
type statusResponse struct {
	StatusCode *string `json:"status_code"`
}

// publishResponse is the media publish response.
type publishResponse struct {
	ID string `json:"id"`
}

// createImageContainer creates one media container for an image URL. Carousel
// children are flagged as carousel items and never carry a caption; the
// caption belongs only to the aggregate container.
func (a *Adapter) createImageContainer(ctx context.Context, cred domain.Credential, imageURL, caption string, carouselItem bool) (string, error) {
	form := map[string]string{
		"image_url":    imageURL,
		"access_token": cred.AccessToken,
	}
	if carouselItem {
		form["is_carousel_item"] = "true"
	} else if caption != "" {
		form["caption"] = caption
	}

	var out containerResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		Post("/" + cred.AccountID + "/media")
	if err != nil {
		return "", platforms.ContainerError{Platform: platformID, Op: "container create", Status: 0, Body: err.Error()}
	}
	if resp.IsError() || out.ID == "" {
		return "", platforms.ContainerError{
			Platform: platformID,
			Op:       "container create",
			Status:   resp.StatusCode(),
			Body:     platforms.ErrorMessage(resp.Body()),
		}
	}

	a.log.DebugObj("media container created", "instagram_container", map[string]any{
		"container_id":  out.ID,
		"carousel_item": carouselItem,
	})
	return out.ID, nil
}

// createCarouselContainer creates the aggregate container referencing the
// child ids plus the caption.
func (a *Adapter) createCarouselContainer(ctx context.Context, cred domain.Credential, children []string, caption string) (string, error) {
	form := map[string]string{
		"media_type":   "CAROUSEL",
		"children":     strings.Join(children, ","),
		"access_token": cred.AccessToken,
	}
	if caption != "" {
		form["caption"] = caption
	}

	var out containerResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		Post("/" + cred.AccountID + "/media")
	if err != nil {
		return "", platforms.ContainerError{Platform: platformID, Op: "carousel create", Status: 0, Body: err.Error()}
	}
	if resp.IsError() || out.ID == "" {
		return "", platforms.ContainerError{
			Platform: platformID,
			Op:       "carousel create",
			Status:   resp.StatusCode(),
			Body:     platforms.ErrorMessage(resp.Body()),
		}
	}

	a.log.DebugObj("carousel container created", "instagram_container", map[string]any{
		"container_id": out.ID,
		"children":     len(children),
	})
	return out.ID, nil
}

// waitForContainer polls the container status until it is ready, failed, or
// the polling budget is exhausted. Bounded attempts with a fixed delay, no
// backoff. Budget exhaustion is a TimeoutError, distinct from failure, so
// the caller can decide to retry the whole job later.
func (a *Adapter) waitForContainer(ctx context.Context, cred domain.Credential, containerID string) error {
	for attempt := 1; attempt <= a.poll.Attempts; attempt++ {
		status, err := a.containerStatus(ctx, cred, containerID)
		if err != nil {
			return err
		}

		switch classifyStatus(status) {
		case domain.ContainerReady:
			return nil
		case domain.ContainerFailed:
			return platforms.ContainerError{
				Platform: platformID,
				Op:       "container processing",
				Status:   0,
				Body:     "container entered status " + status,
			}
		}

		if status != "" && status != statusInProgress {
			// Unrecognized status strings are treated as still processing so
			// platform additions do not crash the loop.
			a.log.WarnObj("unrecognized container status", "instagram_container", map[string]any{
				"container_id": containerID,
				"status":       status,
				"attempt":      attempt,
			})
		}

		if attempt == a.poll.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return platforms.TimeoutError{Platform: platformID, ContainerID: containerID, Attempts: attempt}
		case <-time.After(a.poll.Delay):
		}
	}

	return platforms.TimeoutError{Platform: platformID, ContainerID: containerID, Attempts: a.poll.Attempts}
}

// containerStatus fetches the current status code for a container. An empty
// string means the platform omitted the field.
func (a *Adapter) containerStatus(ctx context.Context, cred domain.Credential, containerID string) (string, error) {
	var out statusResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fields":       "status_code",
			"access_token": cred.AccessToken,
		}).
		SetResult(&out).
		Get("/" + containerID)
	if err != nil {
		return "", platforms.ContainerError{Platform: platformID, Op: "container status", Status: 0, Body: err.Error()}
	}
	if resp.IsError() {
		return "", platforms.ContainerError{
			Platform: platformID,
			Op:       "container status",
			Status:   resp.StatusCode(),
			Body:     platforms.ErrorMessage(resp.Body()),
		}
	}
	if out.StatusCode == nil {
		return "", nil
	}
	return *out.StatusCode, nil
}

// classifyStatus maps raw platform status strings onto the container state
// machine. An absent status means the content type skipped asynchronous
// processing and the container is immediately publishable.
func classifyStatus(raw string) string {
	switch raw {
	case "", statusFinished:
		return domain.ContainerReady
	case statusError, statusExpired:
		return domain.ContainerFailed
	default:
		return domain.ContainerProcessing
	}
}

// publishContainer triggers the publish call for a ready container.
func (a *Adapter) publishContainer(ctx context.Context, cred domain.Credential, containerID string) (string, error) {
	var out publishResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"creation_id":  containerID,
			"access_token": cred.AccessToken,
		}).
		SetResult(&out).
		Post("/" + cred.AccountID + "/media_publish")
	if err != nil {
		return "", platforms.ContainerError{Platform: platformID, Op: "media publish", Status: 0, Body: err.Error()}
	}
	if resp.IsError() || out.ID == "" {
		return "", platforms.ContainerError{
			Platform: platformID,
			Op:       "media publish",
			Status:   resp.StatusCode(),
			Body:     platforms.ErrorMessage(resp.Body()),
		}
	}
	return out.ID, nil
}
