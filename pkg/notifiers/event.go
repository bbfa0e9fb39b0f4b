package notifiers

import (
	"time"

	"github.com/learned-geek/socialpress/internal/domain"
)

// Event is the payload delivered downstream after a publish job finishes,
// success or failure. Access tokens never appear in it.
type Event struct {
	Platform    string    `json:"platform"`
	PostID      string    `json:"post_id,omitempty"`
	Caption     string    `json:"caption"`
	Mode        string    `json:"mode"`
	Slides      int       `json:"slides"`
	Succeeded   bool      `json:"succeeded"`
	Error       string    `json:"error,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// NewEvent constructs an Event for the given platform + job outcome.
func NewEvent(platform string, job domain.PublishJob, res domain.PublishResult) Event {
	evt := Event{
		Platform:    platform,
		PostID:      res.PostID,
		Caption:     job.Caption,
		Mode:        job.Mode,
		Slides:      len(job.Slides),
		Succeeded:   res.Succeeded,
		PublishedAt: time.Now().UTC(),
	}
	if res.Err != nil {
		evt.Error = res.Err.Error()
	}
	return evt
}
