package domain

import (
	"testing"
	"time"
)

func TestPublishJobValidate(t *testing.T) {
	slides := func(n int) []Slide {
		out := make([]Slide, n)
		for i := range out {
			out[i] = Slide{Kind: SlideImage, ImageURL: "https://cdn.example.com/x.png"}
		}
		return out
	}

	cases := []struct {
		name   string
		mode   string
		slides int
		ok     bool
	}{
		{"single with one slide", ModeSingle, 1, true},
		{"single with none", ModeSingle, 0, false},
		{"single with two", ModeSingle, 2, false},
		{"carousel at lower bound", ModeCarousel, 2, true},
		{"carousel at upper bound", ModeCarousel, 10, true},
		{"carousel below bound", ModeCarousel, 1, false},
		{"carousel above bound", ModeCarousel, 11, false},
		{"unknown mode", "story", 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := PublishJob{Mode: tc.mode, Slides: slides(tc.slides)}.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestCredentialValid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	base := Credential{AccessToken: "tok", AccountID: "acct"}
	if !base.Valid(now) {
		t.Fatalf("credential without expiry must be valid")
	}

	expiring := base
	expiring.ExpiresAt = now.Add(time.Minute)
	if !expiring.Valid(now) {
		t.Fatalf("future expiry must be valid")
	}

	expired := base
	expired.ExpiresAt = now.Add(-time.Minute)
	if expired.Valid(now) {
		t.Fatalf("past expiry must be invalid")
	}

	if (Credential{AccountID: "acct"}).Valid(now) {
		t.Fatalf("missing token must be invalid")
	}
	if (Credential{AccessToken: "tok"}).Valid(now) {
		t.Fatalf("missing account id must be invalid")
	}
}
