package notifiers

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestPubSubNotifierPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	defer os.Unsetenv("PUBSUB_EMULATOR_HOST")
	os.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if _, err := client.CreateTopic(ctx, "results"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	notifier, err := newPubSubNotifier(ctx, NotifierConfig{
		ID:   "pubsub-1",
		Type: TypePubSub,
		PubSub: &PubSubConfig{
			ProjectID: "test-project",
			Topic:     "results",
		},
	}, nil)
	if err != nil {
		t.Fatalf("newPubSubNotifier: %v", err)
	}

	err = notifier.Notify(ctx, Event{
		Platform:  "instagram",
		PostID:    "post-1",
		Succeeded: true,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
}
