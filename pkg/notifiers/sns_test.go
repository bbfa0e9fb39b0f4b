package notifiers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-456")}, nil
}

func TestSNSNotifierSuccess(t *testing.T) {
	client := &fakeSNSClient{}
	notifier := &snsNotifier{
		id:       "sns-1",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:us-east-1:123456789012:results",
		client:   client,
		log:      noopLogger{},
	}

	err := notifier.Notify(context.Background(), Event{
		Platform:  "facebook",
		PostID:    "post-2",
		Succeeded: true,
	})
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:us-east-1:123456789012:results" {
		t.Fatalf("TopicArn = %s", got)
	}
	attr, ok := client.input.MessageAttributes["platform"]
	if !ok || attr.StringValue == nil || aws.ToString(attr.StringValue) != "facebook" {
		t.Fatalf("platform attribute missing or wrong: %#v", attr)
	}
	if client.input.Message == nil || !strings.Contains(aws.ToString(client.input.Message), `"post_id":"post-2"`) {
		t.Fatalf("Message missing post_id: %s", aws.ToString(client.input.Message))
	}
}

func TestSNSNotifierError(t *testing.T) {
	client := &fakeSNSClient{err: errors.New("boom")}
	notifier := &snsNotifier{
		id:       "sns-1",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:us-east-1:123456789012:results",
		client:   client,
		log:      noopLogger{},
	}

	if err := notifier.Notify(context.Background(), Event{Platform: "facebook"}); err == nil {
		t.Fatalf("expected error from Notify")
	}
}
