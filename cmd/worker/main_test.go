package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/jobs"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/queue"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeRanker struct {
	err   error
	calls []string
}

func (f *fakeRanker) RankJob(ctx context.Context, ownerID, jobID string) error {
	f.calls = append(f.calls, ownerID+"/"+jobID)
	return f.err
}

func rankMessage(t *testing.T, id string) sqstypes.Message {
	t.Helper()
	body, err := queue.EncodeMessage(queue.NewRankMessage("u1", "job-"+id, "req-"+id))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return sqstypes.Message{
		MessageId:     aws.String("m" + id),
		ReceiptHandle: aws.String("r" + id),
		Body:          aws.String(string(body)),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}
}

func TestWorkerDeletesMessageOnSuccess(t *testing.T) {
	client := &fakeSQS{}
	ranker := &fakeRanker{}

	handleMessage(context.Background(), client, "queue", ranker, rankMessage(t, "1"))

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
	if len(ranker.calls) != 1 || ranker.calls[0] != "u1/job-1" {
		t.Fatalf("unexpected ranker calls %v", ranker.calls)
	}
}

func TestWorkerDoesNotDeleteOnFailure(t *testing.T) {
	client := &fakeSQS{}
	ranker := &fakeRanker{err: errors.New("boom")}

	handleMessage(context.Background(), client, "queue", ranker, rankMessage(t, "2"))

	if len(client.deleted) != 0 {
		t.Fatalf("expected no delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesWhenJobIsGone(t *testing.T) {
	client := &fakeSQS{}
	ranker := &fakeRanker{err: fmt.Errorf("load: %w", jobs.ErrNotFound)}

	handleMessage(context.Background(), client, "queue", ranker, rankMessage(t, "3"))

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnInvalidPayloads(t *testing.T) {
	for _, body := range []string{"", "{not-json", `{"kind":"rank","ownerId":"u1"}`, `{"kind":"other","jobId":"j","ownerId":"u1"}`} {
		client := &fakeSQS{}
		ranker := &fakeRanker{}
		msg := sqstypes.Message{
			MessageId:     aws.String("m"),
			ReceiptHandle: aws.String("r"),
			Body:          aws.String(body),
		}

		handleMessage(context.Background(), client, "queue", ranker, msg)

		if len(client.deleted) != 1 {
			t.Fatalf("body %q: expected delete, got %d", body, len(client.deleted))
		}
		if len(ranker.calls) != 0 {
			t.Fatalf("body %q: ranker should not run", body)
		}
	}
}

func TestReceiveCount(t *testing.T) {
	msg := sqstypes.Message{Attributes: map[string]string{"ApproximateReceiveCount": "3"}}
	if got := receiveCount(msg); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := receiveCount(sqstypes.Message{}); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
