package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/bootstrap"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/jobs"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/config"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/metrics"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	app      *bootstrap.App
)

func initApp() {
	cfg := config.Load()
	built, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	app = built
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda.bootstrap.failed", map[string]any{"records": len(event.Records), "error": initErr})
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}

	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		metrics.IncRankingJobsReceived()
		err := workerproc.HandleMessage(ctx, app.RankingService, record.Body)
		switch {
		case err == nil:
		case workerproc.Unrecoverable(err), errors.Is(err, jobs.ErrNotFound):
			metrics.IncRankingJobsDropped()
			telemetry.Error("worker.rank.dropped", map[string]any{"sqs_message_id": record.MessageId, "error": err})
		default:
			telemetry.Error("worker.rank.failed", map[string]any{"sqs_message_id": record.MessageId, "error": err})
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
	}

	return events.SQSEventResponse{BatchItemFailures: failures}, nil
}

func main() {
	telemetry.Configure(telemetry.OptionsFromEnv())
	lambda.Start(handler)
}
