// Package workerproc decodes queue payloads and runs the job they describe.
package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/queue"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/requestctx"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrInvalidMessage indicates a decodable message that cannot be acted on.
type ErrInvalidMessage struct {
	Meta      MessageMeta
	RequestID string
	Reason    string
}

func (e ErrInvalidMessage) Error() string { return "invalid message: " + e.Reason }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	JobID     string
	RequestID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "rank job"
	}
	return "rank job: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// Unrecoverable reports errors for which redelivery cannot help.
func Unrecoverable(err error) bool {
	var (
		empty   ErrEmptyBody
		decode  ErrDecode
		invalid ErrInvalidMessage
	)
	return errors.As(err, &empty) || errors.As(err, &decode) || errors.As(err, &invalid)
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	switch {
	case msg.Kind != queue.KindRank:
		return msg, meta, ErrInvalidMessage{Meta: meta, RequestID: msg.RequestID, Reason: "unknown kind " + msg.Kind}
	case strings.TrimSpace(msg.JobID) == "":
		return msg, meta, ErrInvalidMessage{Meta: meta, RequestID: msg.RequestID, Reason: "missing job id"}
	case strings.TrimSpace(msg.OwnerID) == "":
		return msg, meta, ErrInvalidMessage{Meta: meta, RequestID: msg.RequestID, Reason: "missing owner id"}
	}
	return msg, meta, nil
}

// Ranker runs a ranking for a stored job.
type Ranker interface {
	RankJob(ctx context.Context, ownerID, jobID string) error
}

// Handle runs an already parsed message.
func Handle(ctx context.Context, ranker Ranker, msg queue.Message) error {
	if ranker == nil {
		return errors.New("ranking service not configured")
	}
	ctx = requestctx.WithRequestID(ctx, msg.RequestID)
	if err := ranker.RankJob(ctx, msg.OwnerID, msg.JobID); err != nil {
		return ErrProcess{JobID: msg.JobID, RequestID: msg.RequestID, Err: err}
	}
	return nil
}

// HandleMessage parses, validates and processes a message payload.
func HandleMessage(ctx context.Context, ranker Ranker, body string) error {
	msg, _, err := ParseMessage(body)
	if err != nil {
		return err
	}
	return Handle(ctx, ranker, msg)
}
