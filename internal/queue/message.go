package queue

import (
	"encoding/json"
	"time"
)

// KindRank asks a worker to rank candidates for one job.
const KindRank = "rank"

// MessageVersion is the current payload version.
const MessageVersion = 1

// Message is the payload sent to downstream queue consumers.
type Message struct {
	Kind       string `json:"kind"`
	JobID      string `json:"jobId"`
	OwnerID    string `json:"ownerId"`
	RequestID  string `json:"requestId,omitempty"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// NewRankMessage builds a ranking request stamped with the current time.
func NewRankMessage(ownerID, jobID, requestID string) Message {
	return Message{
		Kind:       KindRank,
		JobID:      jobID,
		OwnerID:    ownerID,
		RequestID:  requestID,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    MessageVersion,
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message. A missing kind means rank.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Kind == "" {
		msg.Kind = KindRank
	}
	return msg, nil
}
