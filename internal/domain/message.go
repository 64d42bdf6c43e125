package domain

import (
	"context"
	"time"
)

// RequestMessage is one assessment request as read from the source topic.
// Commit acknowledges it; nil means the source has no acknowledgement.
type RequestMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}
