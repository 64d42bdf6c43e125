package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/storm-intel-service/internal/assessment"
	"github.com/couchcryptid/storm-intel-service/internal/domain"
)

// Assessor runs one assessment request.
type Assessor interface {
	Assess(ctx context.Context, req assessment.Request) (domain.Assessment, error)
}

// AssessTransformer implements Transformer by decoding the message as an
// assessment.Request and handing it to an Assessor.
type AssessTransformer struct {
	assessor Assessor
}

// NewTransformer creates an AssessTransformer.
func NewTransformer(assessor Assessor) *AssessTransformer {
	return &AssessTransformer{assessor: assessor}
}

// Transform decodes and assesses one message. A request without its own id
// takes the message key, so producers can correlate by key.
func (t *AssessTransformer) Transform(ctx context.Context, raw domain.RequestMessage) (domain.Assessment, error) {
	req, err := DecodeRequest(raw)
	if err != nil {
		return domain.Assessment{}, err
	}
	return t.assessor.Assess(ctx, req)
}

// DecodeRequest parses a message body. Malformed JSON wraps
// domain.ErrInvalidRequest.
func DecodeRequest(raw domain.RequestMessage) (assessment.Request, error) {
	var req assessment.Request
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return assessment.Request{}, fmt.Errorf("decode request at offset %d: %w: %w", raw.Offset, domain.ErrInvalidRequest, err)
	}
	if req.RequestID == "" && len(raw.Key) > 0 {
		req.RequestID = string(raw.Key)
	}
	return req, nil
}
