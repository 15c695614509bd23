package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IgorGrieder/linkhub/internal/apperr"
	"github.com/google/uuid"
)

// Request is one entry of a batch_request round trip.
type Request struct {
	Action  string
	Payload any
}

type batchItem map[string]json.RawMessage

// Batch sends several actions in one batch_request. Results come back in
// request order; an entry is nil when the store omitted it or returned
// something that is not an envelope. The whole call fails only on transport
// errors or when the batch itself is rejected.
func (c *Client) Batch(ctx context.Context, reqs []Request) ([]*Envelope, error) {
	items := make([]batchItem, 0, len(reqs))
	for _, r := range reqs {
		body, err := buildBody(r.Action, r.Payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode batch entry %s: %w", ActionBatchRequest, r.Action, err)
		}
		items = append(items, body)
	}

	env, err := Do(ctx, c, ActionBatchRequest, map[string]any{
		"batchId":  uuid.NewString(),
		"requests": items,
	})
	if err != nil {
		return nil, err
	}

	var raw []map[string]json.RawMessage
	if err := env.Decode("results", &raw); err != nil {
		return nil, &apperr.TransportError{Action: ActionBatchRequest, Kind: apperr.KindDecode, Err: err}
	}

	out := make([]*Envelope, len(reqs))
	for i := range out {
		if i >= len(raw) || raw[i] == nil {
			continue
		}
		if sub, err := envelopeFromFields(raw[i]); err == nil {
			out[i] = sub
		}
	}
	return out, nil
}
