// Package remotetest provides an in-memory remote.Caller for tests.
package remotetest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/IgorGrieder/linkhub/internal/apperr"
	"github.com/IgorGrieder/linkhub/internal/remote"
)

// Call records one request seen by the fake.
type Call struct {
	Action  string
	Payload map[string]any
	// IP is the client address the caller attached with remote.WithClientIP.
	IP string
}

// Handler answers one action. Return a JSON body, or an error to simulate a
// transport failure.
type Handler func(payload map[string]any) (string, error)

type Store struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

func New() *Store {
	return &Store{handlers: make(map[string]Handler)}
}

// On registers h for action.
func (s *Store) On(action string, h Handler) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[action] = h
	return s
}

// Reply answers action with a fixed body.
func (s *Store) Reply(action, body string) *Store {
	return s.On(action, func(map[string]any) (string, error) { return body, nil })
}

// Fail makes action fail with a network error.
func (s *Store) Fail(action string) *Store {
	return s.On(action, func(map[string]any) (string, error) {
		return "", &apperr.TransportError{Action: action, Kind: apperr.KindNetwork}
	})
}

func (s *Store) Call(ctx context.Context, action string, payload any) (*remote.Envelope, error) {
	fields := map[string]any{}
	if payload != nil {
		raw, _ := json.Marshal(payload)
		_ = json.Unmarshal(raw, &fields)
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Action: action, Payload: fields, IP: remote.ClientIP(ctx)})
	h, ok := s.handlers[action]
	s.mu.Unlock()

	if !ok {
		return nil, &apperr.TransportError{Action: action, Kind: apperr.KindNetwork}
	}

	body, err := h(fields)
	if err != nil {
		return nil, err
	}
	env, err := remote.ParseEnvelope([]byte(body))
	if err != nil {
		return nil, &apperr.TransportError{Action: action, Kind: apperr.KindDecode, Err: err}
	}
	return env, nil
}

// Calls returns the recorded calls for action, or all calls when action is "".
func (s *Store) Calls(action string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Call, 0, len(s.calls))
	for _, c := range s.calls {
		if action == "" || c.Action == action {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) Count(action string) int {
	return len(s.Calls(action))
}

// Batch answers each request with its own handler, in order. A handler
// registered for batch_request runs first and can fail the whole batch.
func (s *Store) Batch(ctx context.Context, reqs []remote.Request) ([]*remote.Envelope, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Action: remote.ActionBatchRequest, Payload: map[string]any{"requests": len(reqs)}})
	h, ok := s.handlers[remote.ActionBatchRequest]
	s.mu.Unlock()

	if ok {
		if _, err := h(nil); err != nil {
			return nil, err
		}
	}

	out := make([]*remote.Envelope, len(reqs))
	for i, r := range reqs {
		env, err := s.Call(ctx, r.Action, r.Payload)
		if err == nil {
			out[i] = env
		}
	}
	return out, nil
}
