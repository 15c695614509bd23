// Package remote speaks the remote store wire contract: one endpoint, a JSON
// envelope with an action discriminator sent as text/plain, and a JSON
// envelope with a success flag in return.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/IgorGrieder/linkhub/internal/apperr"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/metrics"
	"github.com/IgorGrieder/linkhub/pkg/httpclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Actions understood by the remote store.
const (
	ActionLogin              = "login"
	ActionSaveProfile        = "save_profile"
	ActionGetProfile         = "get_profile"
	ActionGetProfileAndLinks = "get_profile_and_links"
	ActionSaveLink           = "save_link"
	ActionGetLinks           = "get_links"
	ActionUpdateLink         = "update_link"
	ActionUpdateLinkOrders   = "update_link_orders"
	ActionBatchUpdateLinks   = "batch_update_links"
	ActionDeleteLink         = "delete_link"
	ActionVisitorLog         = "visitor_log"
	ActionLinkClick          = "link_click"
	ActionGetStats           = "get_stats"
	ActionBatchRequest       = "batch_request"
)

// ContentType avoids a CORS pre-flight on the script host.
const ContentType = "text/plain;charset=utf-8"

const maxBodyBytes = 10 << 20

// Caller is what the data-access services need from the store.
type Caller interface {
	Call(ctx context.Context, action string, payload any) (*Envelope, error)
}

type Client struct {
	http     *httpclient.Client
	endpoint string
	tracer   trace.Tracer
}

func NewClient(endpoint string, hc *httpclient.Client) *Client {
	return &Client{
		http:     hc,
		endpoint: endpoint,
		tracer:   otel.Tracer("remote-store"),
	}
}

type clientIPKey struct{}

// WithClientIP attaches a resolved client IP; Call forwards it as the ip
// query parameter.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// Call posts {action, ...payload}. It returns a TransportError for network
// failures, non-2xx statuses and undecodable bodies. A success=false
// envelope is returned as-is with a nil error; use Do to turn it into a
// RemoteError.
func (c *Client) Call(ctx context.Context, action string, payload any) (*Envelope, error) {
	ctx, span := c.tracer.Start(ctx, "remote."+action,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("remote.action", action)),
	)
	defer span.End()

	start := time.Now()
	env, err := c.call(ctx, action, payload)
	metrics.RemoteRequestDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.RemoteRequestsTotal.WithLabelValues(action, "transport_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "remote call failed")
	case !env.Success:
		metrics.RemoteRequestsTotal.WithLabelValues(action, "rejected").Inc()
		span.SetAttributes(attribute.Bool("remote.success", false))
	default:
		metrics.RemoteRequestsTotal.WithLabelValues(action, "success").Inc()
		span.SetAttributes(attribute.Bool("remote.success", true))
	}
	return env, err
}

// Do is Call with success=false mapped to a RemoteError.
func Do(ctx context.Context, c Caller, action string, payload any) (*Envelope, error) {
	env, err := c.Call(ctx, action, payload)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return env, &apperr.RemoteError{Action: action, Message: env.Message}
	}
	return env, nil
}

func (c *Client) call(ctx context.Context, action string, payload any) (*Envelope, error) {
	body, err := buildBody(action, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode payload: %w", action, err)
	}

	var query map[string]string
	if ip := ClientIP(ctx); ip != "" {
		query = map[string]string{"ip": ip}
	}

	resp, err := c.http.Post(ctx, c.endpoint, query, body, map[string]string{
		"Content-Type": ContentType,
	})
	if err != nil {
		return nil, classify(action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperr.TransportError{Action: action, Kind: apperr.KindStatus, Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.NewTransport(action, err)
	}

	env, err := ParseEnvelope(raw)
	if err != nil {
		return nil, &apperr.TransportError{Action: action, Kind: apperr.KindDecode, Status: resp.StatusCode, Err: err}
	}
	return env, nil
}

func classify(action string, err error) error {
	var statusErr *httpclient.StatusError
	switch {
	case errors.As(err, &statusErr):
		return &apperr.TransportError{Action: action, Kind: apperr.KindStatus, Status: statusErr.StatusCode, Err: err}
	case errors.Is(err, httpclient.ErrCircuitOpen):
		return &apperr.TransportError{Action: action, Kind: apperr.KindCircuit, Err: err}
	default:
		return apperr.NewTransport(action, err)
	}
}

// buildBody flattens payload into a JSON object and sets the action field.
func buildBody(action string, payload any) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("payload must encode as a JSON object: %w", err)
		}
		if fields == nil {
			fields = make(map[string]json.RawMessage)
		}
	}

	actionRaw, err := json.Marshal(action)
	if err != nil {
		return nil, err
	}
	fields["action"] = actionRaw
	return fields, nil
}
