package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/IgorGrieder/linkhub/pkg/httpclient"
	"go.uber.org/zap"
)

const (
	DefaultIPLookupURL     = "https://api.ipify.org?format=json"
	DefaultIPLookupTimeout = 3 * time.Second
)

// IPResolver finds the public IP of the visitor. It returns "" when it
// cannot tell.
type IPResolver interface {
	Resolve(ctx context.Context) string
}

// LookupResolver asks a third-party echo service for the caller's IP.
type LookupResolver struct {
	http *httpclient.Client
	url  string
}

func NewLookupResolver(url string, hc *httpclient.Client) *LookupResolver {
	if strings.TrimSpace(url) == "" {
		url = DefaultIPLookupURL
	}
	if hc == nil {
		hc = httpclient.NewClient(httpclient.Options{Timeout: DefaultIPLookupTimeout})
	}
	return &LookupResolver{http: hc, url: url}
}

func (r *LookupResolver) Resolve(ctx context.Context) string {
	ip, err := r.lookup(ctx)
	if err != nil {
		logger.Debug("ip lookup failed", zap.Error(err))
		return ""
	}
	return ip
}

func (r *LookupResolver) lookup(ctx context.Context) (string, error) {
	resp, err := r.http.Get(ctx, r.url, nil, map[string]string{"Accept": "application/json"})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ip lookup: status %d", resp.StatusCode)
	}

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<10)).Decode(&body); err != nil {
		return "", fmt.Errorf("ip lookup: %w", err)
	}
	return strings.TrimSpace(body.IP), nil
}

// ContextResolver prefers an IP already attached with remote.WithClientIP,
// which is how the gateway passes the address of the real visitor, and only
// falls back to the lookup service without one.
type ContextResolver struct {
	Fallback IPResolver
}

func (r ContextResolver) Resolve(ctx context.Context) string {
	if ip := remote.ClientIP(ctx); ip != "" {
		return ip
	}
	if r.Fallback == nil {
		return ""
	}
	return r.Fallback.Resolve(ctx)
}
