// Package authclient is the HTTP client for the internal auth service. The
// gateway never verifies credentials itself; every protected request is
// resolved through this exchange.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/fanvest/gateway/internal/core/domain"
)

const validatePath = "/validate_token"

// Client calls the auth service's validate_token operation.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
	log        zerolog.Logger
}

// New builds a verifier client for the auth service at baseURL. The timeout
// bounds the single suspension point of an authenticated request; there is
// no retry at this layer.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
			},
		},
		validate: validator.New(),
		log:      log.With().Str("component", "auth_client").Logger(),
	}
}

type validateRequest struct {
	Token string `json:"token"`
}

type validateReply struct {
	Success bool `json:"success"`
	Data    struct {
		User domain.Identity `json:"user"`
	} `json:"data"`
}

// Verify sends the token to the auth service and translates its reply into
// an identity or a failure. Transport failures and malformed replies map to
// UpstreamError with the best-known status; a success=false reply maps to
// ErrUnauthorized.
func (c *Client) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	body, err := json.Marshal(validateRequest{Token: token})
	if err != nil {
		return nil, domain.NewUpstreamError(0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+validatePath, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewUpstreamError(0, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("auth service unreachable")
		return nil, domain.NewUpstreamError(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		c.log.Error().
			Int("status", resp.StatusCode).
			Dur("elapsed", time.Since(start)).
			Msg("auth service returned server error")
		return nil, domain.NewUpstreamError(resp.StatusCode, fmt.Errorf("auth service status %d", resp.StatusCode))
	}

	var reply validateReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		// A malformed reply on a 2xx must not surface a success status;
		// only error statuses are worth carrying to the client.
		status := resp.StatusCode
		if status < http.StatusBadRequest {
			status = 0
		}
		return nil, domain.NewUpstreamError(status, fmt.Errorf("decode auth reply: %w", err))
	}

	if !reply.Success {
		return nil, domain.ErrUnauthorized
	}

	if err := c.validate.Struct(&reply.Data.User); err != nil {
		return nil, domain.NewUpstreamError(0, fmt.Errorf("auth reply missing identity fields: %w", err))
	}

	identity := reply.Data.User
	return &identity, nil
}
