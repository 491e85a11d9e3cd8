// Package backend dispatches every request of the dashboard to the remote ranking API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/platform/logger"
	"time"

	"go.uber.org/zap"
)

const maxBodyBytes = 16 << 20

type Client struct {
	baseURL        string
	http           *http.Client
	defaultTimeout time.Duration
}

// NewClient panics on a non-positive default timeout: calls must never wait forever.
func NewClient(baseURL string, defaultTimeout time.Duration, httpClient *http.Client) *Client {
	if defaultTimeout <= 0 {
		panic("backend: default timeout must be positive")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           httpClient,
		defaultTimeout: defaultTimeout,
	}
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	JSON   any
	Form   *MultipartForm
	// Token overrides the context's token source when set.
	Token   string
	Timeout time.Duration
}

type Response struct {
	Status int
	Body   []byte
}

// Do sends req and returns the raw 2xx body. Every failure is a *common.APIError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}
	c.attachToken(ctx, httpReq, req.Token)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Log.Warn("backend request failed",
			zap.String("method", req.Method), zap.String("path", req.Path), zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &common.APIError{Kind: common.KindNetwork, Message: "O servidor demorou demais para responder.", Err: err}
		}
		return nil, common.NewNetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, common.NewNetworkError(fmt.Errorf("reading response body: %w", err))
	}
	logger.Log.Debug("backend request",
		zap.String("method", req.Method), zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	return c.inspect(ctx, resp.StatusCode, body)
}

// DoJSON is Do followed by decoding the body into out.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return common.NewMalformedError("decoding %s %s: %v", req.Method, req.Path, err)
	}
	return nil
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.Form != nil:
		buf, ct, err := req.Form.encode()
		if err != nil {
			return nil, common.Errorf("encoding multipart body for %s: %w", req.Path, err)
		}
		body, contentType = buf, ct
	case req.JSON != nil:
		raw, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, common.Errorf("encoding JSON body for %s: %w", req.Path, err)
		}
		body, contentType = bytes.NewReader(raw), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, common.Errorf("building request %s %s: %w", req.Method, req.Path, err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	return httpReq, nil
}

// attachToken sets the bearer header whenever a token is available; it does not check shape or expiry.
func (c *Client) attachToken(ctx context.Context, httpReq *http.Request, explicit string) {
	token := explicit
	if token == "" {
		if h := hooksFrom(ctx); h != nil && h.token != nil {
			token = h.token(ctx)
		}
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) inspect(ctx context.Context, status int, body []byte) (*Response, error) {
	if status >= 200 && status < 300 {
		return &Response{Status: status, Body: body}, nil
	}
	if status == http.StatusUnauthorized {
		if h := hooksFrom(ctx); h != nil && h.unauthorized != nil {
			h.unauthorized(ctx)
		}
		return nil, common.NewAuthError(status)
	}
	return nil, common.NewServerError(status, serverMessage(body))
}

// serverMessage picks the human message out of an error body, if the backend sent one.
func serverMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "mensagem", "error", "erro"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
