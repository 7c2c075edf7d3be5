// Package analysis forwards prepared data to the remote analytics API and validates each
// use case's input before it leaves the service.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	apperrors "github.com/jrsteele09/aquamind/internal/errors"
)

// Remote endpoints, relative to the API base URL.
const (
	PathKMeansFit          = "/cluster/kmeans/fit"
	PathSimpleRegression   = "/rl-simple/analizar"
	PathMultipleRegression = "/rl-multiple/analizar"
	PathSentiment          = "/analizar"
	PathHealth             = "/health"
	PathFacialRegister     = "/auth/facial/register"
	PathFacialLogin        = "/auth/facial/login"
)

const maxResponseBytes = 16 << 20

// APIError is a non-2xx answer from the analytics API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return apperrors.ErrUpstream
}

// TokenFunc yields the bearer token for authenticated calls, if there is one.
type TokenFunc func(ctx context.Context) (string, bool)

type ClientOption func(*Client)

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

func WithTokenFunc(f TokenFunc) ClientOption {
	return func(c *Client) { c.token = f }
}

func WithClientLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenFunc
	logger     zerolog.Logger
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) TrainKMeans(ctx context.Context, req KMeansTrainRequest) (*KMeansResult, error) {
	var out KMeansResult
	if err := c.post(ctx, PathKMeansFit, req, &out, true, "failed to train the model"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SimpleRegression(ctx context.Context, points []DataPoint, variables []string) (*RegressionResult, error) {
	var out RegressionResult
	body := regressionRequest{DataPoints: points, VariableNames: variables}
	if err := c.post(ctx, PathSimpleRegression, body, &out, true, "failed to process the regression"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MultipleRegression(ctx context.Context, points []DataPoint, variables []string) (*RegressionResult, error) {
	var out RegressionResult
	body := regressionRequest{DataPoints: points, VariableNames: variables}
	if err := c.post(ctx, PathMultipleRegression, body, &out, true, "failed to process the regression"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AnalyzeVideo(ctx context.Context, url string, maxComments int) (*SentimentReport, error) {
	var out SentimentReport
	body := sentimentRequest{URL: url, MaxComments: maxComments}
	if err := c.post(ctx, PathSentiment, body, &out, true, "analysis failed"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterFace(ctx context.Context, req FacialAuthRequest) (*FacialAuthResponse, error) {
	var out FacialAuthResponse
	if err := c.post(ctx, PathFacialRegister, req, &out, false, "failed to register the face"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LoginFace(ctx context.Context, req FacialAuthRequest) (*FacialAuthResponse, error) {
	var out FacialAuthResponse
	if err := c.post(ctx, PathFacialLogin, req, &out, false, "facial verification failed"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health reports whether the analytics API answers {"ok": true}.
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+PathHealth, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("analytics health check failed")
		return false
	}
	defer resp.Body.Close()

	var h healthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&h); err != nil {
		return false
	}
	return h.OK
}

func (c *Client) post(ctx context.Context, path string, body, out any, authenticated bool, fallback string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.clientFor(ctx, authenticated).Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("analytics request failed")
		return apperrors.Wrapf(apperrors.ErrUpstream, "could not reach the analytics service")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrUpstream, "read %s response", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("Error %d: %s", resp.StatusCode, fallback)
		}
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Str("error", apiErr.Message).Msg("analytics API rejected request")
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Wrapf(apperrors.ErrUpstream, "decode %s response", path)
	}
	return nil
}

// clientFor returns an HTTP client that attaches the session token as a bearer token.
func (c *Client) clientFor(ctx context.Context, authenticated bool) *http.Client {
	if !authenticated || c.token == nil {
		return c.httpClient
	}
	token, ok := c.token(ctx)
	if !ok || token == "" {
		return c.httpClient
	}
	base := context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(base, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

// errorMessage pulls the human readable message out of an error body. The analytics
// endpoints use "error", the facial endpoints "message".
func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
