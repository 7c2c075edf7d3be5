package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	apperrors "github.com/jrsteele09/aquamind/internal/errors"
	"github.com/jrsteele09/aquamind/metrics"
	"github.com/jrsteele09/aquamind/toast"
)

const (
	MinKMeansRows     = 5
	MinKMeansFeatures = 2
	MinClusters       = 2
	MaxClusters       = 10
	MinRegressionRows = 3
)

// Operation names used for metrics labels.
const (
	OpKMeans             = "kmeans"
	OpSimpleRegression   = "regression_simple"
	OpMultipleRegression = "regression_multiple"
	OpSentiment          = "sentiment"
	OpFacialRegister     = "facial_register"
	OpFacialLogin        = "facial_login"
)

// ValidationError is input rejected before any remote call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidRequest
}

// SessionSaver persists the session after a successful facial login.
type SessionSaver interface {
	Save(ctx context.Context, token, subjectID string) error
}

type Option func(*UseCases)

func WithLogger(logger zerolog.Logger) Option {
	return func(u *UseCases) { u.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(u *UseCases) { u.metrics = m }
}

func WithSink(s toast.Sink) Option {
	return func(u *UseCases) { u.sink = s }
}

type UseCases struct {
	client   *Client
	sessions SessionSaver
	sink     toast.Sink
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewUseCases(client *Client, sessions SessionSaver, opts ...Option) *UseCases {
	u := &UseCases{
		client:   client,
		sessions: sessions,
		sink:     toast.Discard,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Notifying returns a copy of u whose toasts go to sink as well as to u's own sink.
func (u *UseCases) Notifying(sink toast.Sink) *UseCases {
	c := *u
	c.sink = toast.Tee{sink, u.sink}
	return &c
}

func (u *UseCases) Health(ctx context.Context) bool {
	return u.client.Health(ctx)
}

func (u *UseCases) TrainKMeans(ctx context.Context, req KMeansTrainRequest) (*KMeansResult, error) {
	switch {
	case len(req.Data) < MinKMeansRows:
		return nil, u.reject(OpKMeans, fmt.Sprintf("at least %d data points are required for clustering", MinKMeansRows))
	case len(req.Features) < MinKMeansFeatures:
		return nil, u.reject(OpKMeans, fmt.Sprintf("at least %d features are required", MinKMeansFeatures))
	case req.NClusters < MinClusters || req.NClusters > MaxClusters:
		return nil, u.reject(OpKMeans, fmt.Sprintf("the number of clusters must be between %d and %d", MinClusters, MaxClusters))
	}

	res, err := u.client.TrainKMeans(ctx, req)
	if err != nil {
		return nil, u.fail(OpKMeans, err)
	}
	u.succeed(OpKMeans, fmt.Sprintf("K-Means trained with %d clusters", res.NClusters))
	return res, nil
}

func (u *UseCases) SimpleRegression(ctx context.Context, points []DataPoint, variables []string) (*RegressionResult, error) {
	switch {
	case len(points) == 0:
		return nil, u.reject(OpSimpleRegression, "no data points were provided for the analysis")
	case len(variables) != 1:
		return nil, u.reject(OpSimpleRegression, "simple linear regression requires exactly one independent variable (X)")
	case len(points) < MinRegressionRows:
		return nil, u.reject(OpSimpleRegression, fmt.Sprintf("at least %d data points are required for the regression", MinRegressionRows))
	}

	res, err := u.client.SimpleRegression(ctx, points, variables)
	if err != nil {
		return nil, u.fail(OpSimpleRegression, err)
	}
	u.succeed(OpSimpleRegression, "simple regression analysis completed successfully")
	return res, nil
}

func (u *UseCases) MultipleRegression(ctx context.Context, points []DataPoint, variables []string) (*RegressionResult, error) {
	switch {
	case len(points) == 0:
		return nil, u.reject(OpMultipleRegression, "no data points were provided for the analysis")
	case len(points) < MinRegressionRows:
		return nil, u.reject(OpMultipleRegression, fmt.Sprintf("at least %d data points are required for the regression", MinRegressionRows))
	}

	res, err := u.client.MultipleRegression(ctx, points, variables)
	if err != nil {
		return nil, u.fail(OpMultipleRegression, err)
	}
	u.succeed(OpMultipleRegression, "multiple regression analysis completed successfully")
	return res, nil
}

// AnalyzeVideo runs sentiment analysis over a video's comments. maxComments below one is
// raised to one.
func (u *UseCases) AnalyzeVideo(ctx context.Context, url string, maxComments int) (*SentimentReport, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, u.reject(OpSentiment, "please enter a valid YouTube URL")
	}
	res, err := u.client.AnalyzeVideo(ctx, url, max(1, maxComments))
	if err != nil {
		return nil, u.fail(OpSentiment, err)
	}
	u.succeed(OpSentiment, "analysis completed successfully")
	return res, nil
}

func (u *UseCases) RegisterFace(ctx context.Context, req FacialAuthRequest) (*FacialAuthResponse, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	switch {
	case req.UserID == "":
		return nil, u.reject(OpFacialRegister, "user id must not be empty")
	case strings.TrimSpace(req.ImageBase64) == "":
		return nil, u.reject(OpFacialRegister, "no face image was captured")
	}

	res, err := u.client.RegisterFace(ctx, req)
	if err != nil {
		return nil, u.fail(OpFacialRegister, err)
	}
	if !res.Success {
		return res, u.declined(OpFacialRegister, res, "facial registration was rejected")
	}
	if err := u.startSession(ctx, res, req.UserID); err != nil {
		return nil, u.fail(OpFacialRegister, err)
	}
	u.succeed(OpFacialRegister, "facial registration completed")
	return res, nil
}

func (u *UseCases) LoginFace(ctx context.Context, req FacialAuthRequest) (*FacialAuthResponse, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if strings.TrimSpace(req.ImageBase64) == "" {
		return nil, u.reject(OpFacialLogin, "no image was captured for verification")
	}

	res, err := u.client.LoginFace(ctx, req)
	if err != nil {
		return nil, u.fail(OpFacialLogin, err)
	}
	if !res.Success {
		return res, u.declined(OpFacialLogin, res, "face not recognised")
	}
	if err := u.startSession(ctx, res, req.UserID); err != nil {
		return nil, u.fail(OpFacialLogin, err)
	}
	u.succeed(OpFacialLogin, "facial authentication successful, welcome")
	return res, nil
}

// startSession saves the token from a successful facial exchange. The subject is the
// returned user id, else the token's sub claim, else the id that was submitted.
func (u *UseCases) startSession(ctx context.Context, res *FacialAuthResponse, submitted string) error {
	if res.Token == "" || u.sessions == nil {
		return nil
	}
	subject := res.UserID
	if subject == "" {
		subject = SubjectFromToken(res.Token)
	}
	if subject == "" {
		subject = submitted
	}
	if subject == "" {
		return apperrors.Wrapf(apperrors.ErrUpstream, "token carries no subject")
	}
	res.UserID = subject
	if err := u.sessions.Save(ctx, res.Token, subject); err != nil {
		return apperrors.Wrapf(err, "could not save the session")
	}
	return nil
}

// SubjectFromToken reads the sub claim without verifying the signature. The analytics
// service is the only party that checks it.
func SubjectFromToken(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

func (u *UseCases) reject(op, message string) error {
	u.metrics.AnalysisRequest(op, "invalid")
	u.sink.Notify(message, toast.Error)
	return &ValidationError{Message: message}
}

func (u *UseCases) declined(op string, res *FacialAuthResponse, fallback string) error {
	msg := res.Message
	if msg == "" {
		msg = fallback
	}
	u.metrics.AnalysisRequest(op, "declined")
	u.sink.Notify(msg, toast.Error)
	return apperrors.Wrapf(apperrors.ErrUnauthorized, "%s", msg)
}

func (u *UseCases) fail(op string, err error) error {
	u.metrics.AnalysisRequest(op, "error")
	u.logger.Error().Err(err).Str("operation", op).Msg("analysis use case failed")
	u.sink.Notify(err.Error(), toast.Error)
	return err
}

func (u *UseCases) succeed(op, message string) {
	u.metrics.AnalysisRequest(op, "ok")
	u.sink.Notify(message, toast.Success)
}
