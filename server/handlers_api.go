package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/aquamind/analysis"
	apperrors "github.com/jrsteele09/aquamind/internal/errors"
	"github.com/jrsteele09/aquamind/toast"
)

type navigateRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type navigateResponse struct {
	Action     string `json:"action"`
	Target     string `json:"target,omitempty"`
	FullReload bool   `json:"full_reload"`
}

// NavigateHandler lets a client-side router ask the guard before it changes view.
func (s *Server) NavigateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req navigateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Body must be JSON {from, to}")
			return
		}
		if strings.TrimSpace(req.To) == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "Missing destination")
			return
		}

		action := s.guard.Navigate(r.Context(), req.From, req.To)
		writeJSON(w, http.StatusOK, navigateResponse{
			Action:     action.Kind.String(),
			Target:     action.Target,
			FullReload: action.FullReload,
		})
	}
}

type sessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	UserID        string     `json:"user_id,omitempty"`
	IssuedAt      *time.Time `json:"issued_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// SessionHandler describes the current session. The token never leaves the service.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.sessions.Resolve(r.Context())
		if !ok {
			writeJSON(w, http.StatusOK, sessionResponse{})
			return
		}
		issued := session.IssuedAt
		expires := session.ExpiresAt(s.sessions.MaxAge())
		writeJSON(w, http.StatusOK, sessionResponse{
			Authenticated: true,
			UserID:        session.SubjectID,
			IssuedAt:      &issued,
			ExpiresAt:     &expires,
		})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		writeJSON(w, http.StatusOK, map[string]bool{
			"ok":        true,
			"analytics": s.analysis.Health(ctx),
		})
	}
}

// LogoutHandler releases the camera, clears the session and sends the client to login.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.sessions.Logout(r.Context()); err != nil {
			s.logger.Error().Err(err).Msg("logout failed")
			writeError(w, http.StatusInternalServerError, "server_error", "Could not end the session")
			return
		}
		login := s.config.GetLoginRoute()
		if isHTMX(r) {
			w.Header().Set(headerHXRedirect, login)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Redirect(w, r, login, http.StatusSeeOther)
	}
}

type facialRequest struct {
	UserID      string `json:"user_id"`
	ImageBase64 string `json:"image_base64"`
	Surface     string `json:"surface,omitempty"`
}

type facialResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	UserID  string `json:"user_id,omitempty"`
}

func (s *Server) FacialLoginHandler() http.HandlerFunc {
	return s.facialHandler(func(ctx context.Context, uc *analysis.UseCases, req analysis.FacialAuthRequest) (*analysis.FacialAuthResponse, error) {
		return uc.LoginFace(ctx, req)
	})
}

func (s *Server) FacialRegisterHandler() http.HandlerFunc {
	return s.facialHandler(func(ctx context.Context, uc *analysis.UseCases, req analysis.FacialAuthRequest) (*analysis.FacialAuthResponse, error) {
		return uc.RegisterFace(ctx, req)
	})
}

type facialCall func(context.Context, *analysis.UseCases, analysis.FacialAuthRequest) (*analysis.FacialAuthResponse, error)

func (s *Server) facialHandler(call facialCall) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req facialRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Body must be JSON {user_id, image_base64, surface}")
			return
		}
		image := req.ImageBase64
		if image == "" && req.Surface != "" {
			image, _ = s.feeds.latest(req.Surface)
		}

		rec := &toast.Recorder{}
		res, err := call(r.Context(), s.analysis.Notifying(rec), analysis.FacialAuthRequest{
			UserID:      req.UserID,
			ImageBase64: image,
		})
		writeToasts(w, rec)
		if err != nil {
			s.writeUseCaseError(w, r, err)
			return
		}

		if isHTMX(r) && res.Token != "" {
			w.Header().Set(headerHXRedirect, s.config.GetLandingRoute())
		}
		writeJSON(w, http.StatusOK, facialResponse{Success: res.Success, Message: res.Message, UserID: res.UserID})
	}
}

func (s *Server) KMeansHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analysis.KMeansTrainRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Body must be JSON {data, features, n_clusters}")
			return
		}
		rec := &toast.Recorder{}
		res, err := s.analysis.Notifying(rec).TrainKMeans(r.Context(), req)
		s.writeUseCaseResult(w, r, rec, res, err)
	}
}

type regressionPayload struct {
	DataPoints    []analysis.DataPoint `json:"data_points"`
	VariableNames []string             `json:"variable_names"`
}

func (s *Server) SimpleRegressionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req regressionPayload
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Body must be JSON {data_points, variable_names}")
			return
		}
		rec := &toast.Recorder{}
		res, err := s.analysis.Notifying(rec).SimpleRegression(r.Context(), req.DataPoints, req.VariableNames)
		s.writeUseCaseResult(w, r, rec, res, err)
	}
}

func (s *Server) MultipleRegressionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req regressionPayload
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Body must be JSON {data_points, variable_names}")
			return
		}
		rec := &toast.Recorder{}
		res, err := s.analysis.Notifying(rec).MultipleRegression(r.Context(), req.DataPoints, req.VariableNames)
		s.writeUseCaseResult(w, r, rec, res, err)
	}
}

type sentimentPayload struct {
	URL         string `json:"url"`
	MaxComments int    `json:"max_comments"`
}

func (s *Server) SentimentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sentimentPayload
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Body must be JSON {url, max_comments}")
			return
		}
		rec := &toast.Recorder{}
		res, err := s.analysis.Notifying(rec).AnalyzeVideo(r.Context(), req.URL, req.MaxComments)
		s.writeUseCaseResult(w, r, rec, res, err)
	}
}

func (s *Server) writeUseCaseResult(w http.ResponseWriter, r *http.Request, rec *toast.Recorder, result any, err error) {
	writeToasts(w, rec)
	if err != nil {
		s.writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeUseCaseError maps use case failures onto HTTP statuses.
func (s *Server) writeUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *analysis.APIError
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case apperrors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		writeError(w, apiErr.Status, "upstream_rejected", apiErr.Message)
	case apperrors.Is(err, apperrors.ErrUpstream):
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
	default:
		session, _ := sessionFromContext(r.Context())
		s.logger.Error().Err(err).Str("path", r.URL.Path).Str("user_id", session.SubjectID).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "server_error", "Internal error")
	}
}
