package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/jrsteele09/aquamind/capture"
	"github.com/jrsteele09/aquamind/sessions"
	"github.com/jrsteele09/aquamind/storage"
)

const (
	maxFrameBytes     = 4 << 20
	wsWriteTimeout    = 5 * time.Second
	sessionEventQueue = 16
)

// CameraSocketHandler turns a websocket into the camera feed of one surface. The feed is
// a live capture stream until the client disconnects or the stream is reclaimed.
func (s *Server) CameraSocketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surfaceID := r.URL.Query().Get("surface")
		if surfaceID == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "Missing surface")
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: s.originPatterns(),
		})
		if err != nil {
			s.logger.Error().Err(err).Str("surface", surfaceID).Msg("camera socket accept failed")
			return
		}
		conn.SetReadLimit(maxFrameBytes)

		// Stopping the track ends the feed. The close handshake needs the read loop
		// below, so it runs on its own goroutine.
		track := capture.NewFuncTrack(capture.KindVideo, func() error {
			go func() { _ = conn.Close(websocket.StatusNormalClosure, "camera released") }()
			return nil
		})
		stream := capture.NewMediaStream(track)

		if err := s.storage.Set(r.Context(), storage.KeyCameraPermission, "true"); err != nil {
			s.logger.Warn().Err(err).Msg("could not record camera permission")
		}

		surface := s.board.Mount(surfaceID)
		if prev := surface.Attach(stream); prev != nil {
			for _, t := range prev.Tracks() {
				_ = t.Stop()
			}
			s.registry.Unregister(prev.ID())
		}
		feed := s.feeds.open(surfaceID)
		s.registry.Register(stream)
		s.logger.Debug().Str("surface", surfaceID).Str("stream", stream.ID()).Msg("camera opened")

		defer func() {
			_ = track.Stop()
			s.feeds.close(surfaceID, feed)
			s.registry.Unregister(stream.ID())
			surface.DetachIf(stream)
			if surface.Stream() == nil {
				s.board.Unmount(surfaceID)
			}
			s.logger.Debug().Str("surface", surfaceID).Str("stream", stream.ID()).Msg("camera closed")
		}()

		ctx := r.Context()
		for {
			typ, data, err := conn.Read(ctx)
			if err != nil {
				if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
					s.logger.Debug().Err(err).Str("surface", surfaceID).Msg("camera socket read ended")
				}
				return
			}
			feed.store(typ, data)
		}
	}
}

type sessionEventMessage struct {
	Event  string    `json:"event"`
	UserID string    `json:"user_id,omitempty"`
	At     time.Time `json:"at"`
}

// SessionSocketHandler pushes every session-changed event to the client.
func (s *Server) SessionSocketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: s.originPatterns(),
		})
		if err != nil {
			s.logger.Error().Err(err).Msg("session socket accept failed")
			return
		}
		defer func() { _ = conn.CloseNow() }()

		events := make(chan sessions.Event, sessionEventQueue)
		unsubscribe := s.sessions.Subscribe(func(e sessions.Event) {
			select {
			case events <- e:
			default:
				s.logger.Warn().Str("event", e.Kind.String()).Msg("session socket too slow, event dropped")
			}
		})
		defer unsubscribe()

		ctx := conn.CloseRead(r.Context())
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-events:
				msg := sessionEventMessage{Event: e.Kind.String(), UserID: e.Session.SubjectID, At: e.At}
				if err := writeTimeout(ctx, conn, msg); err != nil {
					s.logger.Debug().Err(err).Msg("session socket write failed")
					return
				}
			}
		}
	}
}

func writeTimeout(ctx context.Context, conn *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, v)
}

// originPatterns admits the configured cross-origin front ends. Same-host origins are
// always accepted.
func (s *Server) originPatterns() []string {
	var patterns []string
	for origin := range s.config.GetAllowedOrigins() {
		if origin == "*" {
			return []string{"*"}
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}
