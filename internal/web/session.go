package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/sweeper/internal/core"
	"github.com/JonMunkholm/sweeper/internal/logging"
)

type sessionKey struct{}

// sessionScope is the caller's session, filled in lazily.
type sessionScope struct {
	id string
	ws *core.Workspace
}

// withSession attaches the caller's session to the request context when the
// cookie names a live one. Sessions are only started by routes that store
// data, see ensureWorkspace.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := &sessionScope{}
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			if ws, ok := s.service.Sessions().Get(c.Value); ok {
				scope.id, scope.ws = c.Value, ws
			}
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, scope)
		if scope.id != "" {
			ctx = logging.WithSessionID(ctx, scope.id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

var errNoWorkspace = errors.New("no workspace in request context")

// workspaceFrom returns the caller's workspace. A caller without a session
// gets an empty workspace that is never stored.
func workspaceFrom(ctx context.Context) (*core.Workspace, error) {
	scope, ok := ctx.Value(sessionKey{}).(*sessionScope)
	if !ok {
		return nil, errNoWorkspace
	}
	if scope.ws == nil {
		return core.NewWorkspace(), nil
	}
	return scope.ws, nil
}

// ensureWorkspace returns the caller's workspace, starting a session and
// setting its cookie when there is none. The returned request carries the
// session ID for logging.
func (s *Server) ensureWorkspace(w http.ResponseWriter, r *http.Request) (*http.Request, *core.Workspace, error) {
	scope, ok := r.Context().Value(sessionKey{}).(*sessionScope)
	if !ok {
		return r, nil, errNoWorkspace
	}
	if scope.ws != nil {
		return r, scope.ws, nil
	}

	id, ws, err := s.service.NewSession()
	if err != nil {
		return r, nil, err
	}
	scope.id, scope.ws = id, ws
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.cfg.Session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Session.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return r.WithContext(logging.WithSessionID(r.Context(), id)), ws, nil
}
