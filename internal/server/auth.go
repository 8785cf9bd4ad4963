package server

import (
	"errors"
	"net/http"
)

const hostCookieName = "host_session"

var errNoHostSession = errors.New("no valid host session")

// hostSessionID reads the host_session cookie and checks it against
// the session table.
func hostSessionID(r *http.Request, store Store) (string, error) {
	cookie, err := r.Cookie(hostCookieName)
	if err != nil || cookie.Value == "" {
		return "", errNoHostSession
	}
	ok, err := store.HostSessionExists(r.Context(), cookie.Value)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errNoHostSession
	}
	return cookie.Value, nil
}

func hostAuthMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := hostSessionID(r, store); err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
