package middleware

import (
	"net/http"
	"regexp"

	"github.com/dukerupert/packlist/internal/auth"
)

// UserHeader names the request header that identifies the user. Browsers
// cannot set headers on a WebSocket handshake, so GET requests may pass the
// same value in the "user" query parameter instead.
const UserHeader = "X-Packlist-User"

var validUserID = regexp.MustCompile(`^[A-Za-z0-9_.@-]{1,64}$`)

// RequireUser rejects requests without a valid user id and stores the id in
// the request context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserHeader)
		if userID == "" && r.Method == http.MethodGet {
			userID = r.URL.Query().Get("user")
		}
		if !validUserID.MatchString(userID) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing or invalid user"}`))
			return
		}
		ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
