package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"quizfund/internal/service"
)

type contextKey string

const (
	hostIDKey   contextKey = "hostId"
	playerIDKey contextKey = "playerId"
	roomIDKey   contextKey = "roomId"
)

// AuthMiddleware guards routes behind the host and player token
// schemes. Tokens arrive either as a bearer Authorization header or as
// a "token" query parameter; the query form exists for clients that
// cannot set headers, such as browser WebSocket upgrades, and both
// guards accept it.
type AuthMiddleware struct {
	authSvc *service.AuthService
}

func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireHost admits only requests carrying a valid host token and
// stores the host id on the request context.
func (m *AuthMiddleware) RequireHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := tokenFromRequest(r)
		if !ok {
			denyUnauthorized(w, "missing credentials")
			return
		}
		claims, err := m.authSvc.ValidateHostToken(token)
		if err != nil {
			denyUnauthorized(w, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), hostIDKey, claims.HostID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePlayer admits only requests carrying a valid player token and
// stores the player id and the token's room id on the request context.
// Handlers compare the room id against the path to stop a token minted
// for one room being replayed against another.
func (m *AuthMiddleware) RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := tokenFromRequest(r)
		if !ok {
			denyUnauthorized(w, "missing credentials")
			return
		}
		claims, err := m.authSvc.ValidatePlayerToken(token)
		if err != nil {
			denyUnauthorized(w, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), playerIDKey, claims.PlayerID)
		ctx = context.WithValue(ctx, roomIDKey, claims.RoomID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetHostID returns the authenticated host id, or "" outside a
// RequireHost route.
func GetHostID(ctx context.Context) string {
	return stringFromContext(ctx, hostIDKey)
}

// GetPlayerID returns the authenticated player id, or "" outside a
// RequirePlayer route.
func GetPlayerID(ctx context.Context) string {
	return stringFromContext(ctx, playerIDKey)
}

// GetRoomID returns the room id bound into the player token, or "".
func GetRoomID(ctx context.Context) string {
	return stringFromContext(ctx, roomIDKey)
}

func stringFromContext(ctx context.Context, key contextKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// tokenFromRequest prefers the Authorization header; a present but
// malformed header is not given the query fallback, so a mangled
// bearer value fails loudly instead of silently authenticating with a
// stale query token.
func tokenFromRequest(r *http.Request) (string, bool) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, found := strings.Cut(auth, " ")
		if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
			return "", false
		}
		return token, true
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}

func denyUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
