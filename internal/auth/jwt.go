package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"songshare/internal/web"
)

type ctxUserIDKey struct{}

func (s *Server) issueToken(user User) (AuthTokens, error) {
	now := time.Now()

	claims := &TokenClaims{
		UserID:    user.ID,
		Username:  user.Username,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{AccessToken: signed}, nil
}

// Middleware resolves the current user id from a Bearer token and stores it
// in the request context. Every protected route goes through it; there is no
// ambient session state anywhere else.
func (s *Server) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			web.WriteError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			web.WriteError(w, http.StatusUnauthorized, "invalid Authorization header")
			return
		}

		claims := &TokenClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
			return s.jwtSecret, nil
		})
		if err != nil || !token.Valid || claims.TokenType != "access" || claims.UserID <= 0 {
			web.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), claims.UserID)))
	})
}

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxUserIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user id set by Middleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxUserIDKey{}).(int64)
	return id, ok && id > 0
}
