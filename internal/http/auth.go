package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"dochub/internal/contextutil"
)

// Claims are the bearer token claims. ID is the user id.
type Claims struct {
	ID string `json:"id"`
	jwtlib.RegisteredClaims
}

// GenerateToken signs an HS256 token for userID that expires after ttl.
func GenerateToken(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ID: userID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies an HS256 token and returns its user id.
func ParseToken(tokenString string, secret []byte) (string, error) {
	token, err := jwtlib.ParseWithClaims(tokenString, &Claims{}, func(token *jwtlib.Token) (any, error) {
		if token.Method.Alg() != jwtlib.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.ID == "" {
		return "", errors.New("token has no user id")
	}
	return claims.ID, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the user id in the
// request context.
func RequireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := contextutil.LoggerFromContext(ctx)

			header := r.Header.Get("Authorization")
			if header == "" {
				writeUnauthorized(w, "Access token required")
				return
			}
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeUnauthorized(w, "Access token required")
				return
			}

			userID, err := ParseToken(strings.TrimSpace(token), secret)
			if err != nil {
				logger.WarnContext(ctx, "rejected bearer token", "error", err)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = contextutil.WithUserID(ctx, userID)
			ctx = contextutil.WithLogger(ctx, logger.With("user_id", userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
