package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jamesgeorge007/postwoman/internal/server"
)

type subjectKey struct{}

// SubjectFromContext returns the authenticated token subject, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey{}).(string)
	return sub, ok
}

// JWTAuthMiddleware validates HS256 bearer tokens signed with the
// configured secret.
//
// Token validation:
//   - Checks Authorization: Bearer <token> header
//   - Verifies the signature and expiry
//   - Verifies the issuer when one is configured
//
// Usage:
//
//	handler := JWTAuthMiddleware(srv, WorkspacesHandler(srv))
func JWTAuthMiddleware(srv server.Server, next http.Handler) http.Handler {
	secret := []byte(srv.Config.Server.JWTSecret)
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if iss := srv.Config.Server.JWTIssuer; iss != "" {
		opts = append(opts, jwt.WithIssuer(iss))
	}
	parser := jwt.NewParser(opts...)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			srv.Logger.Warn("missing authorization header",
				"path", r.URL.Path,
				"method", r.Method,
			)
			http.Error(w, "Missing authorization header", http.StatusUnauthorized)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			srv.Logger.Warn("invalid authorization header format",
				"path", r.URL.Path,
				"method", r.Method,
			)
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		raw := strings.TrimPrefix(authHeader, "Bearer ")
		if raw == "" {
			http.Error(w, "Empty bearer token", http.StatusUnauthorized)
			return
		}

		var claims jwt.RegisteredClaims
		if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
			return secret, nil
		}); err != nil {
			srv.Logger.Warn("invalid token",
				"error", err,
				"path", r.URL.Path,
				"method", r.Method,
			)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		srv.Logger.Debug("authenticated request",
			"subject", claims.Subject,
			"path", r.URL.Path,
			"method", r.Method,
		)

		ctx := context.WithValue(r.Context(), subjectKey{}, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MintToken creates an HS256 token for subject valid for ttl.
func MintToken(secret, issuer, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive, got: %v", ttl)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
