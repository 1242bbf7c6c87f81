package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"employee-role-api/internal/infrastructure/metrics"
	"employee-role-api/pkg/jwt"
	"employee-role-api/pkg/response"

	"github.com/sirupsen/logrus"
)

// accepted Authorization schemes, compared case-insensitively
var tokenSchemes = []string{"bearer", "employee"}

type AuthMiddleware struct {
	jwtService *jwt.JWTService
	policy     *AccessPolicy
	log        *logrus.Logger
}

func NewAuthMiddleware(jwtService *jwt.JWTService, policy *AccessPolicy, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		policy:     policy,
		log:        log,
	}
}

// Authenticate gates every request. Public paths pass untouched, optional
// paths verify a token only when one is presented, and everything else
// needs a valid access token holding any of the rule's roles.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access := m.policy.Resolve(r.Method, r.URL.Path)
		if access.Public {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if access.Optional {
				next.ServeHTTP(w, r)
				return
			}
			metrics.AccessDeniedTotal.WithLabelValues("missing_token").Inc()
			response.Forbidden(w, "Authorization header is required")
			return
		}

		tokenString, ok := ExtractToken(authHeader)
		if !ok {
			metrics.AccessDeniedTotal.WithLabelValues("invalid_token").Inc()
			response.Forbidden(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateTokenOfType(tokenString, jwt.AccessToken)
		if err != nil {
			m.log.Infof("Rejected token on %s %s: %v", r.Method, r.URL.Path, err)
			metrics.AccessDeniedTotal.WithLabelValues("invalid_token").Inc()
			if errors.Is(err, jwt.ErrWrongTokenType) {
				response.Forbidden(w, "Invalid token type")
				return
			}
			response.Forbidden(w, "Invalid or expired token")
			return
		}

		if !hasAnyRole(claims.Roles, access.Roles) {
			metrics.AccessDeniedTotal.WithLabelValues("insufficient_role").Inc()
			response.Forbidden(w, "You don't have permission to access this resource")
			return
		}

		next.ServeHTTP(w, r.WithContext(jwt.ContextWithClaims(r.Context(), claims)))
	})
}

// ExtractToken returns the token from an "<scheme> <token>" header value.
func ExtractToken(authHeader string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !found {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	for _, accepted := range tokenSchemes {
		if strings.EqualFold(scheme, accepted) {
			return token, true
		}
	}
	return "", false
}

// GetSubjectFromContext extracts the authenticated employee name from context
func GetSubjectFromContext(ctx context.Context) (string, bool) {
	claims, ok := jwt.ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return claims.Subject, true
}

// GetRolesFromContext extracts the role claims from context
func GetRolesFromContext(ctx context.Context) ([]string, bool) {
	claims, ok := jwt.ClaimsFromContext(ctx)
	if !ok {
		return nil, false
	}
	return claims.Roles, true
}
