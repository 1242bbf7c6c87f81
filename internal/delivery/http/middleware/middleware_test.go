package middleware

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"employee-role-api/config"
	"employee-role-api/internal/domain/entity"
	"employee-role-api/pkg/jwt"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessPolicy_Resolve(t *testing.T) {
	policy := NewAccessPolicy()

	tests := []struct {
		method string
		path   string
		want   Access
	}{
		{http.MethodPost, "/api/v1/login", Access{Public: true}},
		{http.MethodGet, "/api/v1/token/refresh", Access{Public: true}},
		{http.MethodGet, "/swagger/index.html", Access{Public: true}},
		{http.MethodGet, "/api/v1/employee/get/3", Access{Optional: true}},
		{http.MethodPost, "/api/v1/employee/save", Access{Roles: []string{entity.RoleManager}}},
		{http.MethodPut, "/api/v1/employee/update/3", Access{Roles: []string{entity.RoleTeamLeader, entity.RoleManager}}},
		{http.MethodDelete, "/api/v1/employee/delete/3", Access{Roles: []string{entity.RoleManager}}},
		{http.MethodGet, "/api/v1/employee/save", Access{}},
		{http.MethodGet, "/api/v1/employees", Access{}},
		{http.MethodGet, "/api/v1/audit-logs/7", Access{Roles: []string{entity.RoleManager}}},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Resolve(tt.method, tt.path))
		})
	}
}

func TestHasAnyRole(t *testing.T) {
	assert.True(t, hasAnyRole(nil, nil))
	assert.True(t, hasAnyRole([]string{entity.RoleEngineer, entity.RoleManager}, []string{entity.RoleManager}))
	assert.False(t, hasAnyRole([]string{entity.RoleEngineer}, []string{entity.RoleManager}))
	assert.False(t, hasAnyRole(nil, []string{entity.RoleManager}))
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Employee abc", "abc", true},
		{"employee abc", "abc", true},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"Bearer ", "", false},
	}

	for _, tt := range tests {
		got, ok := ExtractToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestAuthenticate_PopulatesContext(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	mw := NewAuthMiddleware(jwtService, NewAccessPolicy(), log)

	var subject string
	var roles []string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = GetSubjectFromContext(r.Context())
		roles, _ = GetRolesFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := mw.Authenticate(next)

	token, err := jwtService.GenerateAccessToken("TESTMNG", []string{entity.RoleManager}, "http://test")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/role/save", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TESTMNG", subject)
	assert.Equal(t, []string{entity.RoleManager}, roles)
}

func TestAuthenticate_ShortCircuits(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	mw := NewAuthMiddleware(jwtService, NewAccessPolicy(), log)

	called := false
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	engineer, err := jwtService.GenerateAccessToken("TESTENGG", []string{entity.RoleEngineer}, "http://test")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/employee/delete/1", nil)
	req.Header.Set("Authorization", "Bearer "+engineer)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("error"))
	assert.False(t, called)
}

func TestRateLimitMiddleware_OnlyLimitsLogin(t *testing.T) {
	mw := NewRateLimitMiddleware(1, nil)
	handler := mw.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)
	req.RemoteAddr = "203.0.113.9:4321"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func loginFrom(handler http.Handler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitMiddleware_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	handler := NewRateLimitMiddleware(1, nil).Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	admitted := 0
	for i := 0; i < 50; i++ {
		if loginFrom(handler, "198.51.100.20:5000", fmt.Sprintf("10.0.0.%d", i)) == http.StatusOK {
			admitted++
		}
	}
	assert.Equal(t, 1, admitted)
}

func TestRateLimitMiddleware_TrustedProxy(t *testing.T) {
	handler := NewRateLimitMiddleware(1, []string{"10.1.0.0/16", "192.0.2.50"}).Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// behind the proxy every forwarded client has its own bucket
	assert.Equal(t, http.StatusOK, loginFrom(handler, "10.1.2.3:5000", "203.0.113.1"))
	assert.Equal(t, http.StatusOK, loginFrom(handler, "10.1.2.3:5000", "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(handler, "192.0.2.50:6000", "203.0.113.1"))

	// a spoofed left-most hop does not escape the real client's bucket
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(handler, "10.1.2.3:5000", "1.2.3.4, 203.0.113.2"))
}

func TestRateLimitMiddleware_CapsTrackedClients(t *testing.T) {
	mw := NewRateLimitMiddleware(1, nil)
	mw.maxClients = 3
	handler := mw.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		loginFrom(handler, fmt.Sprintf("198.51.100.%d:5000", i), "")
	}

	mw.mu.Lock()
	defer mw.mu.Unlock()
	assert.Len(t, mw.clients, 3)
	assert.Contains(t, mw.clients, "198.51.100.9")
	assert.NotContains(t, mw.clients, "198.51.100.0")
}

func TestRecovery(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	handler := Recovery(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
