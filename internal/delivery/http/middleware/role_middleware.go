package middleware

import (
	"net/http"
	"strings"

	"employee-role-api/internal/domain/entity"
)

// AccessRule grants a path prefix to callers holding any of Roles. A rule
// with an empty Method applies to every method.
type AccessRule struct {
	Method     string
	PathPrefix string
	Roles      []string
}

// Access is the resolved requirement for a single request. A nil Roles
// means any authenticated caller.
type Access struct {
	Public   bool
	Optional bool
	Roles    []string
}

// AccessPolicy is evaluated top to bottom; the first matching rule wins and
// unmatched requests only need authentication.
type AccessPolicy struct {
	publicPaths   []string
	publicPrefix  []string
	optionalRules []AccessRule
	rules         []AccessRule
}

func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{
		publicPaths: []string{
			"/",
			"/api/v1/health",
			"/api/v1/login",
			"/api/v1/token/refresh",
			"/metrics",
		},
		publicPrefix: []string{
			"/swagger/",
			"/v2/api-docs",
		},
		optionalRules: []AccessRule{
			{Method: http.MethodGet, PathPrefix: "/api/v1/employee/get"},
		},
		rules: []AccessRule{
			{Method: http.MethodPost, PathPrefix: "/api/v1/employee/save", Roles: []string{entity.RoleManager}},
			{Method: http.MethodPost, PathPrefix: "/api/v1/role/save", Roles: []string{entity.RoleManager}},
			{Method: http.MethodPost, PathPrefix: "/api/v1/role/addtoemployee", Roles: []string{entity.RoleManager}},
			{Method: http.MethodDelete, PathPrefix: "/api/v1/employee/delete", Roles: []string{entity.RoleManager}},
			{Method: http.MethodPut, PathPrefix: "/api/v1/employee/update", Roles: []string{entity.RoleTeamLeader, entity.RoleManager}},
			{PathPrefix: "/api/v1/audit-logs", Roles: []string{entity.RoleManager}},
		},
	}
}

func (p *AccessPolicy) Resolve(method, path string) Access {
	for _, public := range p.publicPaths {
		if path == public {
			return Access{Public: true}
		}
	}
	for _, prefix := range p.publicPrefix {
		if strings.HasPrefix(path, prefix) {
			return Access{Public: true}
		}
	}
	for _, rule := range p.optionalRules {
		if rule.matches(method, path) {
			return Access{Optional: true, Roles: rule.Roles}
		}
	}
	for _, rule := range p.rules {
		if rule.matches(method, path) {
			return Access{Roles: rule.Roles}
		}
	}
	return Access{}
}

func (r AccessRule) matches(method, path string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	return strings.HasPrefix(path, r.PathPrefix)
}

// hasAnyRole reports whether held intersects required. An empty required
// set is satisfied by any caller.
func hasAnyRole(held, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		for _, have := range held {
			if have == want {
				return true
			}
		}
	}
	return false
}
