package http

import (
	"net/http"

	"employee-role-api/internal/delivery/http/handler"
	"employee-role-api/internal/delivery/http/middleware"
	"employee-role-api/pkg/response"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Router struct {
	router              *mux.Router
	log                 *logrus.Logger
	authHandler         *handler.AuthHandler
	employeeHandler     *handler.EmployeeHandler
	roleHandler         *handler.RoleHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
}

func NewRouter(
	log *logrus.Logger,
	authHandler *handler.AuthHandler,
	employeeHandler *handler.EmployeeHandler,
	roleHandler *handler.RoleHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		log:                 log,
		authHandler:         authHandler,
		employeeHandler:     employeeHandler,
		roleHandler:         roleHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

// Setup registers the routes and returns the full handler chain. The
// security gate wraps the router instead of being attached with Use, so
// that unmatched paths are authenticated too.
func (r *Router) Setup() http.Handler {
	r.router.HandleFunc("/", r.healthCheck).Methods(http.MethodGet)
	r.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	api.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/token/refresh", r.authHandler.RefreshToken).Methods(http.MethodGet)

	// Employee routes
	api.HandleFunc("/employees", r.employeeHandler.ListEmployees).Methods(http.MethodGet)
	api.HandleFunc("/employee/get/{id}", r.employeeHandler.GetEmployee).Methods(http.MethodGet)
	api.HandleFunc("/employee/save", r.employeeHandler.CreateEmployee).Methods(http.MethodPost)
	api.HandleFunc("/employee/update/{id}", r.employeeHandler.UpdateEmployee).Methods(http.MethodPut)
	api.HandleFunc("/employee/delete/{id}", r.employeeHandler.DeleteEmployee).Methods(http.MethodDelete)

	// Role routes
	api.HandleFunc("/role/save", r.roleHandler.CreateRole).Methods(http.MethodPost)
	api.HandleFunc("/role/addtoemployee", r.roleHandler.AddRoleToEmployee).Methods(http.MethodPost)

	// Audit routes
	api.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	api.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	r.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "")
	})
	r.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	// outermost first
	chain := []func(http.Handler) http.Handler{
		middleware.Recovery(r.log),
		middleware.NewLoggingMiddleware(r.log, r.router).Handle,
		r.corsMiddleware.Handle,
		r.rateLimitMiddleware.Handle,
		r.authMiddleware.Authenticate,
	}

	var h http.Handler = r.router
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}
