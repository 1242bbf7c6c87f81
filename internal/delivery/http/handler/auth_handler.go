package handler

import (
	"errors"
	"net/http"

	"employee-role-api/internal/delivery/dto"
	"employee-role-api/internal/delivery/http/middleware"
	"employee-role-api/internal/usecase"
	"employee-role-api/pkg/response"
	"employee-role-api/pkg/validator"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
	}
}

// Login handles POST /api/v1/login with a form-encoded username and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "Invalid form body")
		return
	}

	req := dto.LoginRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	tokens, err := h.authUsecase.Login(r.Context(), &req, requestURL(r))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			response.Unauthorized(w, "Invalid username or password")
		default:
			response.InternalServerError(w, "Failed to login")
		}
		return
	}

	response.OK(w, tokens)
}

// RefreshToken handles GET /api/v1/token/refresh. The refresh token travels
// in the Authorization header.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		response.Forbidden(w, "Refresh token is missing")
		return
	}

	refreshToken, ok := middleware.ExtractToken(authHeader)
	if !ok {
		response.Forbidden(w, "Invalid authorization header format")
		return
	}

	tokens, err := h.authUsecase.RefreshToken(r.Context(), refreshToken, requestURL(r))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidToken):
			response.Forbidden(w, "Invalid or expired refresh token")
		default:
			response.InternalServerError(w, "Failed to refresh token")
		}
		return
	}

	response.OK(w, tokens)
}

// requestURL rebuilds the absolute URL of the request for the issuer claim.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host + r.URL.Path
}
