package usecase

import (
	"context"
	"errors"
	"sync"

	"employee-role-api/internal/delivery/dto"
	"employee-role-api/internal/infrastructure/metrics"
	"employee-role-api/pkg/hash"
	"employee-role-api/pkg/jwt"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest, issuer string) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken, issuer string) (*dto.TokenResponse, error)
}

type authUsecase struct {
	log             *logrus.Logger
	employeeUsecase EmployeeUsecase
	hasher          hash.PasswordHasher
	jwtService      *jwt.JWTService

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthUsecase(
	log *logrus.Logger,
	employeeUsecase EmployeeUsecase,
	hasher hash.PasswordHasher,
	jwtService *jwt.JWTService,
) AuthUsecase {
	return &authUsecase{
		log:             log,
		employeeUsecase: employeeUsecase,
		hasher:          hasher,
		jwtService:      jwtService,
	}
}

// Login verifies the credentials and issues an access/refresh token pair.
// Unknown names and wrong passwords fail identically.
func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest, issuer string) (*dto.TokenResponse, error) {
	employee, err := u.employeeUsecase.GetEmployeeByName(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			// keep the response time of unknown names close to a bcrypt compare
			u.hasher.Verify(req.Password, u.placeholderHash())
			metrics.LoginAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
			return nil, ErrInvalidCredentials
		}
		metrics.LoginAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, err
	}

	if !u.hasher.Verify(req.Password, employee.PasswordHash) {
		u.log.Infof("Authentication failed for employee %s", req.Username)
		metrics.LoginAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	accessToken, err := u.jwtService.GenerateAccessToken(employee.Name, employee.RoleNames(), issuer)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		metrics.LoginAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, err
	}

	refreshToken, err := u.jwtService.GenerateRefreshToken(employee.Name, issuer)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		metrics.LoginAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("login", "success").Inc()
	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken mints a new access token with the employee's current roles.
// The presented refresh token is returned unchanged.
func (u *authUsecase) RefreshToken(ctx context.Context, refreshToken, issuer string) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateTokenOfType(refreshToken, jwt.RefreshToken)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("refresh", "invalid_token").Inc()
		return nil, ErrInvalidToken
	}

	employee, err := u.employeeUsecase.GetEmployeeByName(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			metrics.LoginAttemptsTotal.WithLabelValues("refresh", "invalid_token").Inc()
			return nil, ErrInvalidToken
		}
		metrics.LoginAttemptsTotal.WithLabelValues("refresh", "error").Inc()
		return nil, err
	}

	accessToken, err := u.jwtService.GenerateAccessToken(employee.Name, employee.RoleNames(), issuer)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		metrics.LoginAttemptsTotal.WithLabelValues("refresh", "error").Inc()
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("refresh", "success").Inc()
	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (u *authUsecase) placeholderHash() string {
	u.dummyOnce.Do(func() {
		h, err := u.hasher.Hash("placeholder-password")
		if err != nil {
			u.log.Warnf("Failed to compute placeholder hash: %+v", err)
			return
		}
		u.dummyHash = h
	})
	return u.dummyHash
}
