package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/stockcentral/internal/models"
	"github.com/GTDGit/stockcentral/internal/utils"
)

// AdminUserStore is the admin user persistence used by AdminAuthService.
type AdminUserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) error
	TouchLastLogin(ctx context.Context, id int) error
}

type AdminAuthService struct {
	adminRepo AdminUserStore
	jwtSecret string
	jwtTTL    time.Duration
}

func NewAdminAuthService(adminRepo AdminUserStore, jwtSecret string, jwtTTL time.Duration) *AdminAuthService {
	return &AdminAuthService{adminRepo: adminRepo, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

// Login verifies credentials and returns a signed access token.
func (s *AdminAuthService) Login(ctx context.Context, email, password string) (string, *models.AdminUser, error) {
	user, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("login for unknown admin")
		return "", nil, utils.ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("account is inactive")
		return "", nil, utils.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("password verification failed")
		return "", nil, utils.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(s.jwtSecret, s.jwtTTL, user.ID, user.Email, user.Capabilities)
	if err != nil {
		return "", nil, err
	}

	if err := s.adminRepo.TouchLastLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Int("user_id", user.ID).Msg("failed to record last login")
	}
	log.Info().Int("user_id", user.ID).Msg("login successful")

	return token, user, nil
}

// Authenticate validates an access token.
func (s *AdminAuthService) Authenticate(token string) (*utils.Claims, error) {
	return utils.ValidateJWT(s.jwtSecret, token)
}

// CreateAdmin stores a new active admin with the given capabilities.
func (s *AdminAuthService) CreateAdmin(ctx context.Context, email, password, name string, capabilities []string) (*models.AdminUser, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		Capabilities: capabilities,
		IsActive:     true,
	}
	if err := s.adminRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
