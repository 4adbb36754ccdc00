package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"roombooking/internal/domain"
)

// Service contains all business logic for authentication
type Service struct {
	users UserRepositoryInterface
	jwt   tokenIssuer
	log   logrus.FieldLogger
	ttl   int64
}

func NewService(users UserRepositoryInterface, jwt tokenIssuer, tokenTTLSeconds int64, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{users: users, jwt: jwt, ttl: tokenTTLSeconds, log: log.WithField("module", "auth")}
}

// Register creates a customer account. Staff and admin accounts come from seed data.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := normalizeEmail(req.Email)
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         domain.RoleCustomer,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// гонка двух регистраций с одним адресом
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("customer registered")
	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.WithField("user_id", user.ID).Warn("failed login attempt")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{User: user, AccessToken: token, ExpiresIn: s.ttl}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	if userID == 0 {
		return nil, ErrInvalidCredentials
	}
	return s.users.GetByID(ctx, userID)
}
