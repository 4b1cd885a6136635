package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/catatan/catatan/internal/models"
	"github.com/catatan/catatan/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost for stored passwords.
const HashCost = 10

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
	now  func() time.Time
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r, now: func() time.Time { return time.Now().UTC() }}
}

// Register creates an account. Name, email and password are all required.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("name, email and password are required: %w", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("malformed email: %w", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		// bcrypt rejects passwords over 72 bytes
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}
	now := s.now()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Infof("user registered id=%s", u.ID)
	return u, nil
}

// Login checks credentials. Unknown email and wrong password both yield
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}
