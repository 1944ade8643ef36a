package accounts

import (
	"context"
	"errors"
	"sync"

	"github.com/anonto42/nano-forum/backend/internal/models"
	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/anonto42/nano-forum/backend/internal/security"
)

var (
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrUsernameTaken      = errors.New("a user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
)

// Service owns registration and credential checks.
type Service struct {
	users repositories.UserRepository
}

func NewService(users repositories.UserRepository) *Service {
	return &Service{users: users}
}

// Register creates an account with the given role. Email is checked before
// username so a request clashing on both reports the email.
func (s *Service) Register(ctx context.Context, req models.CreateUserRequest, role models.Role) (*models.User, error) {
	if err := s.checkAvailable(ctx, req.Email, req.Username); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Role:     role,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// Lost a race with a concurrent registration.
			if cerr := s.checkAvailable(ctx, req.Email, req.Username); cerr != nil {
				return nil, cerr
			}
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) checkAvailable(ctx context.Context, email, username string) error {
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	return nil
}

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one scrypt derivation.
var dummyHash = sync.OnceValue(func() string {
	h, _ := security.HashPassword("dummy-password")
	return h
})

// Authenticate returns the user owning email if password matches. Unknown
// email and wrong password both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			security.ComparePassword(password, dummyHash())
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !security.ComparePassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin makes sure an admin account with email exists, creating it or
// promoting the existing account. created reports whether a new row was made.
func (s *Service) EnsureAdmin(ctx context.Context, req models.CreateUserRequest) (user *models.User, created bool, err error) {
	user, err = s.users.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if user.Role == models.RoleAdmin {
			return user, false, nil
		}
		user, err = s.users.UpdateRole(ctx, user.ID, models.RoleAdmin)
		return user, false, err
	case errors.Is(err, repositories.ErrNotFound):
		user, err = s.Register(ctx, req, models.RoleAdmin)
		return user, err == nil, err
	default:
		return nil, false, err
	}
}

// SetRole changes the role of the account registered under email.
func (s *Service) SetRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.users.UpdateRole(ctx, user.ID, role)
}
