package service

import (
	"context"
	"errors"
	"fmt"

	"taskmanager/internal/auth"
	dom "taskmanager/internal/domain"
	"taskmanager/internal/repo"
	"taskmanager/internal/utils"
	"taskmanager/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
)

// Registration is the input of Register.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Name     string `json:"name" validate:"max=32"`
}

// UserService handles registration, login and token authentication.
type UserService struct {
	repo     repo.UserRepo
	tokens   *auth.Tokens
	validate *validator.Validate

	// dummyHash is compared against when the email is unknown so that a
	// missing account costs the same bcrypt work as a wrong password.
	dummyHash string
}

// NewUserService returns a new UserService.
func NewUserService(repo repo.UserRepo, tokens *auth.Tokens) (*UserService, error) {
	dummy, err := auth.HashPassword("dummy-Passw0rd")
	if err != nil {
		return nil, fmt.Errorf("init dummy hash: %w", err)
	}
	return &UserService{
		repo:      repo,
		tokens:    tokens,
		validate:  validation.New(),
		dummyHash: dummy,
	}, nil
}

// Register validates the input, hashes the password and stores the user.
// A duplicate email is detected from the store's unique constraint.
func (s *UserService) Register(ctx context.Context, in Registration) (dom.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return dom.User{}, validation.FromError(err)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return dom.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.repo.Create(ctx, in.Email, in.Name, hash)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, dom.ErrDuplicateEmail
		}
		return dom.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks the credentials and issues an access token. Unknown email and
// wrong password both return dom.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", dom.ErrUnauthorized
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			auth.CheckPassword(s.dummyHash, password)
			return "", dom.ErrUnauthorized
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", dom.ErrUnauthorized
	}
	return s.tokens.Issue(u)
}

// Authenticate verifies a bearer token without touching the store.
func (s *UserService) Authenticate(token string) (dom.Identity, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return dom.Identity{}, dom.ErrUnauthorized
	}
	return id, nil
}
