package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-filevault/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-filevault/internal/domain/repository"
	"github.com/oksasatya/go-ddd-filevault/pkg/helpers"
	"github.com/oksasatya/go-ddd-filevault/pkg/validation"
)

// TokenIssuer mints identity tokens.
type TokenIssuer interface {
	Issue(userID, email, role string) (string, time.Time, error)
}

// UserService is the account directory: registration and credential login.
type UserService struct {
	Repo   repo.UserRepository
	Tokens TokenIssuer
	Logger *logrus.Logger

	now func() time.Time
}

func NewUserService(repo repo.UserRepository, tokens TokenIssuer, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, Tokens: tokens, Logger: logger, now: time.Now}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"min=2"`
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"pwd"`
	Role     string `json:"role" validate:"role"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"pwd"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and issues a token for it.
// The email uniqueness pre-check is a fast path; the unique index decides races.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)

	if err := validation.Struct(in); err != nil {
		return nil, BadRequest(validation.Message(err))
	}

	existing, err := s.Repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, BadRequest(MsgEmailTaken)
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		helpers.LogError(s.Logger, "find user by email failed", err, logrus.Fields{"op": "register"})
		return nil, internalf("find user", err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, helpers.ErrPasswordEmpty) || errors.Is(err, helpers.ErrPasswordTooLong) {
			return nil, BadRequest(err.Error())
		}
		helpers.LogError(s.Logger, "hash password failed", err, nil)
		return nil, internalf("hash password", err)
	}

	u := &entity.User{
		Name:         in.Name,
		Email:        in.Email,
		Role:         entity.Role(in.Role),
		PasswordHash: hash,
		CreatedAt:    s.clock().UTC(),
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, BadRequest(MsgEmailTaken)
		}
		helpers.LogError(s.Logger, "insert user failed", err, logrus.Fields{"op": "register"})
		return nil, internalf("insert user", err)
	}

	return s.issue(u)
}

// Login verifies credentials. Unknown email, missing credential and wrong password
// are indistinguishable to the caller in both message and timing.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, BadRequest(validation.Message(err))
	}

	u, err := s.Repo.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		helpers.LogError(s.Logger, "find user by email failed", err, logrus.Fields{"op": "login"})
		return nil, internalf("find user", err)
	}
	if err != nil || !u.HasCredential() {
		burnCompare(in.Password)
		return nil, Unauthorized(MsgInvalidCredentials)
	}

	ok, err := helpers.CompareHashAndPassword(u.PasswordHash, in.Password)
	if err != nil {
		helpers.LogError(s.Logger, "stored password hash is malformed", err, logrus.Fields{"user_id": u.ID})
		return nil, Unauthorized(MsgInvalidCredentials)
	}
	if !ok {
		return nil, Unauthorized(MsgInvalidCredentials)
	}

	return s.issue(u)
}

func (s *UserService) issue(u *entity.User) (*AuthResult, error) {
	tok, exp, err := s.Tokens.Issue(u.ID, u.Email, string(u.Role))
	if err != nil {
		helpers.LogError(s.Logger, "sign token failed", err, logrus.Fields{"user_id": u.ID})
		return nil, internalf("sign token", err)
	}
	return &AuthResult{User: u, Token: tok, ExpiresAt: exp}, nil
}

func (s *UserService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// burnCompare spends the same bcrypt work a real comparison would.
func burnCompare(plain string) {
	dummyOnce.Do(func() {
		dummyHash, _ = helpers.HashPassword("timing-equalizer")
	})
	_, _ = helpers.CompareHashAndPassword(dummyHash, plain)
}
