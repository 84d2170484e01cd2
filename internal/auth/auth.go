// Package auth handles account signup, password login and bearer tokens.
// Accounts live in Postgres; issued tokens live in Redis until they expire.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/muhammadolammi/facultyhire/internal/apperrors"
	"github.com/muhammadolammi/facultyhire/internal/database"
	"github.com/muhammadolammi/facultyhire/internal/logger"
)

const (
	RoleEmployee     = "employee"
	RoleOrganization = "organization"

	tokenPrefix       = "auth:token:"
	minPasswordLength = 6
)

// UserStore is the subset of database.Queries used for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
}

// Principal is the identity behind a bearer token.
type Principal struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}

type Service struct {
	users       UserStore
	tokens      *redis.Client
	ttl         time.Duration
	adminEmails map[string]struct{}
	log         logger.Logger
}

func NewService(users UserStore, tokens *redis.Client, ttl time.Duration, adminEmails []string, log logger.Logger) *Service {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[normalizeEmail(e)] = struct{}{}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		users:       users,
		tokens:      tokens,
		ttl:         ttl,
		adminEmails: admins,
		log:         log.With(map[string]interface{}{"component": "auth"}),
	}
}

// Signup creates an account. An empty role defaults to employee. The
// organization role grants admin access, so it is only accepted for emails
// listed in the configured admin emails.
func (s *Service) Signup(ctx context.Context, name, email, password, role string) (database.User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return database.User{}, apperrors.New(apperrors.CodeInvalidInput, "a valid email is required")
	}
	if len(password) < minPasswordLength {
		return database.User{}, apperrors.New(apperrors.CodeInvalidInput,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case "":
		role = RoleEmployee
	case RoleEmployee:
	case RoleOrganization:
		if _, ok := s.adminEmails[email]; !ok {
			s.log.Warn("organization signup refused", map[string]interface{}{"email": email})
			return database.User{}, apperrors.New(apperrors.CodeForbidden, "organization accounts are provisioned by an administrator")
		}
	default:
		return database.User{}, apperrors.New(apperrors.CodeInvalidInput, "role must be employee or organization")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return database.User{}, apperrors.Wrap(apperrors.CodeInternal, "could not hash password", err)
	}

	user, err := s.users.CreateUser(ctx, database.CreateUserParams{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if database.IsUniqueViolation(err) {
		return database.User{}, apperrors.New(apperrors.CodeConflict, "email already registered")
	}
	if err != nil {
		return database.User{}, apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not create user", err)
	}
	s.log.Info("user signed up", map[string]interface{}{"email": email, "role": role})
	return user, nil
}

// Login checks credentials and issues a token valid for the configured TTL.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetUserByEmail(ctx, email)
	if database.IsNotFound(err) {
		return "", apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeDatabaseFailed, "could not load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
	}

	p := Principal{Email: user.Email, Name: user.Name, Role: user.Role}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "could not encode session", err)
	}
	token := uuid.NewString()
	if err := s.tokens.Set(ctx, tokenPrefix+token, raw, s.ttl).Err(); err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "could not store session", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to its principal.
func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "missing token")
	}
	raw, err := s.tokens.Get(ctx, tokenPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid or expired token")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "could not read session", err)
	}
	var p Principal
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnauthorized, "corrupt session", err)
	}
	p.IsAdmin = s.isAdmin(p)
	return &p, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Del(ctx, tokenPrefix+strings.TrimSpace(token)).Err()
}

func (s *Service) isAdmin(p Principal) bool {
	if p.Role == RoleOrganization {
		return true
	}
	_, ok := s.adminEmails[normalizeEmail(p.Email)]
	return ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
