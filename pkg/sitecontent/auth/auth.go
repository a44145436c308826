// Package auth manages admin accounts and the bearer tokens that guard the
// write side of the API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/validation"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// ClaimAdminID is the token claim carrying the admin's ID.
const ClaimAdminID = "id"

// RegisterRequest carries a new admin account
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is an authenticated admin plus its bearer token
type Session struct {
	Admin *sitecontent.Admin
	Token string
}

// Service registers admins, checks credentials and issues tokens
type Service struct {
	repo   sitecontent.AdminRepository
	tokens *jwtauth.JWTAuth
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithTokenTTL overrides DefaultTokenTTL
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithBcryptCost overrides bcrypt.DefaultCost
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

// WithClock overrides the time source used for account timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates an auth service signing HS256 tokens with secret
func New(repo sitecontent.AdminRepository, secret string, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("admin repository is required")
	}
	if secret == "" {
		return nil, errors.New("token secret is required")
	}

	s := &Service{
		repo:   repo,
		tokens: jwtauth.New("HS256", []byte(secret), nil),
		ttl:    DefaultTokenTTL,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Tokens returns the JWT signer/verifier used by the HTTP middleware
func (s *Service) Tokens() *jwtauth.JWTAuth {
	return s.tokens
}

// Register creates an admin account and signs it in
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validation.Struct(req); err != nil {
		return nil, toValidationError(err)
	}

	exists, err := s.repo.AdminExists(ctx, req.Email, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return nil, sitecontent.ErrDuplicateAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	admin := &sitecontent.Admin{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         sitecontent.DefaultAdminRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}

	slog.Info("Admin registered", "admin_id", admin.ID, "username", admin.Username)
	return s.session(admin)
}

// Login checks credentials and issues a token
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, sitecontent.NewValidationError("email", "Please provide email and password")
	}

	admin, err := s.repo.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sitecontent.ErrAdminNotFound) {
			return nil, sitecontent.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		slog.Warn("Failed login attempt", "email", email)
		return nil, sitecontent.ErrInvalidCredentials
	}

	return s.session(admin)
}

// Profile returns the admin with the given ID
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*sitecontent.Admin, error) {
	return s.repo.GetAdmin(ctx, id)
}

// IssueToken signs a token for admin
func (s *Service) IssueToken(admin *sitecontent.Admin) (string, error) {
	claims := map[string]interface{}{
		ClaimAdminID: admin.ID.String(),
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, s.ttl)

	_, token, err := s.tokens.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *Service) session(admin *sitecontent.Admin) (*Session, error) {
	token, err := s.IssueToken(admin)
	if err != nil {
		return nil, err
	}
	return &Session{Admin: admin, Token: token}, nil
}

// AdminIDFromContext returns the admin ID carried by a verified token
func AdminIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return uuid.Nil, false
	}
	raw, ok := claims[ClaimAdminID].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func toValidationError(err error) error {
	var list validation.Errors
	if errors.As(err, &list) && len(list) > 0 {
		return &sitecontent.ValidationError{Field: list[0].Field, Message: list[0].Message}
	}
	return &sitecontent.ValidationError{Message: err.Error()}
}
