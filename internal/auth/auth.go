package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"rentListings/internal/metrics"
	"rentListings/internal/models"
	"rentListings/internal/storage"
	"rentListings/internal/validation"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("auth: invalid email or password")
	ErrEmailNotConfirmed   = errors.New("auth: email not confirmed")
	ErrUnauthorized        = errors.New("auth: no active session")
	ErrInvalidVerification = errors.New("auth: verification link is invalid or has expired")
)

const (
	defaultTokenTTL        = 48 * time.Hour
	defaultVerificationTTL = 24 * time.Hour
)

type Options struct {
	Secret              []byte
	Issuer              string
	TokenTTL            time.Duration
	VerificationTTL     time.Duration
	RequireConfirmation bool
	// PublicURL is the base used for links sent to users.
	PublicURL string
}

// LinkSender delivers the email verification link to a new user.
type LinkSender interface {
	SendVerification(ctx context.Context, email string, link string) error
}

type logSender struct {
	log *zap.Logger
}

func (s logSender) SendVerification(_ context.Context, email string, link string) error {
	s.log.Info("email verification pending", zap.String("email", email), zap.String("link", link))
	return nil
}

type Service struct {
	db       storage.Database
	sessions storage.SessionStore
	sender   LinkSender
	opts     Options
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewService(db storage.Database, sessions storage.SessionStore, opts Options, m *metrics.Metrics, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.VerificationTTL <= 0 {
		opts.VerificationTTL = defaultVerificationTTL
	}
	opts.PublicURL = strings.TrimRight(opts.PublicURL, "/")

	return &Service{
		db:       db,
		sessions: sessions,
		sender:   logSender{log: log},
		opts:     opts,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) WithSender(sender LinkSender) *Service {
	s.sender = sender
	return s
}

// SignUp registers a user. When confirmation is required a one-time link is
// sent; following it confirms the email and redirects to creds.RedirectTo.
func (s *Service) SignUp(ctx context.Context, creds models.Credentials) (models.User, error) {
	if err := validation.SignUp(creds); err != nil {
		s.metrics.AuthAttempt("signup", false)
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("auth: hash password: %w", err)
	}

	user, err := s.db.CreateUser(ctx, models.User{
		Id:             uuid.NewString(),
		Email:          strings.TrimSpace(creds.Email),
		PasswordHash:   string(hash),
		EmailConfirmed: !s.opts.RequireConfirmation,
	})
	if err != nil {
		s.metrics.AuthAttempt("signup", false)
		return models.User{}, err
	}

	if s.opts.RequireConfirmation {
		if err := s.sendVerification(ctx, user, creds.RedirectTo); err != nil {
			s.metrics.AuthAttempt("signup", false)
			// Without a link the account could never be confirmed, so free the email for a retry.
			if delErr := s.db.DeleteUser(context.WithoutCancel(ctx), user.Id); delErr != nil {
				s.log.Error("failed to remove unverifiable user", zap.String("user_id", user.Id), zap.Error(delErr))
			}
			return models.User{}, err
		}
	}

	s.metrics.AuthAttempt("signup", true)
	s.log.Info("user signed up", zap.String("user_id", user.Id))

	return user, nil
}

func (s *Service) sendVerification(ctx context.Context, user models.User, redirectTo string) error {
	token := uuid.NewString()
	v := models.Verification{UserId: user.Id, RedirectTo: SafeRedirect(redirectTo)}
	if err := s.sessions.SaveVerification(ctx, token, v, s.opts.VerificationTTL); err != nil {
		return fmt.Errorf("auth: save verification: %w", err)
	}

	link := s.opts.PublicURL + "/api/auth/verify?token=" + url.QueryEscape(token)
	if err := s.sender.SendVerification(ctx, user.Email, link); err != nil {
		return fmt.Errorf("auth: send verification: %w", err)
	}
	return nil
}

func (s *Service) SignIn(ctx context.Context, creds models.Credentials) (models.AuthorizationToken, models.Session, error) {
	if err := validation.SignIn(creds); err != nil {
		s.metrics.AuthAttempt("signin", false)
		return models.AuthorizationToken{}, models.Session{}, err
	}

	user, err := s.db.GetUserByEmail(ctx, strings.TrimSpace(creds.Email))
	if err != nil {
		s.metrics.AuthAttempt("signin", false)
		if errors.Is(err, storage.ErrNotFound) {
			return models.AuthorizationToken{}, models.Session{}, ErrInvalidCredentials
		}
		return models.AuthorizationToken{}, models.Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		s.metrics.AuthAttempt("signin", false)
		return models.AuthorizationToken{}, models.Session{}, ErrInvalidCredentials
	}

	if s.opts.RequireConfirmation && !user.EmailConfirmed {
		s.metrics.AuthAttempt("signin", false)
		return models.AuthorizationToken{}, models.Session{}, ErrEmailNotConfirmed
	}

	token, err := s.issue(user)
	if err != nil {
		return models.AuthorizationToken{}, models.Session{}, err
	}

	s.metrics.AuthAttempt("signin", true)
	return token, models.Session{UserId: user.Id, Email: user.Email}, nil
}

func (s *Service) issue(user models.User) (models.AuthorizationToken, error) {
	now := s.now()
	expiresAt := now.Add(s.opts.TokenTTL)

	claims := &models.CustomClaims{
		UserId: user.Id,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Id,
			Issuer:    s.opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
	if err != nil {
		return models.AuthorizationToken{}, fmt.Errorf("auth: sign token: %w", err)
	}

	return models.AuthorizationToken{Token: tokenStr, ExpiresAt: expiresAt.UTC()}, nil
}

func (s *Service) parse(tokenStr string) (*models.CustomClaims, error) {
	claims := &models.CustomClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.opts.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}

	return claims, nil
}

// Authenticate resolves a bearer token into the live session it stands for.
func (s *Service) Authenticate(ctx context.Context, tokenStr string) (models.Session, error) {
	if tokenStr == "" {
		return models.Session{}, ErrUnauthorized
	}

	claims, err := s.parse(tokenStr)
	if err != nil {
		return models.Session{}, err
	}

	revoked, err := s.sessions.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return models.Session{}, fmt.Errorf("auth: check revocation: %w", err)
	}
	if revoked {
		return models.Session{}, ErrUnauthorized
	}

	user, err := s.db.GetUserById(ctx, claims.UserId)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Session{}, ErrUnauthorized
		}
		return models.Session{}, err
	}

	return models.Session{UserId: user.Id, Email: user.Email}, nil
}

// SignOut revokes the token until it would have expired anyway. Signing out
// with an unusable token is a no-op.
func (s *Service) SignOut(ctx context.Context, tokenStr string) error {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.sessions.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("auth: revoke token: %w", err)
	}

	s.log.Info("user signed out", zap.String("user_id", claims.UserId))
	return nil
}

// Verify confirms the email behind a one-time token and returns where the
// user should land next.
func (s *Service) Verify(ctx context.Context, token string) (string, error) {
	v, err := s.sessions.ConsumeVerification(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidVerification
		}
		return "", err
	}

	if err := s.db.ConfirmEmail(ctx, v.UserId); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidVerification
		}
		return "", err
	}

	return SafeRedirect(v.RedirectTo), nil
}

// SafeRedirect keeps only same-site absolute paths.
func SafeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}
