package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"churrasco/internal/domain"
	"churrasco/internal/pkg/dberr"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service contains the account and session logic.
type Service struct {
	users    UserRepository
	tokens   TokenRepository
	jwt      TokenIssuer
	mailer   Mailer
	log      *zap.Logger
	resetTTL time.Duration
	resetURL string
	now      func() time.Time
}

func NewService(
	users UserRepository,
	tokens TokenRepository,
	jwt TokenIssuer,
	mailer Mailer,
	resetTTL time.Duration,
	publicBaseURL string,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		jwt:      jwt,
		mailer:   mailer,
		log:      log,
		resetTTL: resetTTL,
		resetURL: strings.TrimRight(publicBaseURL, "/") + "/reset-password",
		now:      time.Now,
	}
}

func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*SessionResult, error) {
	role := domain.UserRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	email := normalizeEmail(req.Email)
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.log.Info("user signed up", zap.Int64("user_id", user.ID), zap.String("role", string(role)))
	return s.session(user)
}

// SignIn never tells a missing account apart from a wrong password.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*SessionResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

// SignOut revokes the token with the given jti until it would expire.
func (s *Service) SignOut(ctx context.Context, userID int64, jti string, expiresAt time.Time) error {
	if jti == "" {
		return ErrUnauthorized
	}
	if expiresAt.IsZero() {
		expiresAt = s.now().Add(s.jwt.TTL())
	}
	return s.tokens.Revoke(ctx, &domain.RevokedToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
	})
}

// Session returns the profile behind an access token.
func (s *Service) Session(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// RequestPasswordReset stores a one-time token and mails the link. Unknown
// addresses succeed silently.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if dberr.IsNotFound(err) {
			s.log.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := randomToken()
	if err != nil {
		return err
	}
	reset := &domain.PasswordReset{
		UserID:    user.ID,
		TokenHash: hashToken(token),
		ExpiresAt: s.now().Add(s.resetTTL).UTC(),
	}
	if err := s.tokens.CreateReset(ctx, reset); err != nil {
		return err
	}

	link := s.resetURL + "?token=" + url.QueryEscape(token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return err
	}
	s.log.Info("password reset issued", zap.Int64("user_id", user.ID))
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if len(req.NewPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	reset, err := s.tokens.GetResetByHash(ctx, hashToken(strings.TrimSpace(req.Token)))
	if err != nil {
		if dberr.IsNotFound(err) {
			return ErrInvalidResetToken
		}
		return err
	}
	if reset.IsUsed() || reset.IsExpired(s.now()) {
		return ErrInvalidResetToken
	}

	consumed, err := s.tokens.MarkResetUsed(ctx, reset.ID)
	if err != nil {
		return err
	}
	if !consumed {
		return ErrInvalidResetToken
	}

	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, reset.UserID, hashed)
}

func (s *Service) UpdatePassword(ctx context.Context, userID int64, req UpdatePasswordRequest) error {
	if len(req.NewPassword) < minPasswordLength {
		return ErrWeakPassword
	}
	user, err := s.Session(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hashed)
}

// DeleteAccount removes the caller's profile and services and revokes the
// token used for the request.
func (s *Service) DeleteAccount(ctx context.Context, userID int64, jti string, expiresAt time.Time) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if dberr.IsNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	s.log.Info("account deleted", zap.Int64("user_id", userID))

	if jti == "" {
		return nil
	}
	if err := s.SignOut(ctx, userID, jti, expiresAt); err != nil {
		s.log.Warn("revoke after account deletion failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	return nil
}

func (s *Service) session(user *domain.User) (*SessionResult, error) {
	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &SessionResult{
		User:        user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwt.TTL().Seconds()),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.New("generate reset token")
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
