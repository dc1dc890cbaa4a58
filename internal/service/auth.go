// Package service contains application services for authentication,
// profiles and journal entries.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/gratitude-journal/internal/errs"
	"github.com/and161185/gratitude-journal/internal/model"
	"github.com/and161185/gratitude-journal/internal/repository"
	"github.com/and161185/gratitude-journal/internal/token"
)

const bearerPrefix = "Bearer "

// AuthService defines account and session operations.
type AuthService interface {
	// Register creates an account with the default role and signs it in.
	Register(ctx context.Context, username, email, password string) (model.Session, error)
	// SignIn checks credentials and issues a fresh token pair.
	SignIn(ctx context.Context, username, password string) (model.Session, error)
	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (model.Tokens, error)
	// Validate runs the gate pipeline on an Authorization header value.
	Validate(ctx context.Context, authorization string) (model.Validation, error)
	// Me returns the public profile of the user.
	Me(ctx context.Context, userID int64) (model.User, error)
	// ChangePassword replaces the password after checking the current one.
	ChangePassword(ctx context.Context, userID int64, current, next string) error
	// DeleteAccount removes the user and everything it owns.
	DeleteAccount(ctx context.Context, userID int64) error
	// UpdateProfile overwrites the non-blank profile fields.
	UpdateProfile(ctx context.Context, userID int64, p model.ProfileUpdate) (model.User, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// AuthServiceImpl implements AuthService on top of a user repository.
type AuthServiceImpl struct {
	users  repository.UserRepository
	loader *IdentityLoader
	codec  *token.Codec
	hasher PasswordHasher
	log    *zap.Logger
	now    func() time.Time

	// dummyHash is verified against when the user is missing.
	dummyHash string
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, codec *token.Codec, hasher PasswordHasher, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	dummy, err := hasher.Hash("dummy-password-for-timing-only")
	if err != nil {
		log.Warn("dummy hash unavailable", zap.Error(err))
	}
	return &AuthServiceImpl{
		users:  users,
		loader: NewIdentityLoader(users),
		codec:  codec,
		hasher: hasher,
		log:    log,
		now:    time.Now,

		dummyHash: dummy,
	}
}

// Register validates input, rejects duplicates and persists a new user.
func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) (model.Session, error) {
	in := registration{Username: strings.TrimSpace(username), Email: strings.TrimSpace(email), Password: password}
	if err := in.validate(); err != nil {
		return model.Session{}, err
	}

	taken, err := s.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return model.Session{}, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return model.Session{}, errs.ErrUsernameTaken
	}
	taken, err = s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return model.Session{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return model.Session{}, errs.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.Session{}, err
	}
	u := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Roles:        []string{model.RoleUser},
	}
	// A concurrent registration may still win; the store reports it as a conflict.
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return model.Session{}, err
		}
		return model.Session{}, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID))
	return s.session(u)
}

// SignIn authenticates by username and password.
func (s *AuthServiceImpl) SignIn(ctx context.Context, username, password string) (model.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.Session{}, errs.ErrUnauthorized
	}
	u, err := s.loader.LoadByUsername(ctx, username)
	if errors.Is(err, errs.ErrNotFound) {
		// hide existence of the user, timing included
		if s.dummyHash != "" {
			_ = s.hasher.Verify(password, s.dummyHash)
		}
		return model.Session{}, errs.ErrUnauthorized
	}
	if err != nil {
		return model.Session{}, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return model.Session{}, errs.ErrUnauthorized
	}
	return s.session(u)
}

// Refresh verifies the refresh token and reloads the user to pick up current roles.
// The refresh token itself is not rotated.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (model.Tokens, error) {
	if refreshToken == "" {
		return model.Tokens{}, errs.ErrUnauthorized
	}
	claims, err := s.codec.VerifyRefresh(refreshToken, s.now())
	if err != nil {
		s.log.Debug("refresh token rejected", zap.Error(err))
		return model.Tokens{}, errs.ErrUnauthorized
	}
	id, ok := claims.UserID()
	if !ok {
		return model.Tokens{}, errs.ErrUnauthorized
	}
	u, err := s.loader.LoadByID(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return model.Tokens{}, errs.ErrUnauthorized
	}
	if err != nil {
		return model.Tokens{}, err
	}
	access, exp, err := s.codec.IssueAccessToken(u.ID, u.Username, u.Roles, s.now())
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, AccessExpiresAt: exp}, nil
}

// Validate checks a bearer header the same way the request gate does.
func (s *AuthServiceImpl) Validate(ctx context.Context, authorization string) (model.Validation, error) {
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return model.Validation{}, errs.Validation("missing bearer token")
	}
	claims, err := s.codec.VerifyAccess(strings.TrimPrefix(authorization, bearerPrefix), s.now())
	if err != nil {
		s.log.Debug("access token rejected", zap.Error(err))
		return model.Validation{}, errs.ErrUnauthorized
	}
	id, ok := claims.UserID()
	if !ok {
		return model.Validation{}, errs.ErrUnauthorized
	}
	u, err := s.loader.LoadByID(ctx, id)
	if err != nil {
		return model.Validation{}, err
	}
	return model.Validation{Valid: true, UserID: u.ID, Username: u.Username}, nil
}

// Me loads the profile of userID.
func (s *AuthServiceImpl) Me(ctx context.Context, userID int64) (model.User, error) {
	u, err := s.loader.LoadByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	return public(u), nil
}

// ChangePassword verifies current and stores the hash of next.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if err := validatePassword(next); err != nil {
		return err
	}
	u, err := s.loader.LoadByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, u.PasswordHash) {
		return errs.Validation("current password is incorrect")
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.log.Info("password changed", zap.Int64("user_id", userID))
	return nil
}

// DeleteAccount removes the user. Access tokens already issued stay
// cryptographically valid but fail the gate's identity re-check.
func (s *AuthServiceImpl) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info("account deleted", zap.Int64("user_id", userID))
	return nil
}

// UpdateProfile validates and applies a profile change.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID int64, p model.ProfileUpdate) (model.User, error) {
	p = model.ProfileUpdate{
		Username: strings.TrimSpace(p.Username),
		Email:    strings.TrimSpace(p.Email),
		Bio:      strings.TrimSpace(p.Bio),
	}
	if err := validateProfile(p); err != nil {
		return model.User{}, err
	}
	u, err := s.users.UpdateProfile(ctx, userID, p)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrAlreadyExists) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("update profile: %w", err)
	}
	return public(u), nil
}

// session issues the token pair for u.
func (s *AuthServiceImpl) session(u *model.User) (model.Session, error) {
	now := s.now()
	access, accessExp, err := s.codec.IssueAccessToken(u.ID, u.Username, u.Roles, now)
	if err != nil {
		return model.Session{}, err
	}
	refresh, refreshExp, err := s.codec.IssueRefreshToken(u.ID, now)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{
		Tokens: model.Tokens{
			AccessToken:      access,
			AccessExpiresAt:  accessExp,
			RefreshToken:     refresh,
			RefreshExpiresAt: refreshExp,
		},
		User: public(u),
	}, nil
}

// public strips the password hash.
func public(u *model.User) model.User {
	out := *u
	out.PasswordHash = ""
	return out
}
