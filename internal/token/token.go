// Package token issues and verifies the signed access and refresh tokens.
//
// Tokens are HS256 JWTs. A token is valid only if its signature, issuer,
// audience, type and expiry all check out; callers get a single
// ErrInvalidToken for every failure kind.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Defaults applied by NewCodec when Config leaves a field empty.
const (
	DefaultIssuer     = "gratitudejournal"
	DefaultAudience   = "gratitudejournal-client"
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour

	// MinSecretLen is the HS256 key size in bytes.
	MinSecretLen = 32
)

// Token types carried in the token_type claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Config is the codec configuration, fixed at start-up.
type Config struct {
	Secret     []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Claims is the token payload.
type Claims struct {
	Username  string `json:"username,omitempty"`
	Roles     string `json:"roles,omitempty"` // comma-joined
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID parses the subject as a user id.
func (c *Claims) UserID() (int64, bool) {
	if c == nil || c.Subject == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// RoleList splits the roles claim.
func (c *Claims) RoleList() []string {
	if c == nil || c.Roles == "" {
		return nil
	}
	return strings.Split(c.Roles, ",")
}

// Codec signs and verifies tokens. It is immutable and safe for concurrent use.
type Codec struct {
	key        []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec validates cfg and builds a Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < MinSecretLen {
		return nil, fmt.Errorf("token: secret must be at least %d bytes, got %d", MinSecretLen, len(cfg.Secret))
	}
	c := &Codec{
		key:        append([]byte(nil), cfg.Secret...),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}
	if c.issuer == "" {
		c.issuer = DefaultIssuer
	}
	if c.audience == "" {
		c.audience = DefaultAudience
	}
	if c.accessTTL <= 0 {
		c.accessTTL = DefaultAccessTTL
	}
	if c.refreshTTL <= 0 {
		c.refreshTTL = DefaultRefreshTTL
	}
	return c, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccessToken creates a signed access token for the principal.
func (c *Codec) IssueAccessToken(userID int64, username string, roles []string, now time.Time) (string, time.Time, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: jti: %w", err)
	}
	exp := now.Add(c.accessTTL)
	claims := Claims{
		Username:  username,
		Roles:     strings.Join(roles, ","),
		TokenType: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := c.sign(claims)
	return signed, exp, err
}

// IssueRefreshToken creates a signed refresh token carrying only the subject.
func (c *Codec) IssueRefreshToken(userID int64, now time.Time) (string, time.Time, error) {
	exp := now.Add(c.refreshTTL)
	claims := Claims{
		TokenType: TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := c.sign(claims)
	return signed, exp, err
}

func (c *Codec) sign(claims Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// VerifyAccess verifies an access token at time now.
func (c *Codec) VerifyAccess(tok string, now time.Time) (*Claims, error) {
	return c.verify(tok, TypeAccess, now)
}

// VerifyRefresh verifies a refresh token at time now.
func (c *Codec) VerifyRefresh(tok string, now time.Time) (*Claims, error) {
	return c.verify(tok, TypeRefresh, now)
}

func (c *Codec) verify(tok, wantType string, now time.Time) (*Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	parsed, err := parser.ParseWithClaims(tok, &claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	// WithAudience accepts any matching entry; the audience must be exactly ours.
	if len(claims.Audience) != 1 {
		return nil, fmt.Errorf("%w: unexpected audience", ErrInvalidToken)
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("%w: want %s token, got %q", ErrInvalidToken, wantType, claims.TokenType)
	}
	return &claims, nil
}

// SubjectUserID decodes the subject of tok as a user id without verifying it.
// Only use it on tokens that were verified already or for display.
func SubjectUserID(tok string) (int64, bool) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return 0, false
	}
	return claims.UserID()
}
