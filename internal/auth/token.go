package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL はトークンの有効期間です。発行から24時間で固定です。
const DefaultTokenTTL = 24 * time.Hour

// TokenErrorKind はトークン検証失敗の種別です。
type TokenErrorKind int

const (
	TokenMalformed TokenErrorKind = iota + 1
	TokenInvalidSignature
	TokenExpired
)

func (k TokenErrorKind) String() string {
	switch k {
	case TokenMalformed:
		return "malformed"
	case TokenInvalidSignature:
		return "invalid signature"
	case TokenExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// TokenError はトークン検証の失敗を表します。
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
	}
	return "token " + e.Kind.String()
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// TokenErrorKindOf はエラーからトークン検証失敗の種別を取り出します。
func TokenErrorKindOf(err error) (TokenErrorKind, bool) {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr.Kind, true
	}
	return 0, false
}

// ErrEmptySecret は署名鍵が未設定であることを表します。
var ErrEmptySecret = errors.New("token secret is empty")

// TokenConfig はトークンの発行・検証設定です。
type TokenConfig struct {
	Secret []byte
	Now    func() time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
}

// TokenService は HS256 の JWT を発行・検証します。
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService は TokenService を作成します。
func NewTokenService(cfg TokenConfig) *TokenService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &TokenService{secret: secret, now: now}
}

// Issue は subject を identity とするトークンを発行します。
func (s *TokenService) Issue(identity string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrEmptySecret
	}
	if strings.TrimSpace(identity) == "" {
		return "", errors.New("identity is required")
	}

	now := s.now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(DefaultTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証して subject を返します。値は受け取ったまま検証し、空白の除去もしません。
func (s *TokenService) Verify(raw string) (string, error) {
	if raw == "" {
		return "", &TokenError{Kind: TokenMalformed, Err: errors.New("token is empty")}
	}
	if len(s.secret) == 0 {
		return "", &TokenError{Kind: TokenInvalidSignature, Err: ErrEmptySecret}
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", mapJWTError(err)
	}

	if parsed.Subject == "" {
		return "", &TokenError{Kind: TokenMalformed, Err: errors.New("sub is required")}
	}
	if parsed.ExpiresAt == nil {
		return "", &TokenError{Kind: TokenMalformed, Err: errors.New("exp is required")}
	}

	now := s.now().UTC()
	if !parsed.ExpiresAt.Time.After(now) {
		return "", &TokenError{Kind: TokenExpired}
	}
	return parsed.Subject, nil
}

// mapJWTError は jwt ライブラリのエラーを検証失敗の種別へ変換します。
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &TokenError{Kind: TokenInvalidSignature, Err: err}
	default:
		return &TokenError{Kind: TokenMalformed, Err: err}
	}
}
