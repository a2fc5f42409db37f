// Package auth は認証・認可機能を提供します。
package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/task-ledger/internal/apperror"
)

// TokenHeader はトークンを受け取るヘッダー名です。Bearer などの接頭辞は付けません。
const TokenHeader = "Authorization"

// TokenVerifier はトークンを検証して identity を返します。
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type identityKey struct{}

// WithIdentity は identity を context に紐付けます。
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom は context に紐付いた identity を返します。
func IdentityFrom(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(identityKey{}).(string)
	return identity, ok && identity != ""
}

// Gate はタスク系ルートの前段でトークンを検証します。
type Gate struct {
	verifier TokenVerifier
}

// NewGate は Gate を作成します。
func NewGate(verifier TokenVerifier) *Gate {
	return &Gate{verifier: verifier}
}

// RequireToken はトークンを検証するミドルウェアを返します。
// ストアには触れず、成功時は identity をリクエストの context に載せるだけです。
func (g *Gate) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := g.Resolve(c.Request.Header.Values(TokenHeader))
		if err != nil {
			apperror.Abort(c, err)
			return
		}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// Resolve はヘッダー値から identity を解決します。
func (g *Gate) Resolve(values []string) (string, error) {
	if len(values) == 0 || values[0] == "" {
		return "", apperror.New(apperror.KindMissingToken, "Token Not found")
	}
	raw := values[0]
	if !isHeaderText(raw) {
		return "", apperror.New(apperror.KindMalformedHeader, "Authorization header is not valid text")
	}
	identity, err := g.verifier.Verify(raw)
	if err != nil {
		return "", apperror.Wrap(apperror.KindInvalidToken, "Token is invalid or expired", err)
	}
	return identity, nil
}

// isHeaderText はヘッダー値が表示可能な ASCII、空白、タブだけで構成されているかを返します。
func isHeaderText(v string) bool {
	for i := 0; i < len(v); i++ {
		b := v[i]
		if b == '\t' {
			continue
		}
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return true
}
