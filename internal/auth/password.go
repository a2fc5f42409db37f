package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrHashing はパスワードのハッシュ化に失敗したことを表します。
var ErrHashing = errors.New("password hashing failed")

// Vault は bcrypt でパスワードをハッシュ化・検証します。
type Vault struct {
	cost int
}

// NewVault は Vault を作成します。範囲外のコストは bcrypt.DefaultCost になります。
func NewVault(cost int) *Vault {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Vault{cost: cost}
}

// Hash は呼び出しごとに新しいソルトでハッシュを生成します。
func (v *Vault) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), v.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
	return string(hash), nil
}

// Verify はハッシュと平文が一致する場合だけ true を返します。壊れたハッシュは false です。
func (v *Vault) Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
