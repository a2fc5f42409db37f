// Package users はユーザー登録とサインインを提供します。
package users

import (
	"errors"
	"log"

	"github.com/yourusername/task-ledger/internal/apperror"
	"github.com/yourusername/task-ledger/internal/store"
)

// MessageCreated は登録成功時のメッセージです。
const MessageCreated = "User created Successfully"

// PasswordHasher はパスワードのハッシュ化と検証を行います。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) bool
}

// TokenIssuer は identity に対するトークンを発行します。
type TokenIssuer interface {
	Issue(identity string) (string, error)
}

// Directory は登録と認証の処理をまとめた構造体です。
type Directory struct {
	store  *store.Store
	hasher PasswordHasher
	issuer TokenIssuer
	logger *log.Logger
}

// NewDirectory は Directory を作成します。
func NewDirectory(st *store.Store, hasher PasswordHasher, issuer TokenIssuer, logger *log.Logger) (*Directory, error) {
	if st == nil {
		return nil, errors.New("store is nil")
	}
	if hasher == nil {
		return nil, errors.New("hasher is nil")
	}
	if issuer == nil {
		return nil, errors.New("issuer is nil")
	}
	return &Directory{
		store:  st,
		hasher: hasher,
		issuer: issuer,
		logger: logger,
	}, nil
}

// Register はユーザーを登録します。
// ハッシュ化はロック外で行い、追加の直前にもう一度重複を確認します。
func (d *Directory) Register(email, name, password string) (string, error) {
	if err := d.store.With(func(st *store.State) error {
		if _, ok := st.UserByEmail(email); ok {
			return errAlreadyExists()
		}
		return nil
	}); err != nil {
		return "", d.storeError(err)
	}

	hash, err := d.hasher.Hash(password)
	if err != nil {
		d.logf("failed to hash password email=%s: %v", email, err)
		return "", apperror.Wrap(apperror.KindHashingFailure, "password hashing failed", err)
	}

	if err := d.store.With(func(st *store.State) error {
		if _, ok := st.UserByEmail(email); ok {
			return errAlreadyExists()
		}
		st.AddUser(store.User{
			Email:        email,
			Name:         name,
			PasswordHash: hash,
		})
		return nil
	}); err != nil {
		return "", d.storeError(err)
	}

	return MessageCreated, nil
}

// Authenticate は資格情報を確認してトークンを返します。
func (d *Directory) Authenticate(email, password string) (string, error) {
	var hash string
	if err := d.store.With(func(st *store.State) error {
		user, ok := st.UserByEmail(email)
		if !ok {
			return apperror.New(apperror.KindNotRegistered, "Signup first")
		}
		hash = user.PasswordHash
		return nil
	}); err != nil {
		return "", d.storeError(err)
	}

	if !d.hasher.Verify(hash, password) {
		return "", apperror.New(apperror.KindWrongPassword, "Enter valid Password")
	}

	token, err := d.issuer.Issue(email)
	if err != nil {
		d.logf("failed to issue token email=%s: %v", email, err)
		return "", apperror.Wrap(apperror.KindTokenIssueFailure, "token issue failed", err)
	}
	return token, nil
}

func (d *Directory) storeError(err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	d.logf("store access failed: %v", err)
	return apperror.Wrap(apperror.KindStoreUnavailable, "store unavailable", err)
}

func (d *Directory) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}

func errAlreadyExists() error {
	return apperror.New(apperror.KindAlreadyExists, "User exists already")
}
