// Package apperror はアプリケーション全体で共有するエラー分類を提供します。
package apperror

import "errors"

// Kind はエラーの種別を表します。値の集合は閉じており、追加時は category も更新します。
type Kind int

const (
	KindUnknown Kind = iota

	// 認証エラー
	KindMissingToken
	KindMalformedHeader
	KindInvalidToken

	// 入力・業務エラー
	KindInvalidInput
	KindAlreadyExists
	KindNotRegistered
	KindWrongPassword
	KindNotFound
	KindNotOwner

	// 内部エラー
	KindStoreUnavailable
	KindHashingFailure
	KindTokenIssueFailure
)

// Category はレスポンス種別の分類です。
type Category int

const (
	CategoryInternal Category = iota
	CategoryAuth
	CategoryValidation
)

var kindCodes = map[Kind]string{
	KindUnknown:           "INTERNAL_ERROR",
	KindMissingToken:      "MISSING_TOKEN",
	KindMalformedHeader:   "MALFORMED_HEADER",
	KindInvalidToken:      "INVALID_TOKEN",
	KindInvalidInput:      "INVALID_INPUT",
	KindAlreadyExists:     "ALREADY_EXISTS",
	KindNotRegistered:     "NOT_REGISTERED",
	KindWrongPassword:     "WRONG_PASSWORD",
	KindNotFound:          "NOT_FOUND",
	KindNotOwner:          "NOT_OWNER",
	KindStoreUnavailable:  "STORE_UNAVAILABLE",
	KindHashingFailure:    "HASHING_FAILURE",
	KindTokenIssueFailure: "TOKEN_ISSUE_FAILURE",
}

// Code はレスポンスに載せるエラーコードを返します。
func (k Kind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return kindCodes[KindUnknown]
}

func (k Kind) String() string {
	return k.Code()
}

// Category は種別が属する分類を返します。
func (k Kind) Category() Category {
	switch k {
	case KindMissingToken, KindMalformedHeader, KindInvalidToken:
		return CategoryAuth
	case KindInvalidInput, KindAlreadyExists, KindNotRegistered, KindWrongPassword, KindNotFound, KindNotOwner:
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// Error は種別とメッセージ、原因を持つエラーです。
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.Code() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.Code() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New は原因を持たないエラーを作成します。
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap は原因エラーを包んだエラーを作成します。
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf はエラーチェーンから種別を取り出します。該当がなければ KindUnknown です。
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Is は err が指定種別かどうかを返します。
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
