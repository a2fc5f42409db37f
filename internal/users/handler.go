package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/task-ledger/internal/apperror"
)

// Service はユーザー系ハンドラーが必要とする処理です。
type Service interface {
	Register(email, name, password string) (string, error)
	Authenticate(email, password string) (string, error)
}

// password は空文字を許すため、キーの有無をポインタで判定します。
type signupRequest struct {
	Email    string  `json:"email" binding:"required"`
	Name     string  `json:"name"`
	Password *string `json:"password"`
}

type signinRequest struct {
	Email    string  `json:"email" binding:"required"`
	Password *string `json:"password"`
}

const invalidCredentialsBody = "email と password を JSON で送ってください"

// errMissingPassword は password キーが無いことを表します。
var errMissingPassword = errors.New("password is required")

// SignupHandler は POST /user/signup のハンドラーを返します。
func SignupHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperror.Respond(c, apperror.Wrap(apperror.KindInvalidInput, invalidCredentialsBody, err))
			return
		}
		if req.Password == nil {
			apperror.Respond(c, apperror.Wrap(apperror.KindInvalidInput, invalidCredentialsBody, errMissingPassword))
			return
		}

		message, err := svc.Register(req.Email, req.Name, *req.Password)
		if err != nil {
			apperror.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

// SigninHandler は POST /user/signin のハンドラーを返します。
func SigninHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperror.Respond(c, apperror.Wrap(apperror.KindInvalidInput, invalidCredentialsBody, err))
			return
		}
		if req.Password == nil {
			apperror.Respond(c, apperror.Wrap(apperror.KindInvalidInput, invalidCredentialsBody, errMissingPassword))
			return
		}

		token, err := svc.Authenticate(req.Email, *req.Password)
		if err != nil {
			apperror.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
