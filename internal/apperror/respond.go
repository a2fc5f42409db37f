package apperror

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey は gin.Context 上のリクエストIDのキーです。
const RequestIDKey = "request.id"

const internalMessage = "Internal Error"

// StatusFor は分類に対応する HTTP ステータスを返します。
func StatusFor(kind Kind) int {
	switch kind.Category() {
	case CategoryAuth:
		return http.StatusUnauthorized
	case CategoryValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Respond はエラーを JSON レスポンスに変換します。ステータスへの対応付けはここだけで行います。
func Respond(c *gin.Context, err error) {
	status, body := render(err)
	if status == http.StatusInternalServerError {
		log.Printf("request_id=%s %s %s: %v", c.GetString(RequestIDKey), c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, body)
}

// Abort は Respond と同じ内容でハンドラーチェーンを中断します。
func Abort(c *gin.Context, err error) {
	status, body := render(err)
	c.AbortWithStatusJSON(status, body)
}

func render(err error) (int, gin.H) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, gin.H{
			"code":    KindUnknown.Code(),
			"message": internalMessage,
		}
	}

	status := StatusFor(appErr.Kind)
	message := appErr.Message
	if status == http.StatusInternalServerError {
		message = internalMessage
	}
	return status, gin.H{
		"code":    appErr.Kind.Code(),
		"message": message,
	}
}
