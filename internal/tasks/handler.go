package tasks

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/task-ledger/internal/apperror"
	"github.com/yourusername/task-ledger/internal/auth"
	"github.com/yourusername/task-ledger/internal/store"
)

// Service はタスク系ハンドラーが必要とする処理です。
type Service interface {
	Create(owner, title string, done bool) (store.Task, error)
	List(owner string) ([]store.Task, error)
	Update(id int, owner, title string, done bool) (string, error)
}

// taskRequest はタスクの作成・更新ボディです。title は空文字を許すため、キーの有無をポインタで判定します。
type taskRequest struct {
	Title *string `json:"title"`
	Done  bool    `json:"done"`
}

const invalidTaskBody = "title と done を JSON で送ってください"

var errMissingTitle = errors.New("title is required")

// bindTask はリクエストボディを読み取ります。失敗時はレスポンスを書いて false を返します。
func bindTask(c *gin.Context) (taskRequest, bool) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Wrap(apperror.KindInvalidInput, invalidTaskBody, err))
		return req, false
	}
	if req.Title == nil {
		apperror.Respond(c, apperror.Wrap(apperror.KindInvalidInput, invalidTaskBody, errMissingTitle))
		return req, false
	}
	return req, true
}

// CreateHandler は POST /authed/todo のハンドラーを返します。
func CreateHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := requireIdentity(c)
		if !ok {
			return
		}

		req, ok := bindTask(c)
		if !ok {
			return
		}

		task, err := svc.Create(owner, *req.Title, req.Done)
		if err != nil {
			apperror.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

// UpdateHandler は PUT /authed/todo/:id のハンドラーを返します。
func UpdateHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := requireIdentity(c)
		if !ok {
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			apperror.Respond(c, apperror.Wrap(apperror.KindInvalidInput, "id は整数で指定してください", err))
			return
		}

		req, ok := bindTask(c)
		if !ok {
			return
		}

		message, err := svc.Update(id, owner, *req.Title, req.Done)
		if err != nil {
			apperror.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

// ListHandler は GET /authed/todos のハンドラーを返します。
func ListHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := requireIdentity(c)
		if !ok {
			return
		}

		list, err := svc.List(owner)
		if err != nil {
			apperror.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// requireIdentity は Gate が載せた identity を取り出します。無ければ 401 を返します。
func requireIdentity(c *gin.Context) (string, bool) {
	owner, ok := auth.IdentityFrom(c.Request.Context())
	if !ok {
		apperror.Respond(c, apperror.New(apperror.KindMissingToken, "Token Not found"))
		return "", false
	}
	return owner, true
}
