// Package tasks はユーザーごとのタスク操作を提供します。
package tasks

import (
	"errors"
	"log"

	"github.com/yourusername/task-ledger/internal/apperror"
	"github.com/yourusername/task-ledger/internal/store"
)

// MessageUpdated は更新成功時のメッセージです。
const MessageUpdated = "Updated Successfully"

// Ledger はタスクの作成・一覧・更新を所有者単位で行います。
type Ledger struct {
	store  *store.Store
	logger *log.Logger
}

// NewLedger は Ledger を作成します。
func NewLedger(st *store.Store, logger *log.Logger) (*Ledger, error) {
	if st == nil {
		return nil, errors.New("store is nil")
	}
	return &Ledger{store: st, logger: logger}, nil
}

// Create はタスクを追加して作成したレコードを返します。
// ID は既存件数 + 1 で、削除がない前提でのみ一意です。
func (l *Ledger) Create(owner, title string, done bool) (store.Task, error) {
	var created store.Task
	if err := l.store.With(func(st *store.State) error {
		created = store.Task{
			ID:    st.TaskCount() + 1,
			Title: title,
			Done:  done,
			Owner: owner,
		}
		st.AddTask(created)
		return nil
	}); err != nil {
		return store.Task{}, l.storeError(err)
	}
	return created, nil
}

// List は所有者のタスクを作成順に返します。
func (l *Ledger) List(owner string) ([]store.Task, error) {
	var out []store.Task
	if err := l.store.With(func(st *store.State) error {
		out = st.TasksOwnedBy(owner)
		return nil
	}); err != nil {
		return nil, l.storeError(err)
	}
	return out, nil
}

// Update は所有者本人のタスクだけを上書きします。
func (l *Ledger) Update(id int, owner, title string, done bool) (string, error) {
	if err := l.store.With(func(st *store.State) error {
		task, ok := st.TaskByID(id)
		if !ok {
			return apperror.New(apperror.KindNotFound, "Enter Valid todo id")
		}
		if task.Owner != owner {
			return apperror.New(apperror.KindNotOwner, "Todo belongs to another user")
		}
		task.Title = title
		task.Done = done
		return nil
	}); err != nil {
		return "", l.storeError(err)
	}
	return MessageUpdated, nil
}

func (l *Ledger) storeError(err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	if l.logger != nil {
		l.logger.Printf("store access failed: %v", err)
	}
	return apperror.Wrap(apperror.KindStoreUnavailable, "store unavailable", err)
}
