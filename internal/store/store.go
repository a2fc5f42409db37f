// Package store はユーザーとタスクをメモリ上に保持する共有ストアを提供します。
package store

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnavailable は過去の操作の失敗でストアが使用不能になったことを表します。
var ErrUnavailable = errors.New("store unavailable")

// User は登録済みユーザーです。
type User struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
}

// Task はユーザーが所有するタスクです。Owner は所有者のメールアドレスです。
type Task struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
	Owner string `json:"owner"`
}

// State はロック取得中にだけ触れられるコレクションです。
type State struct {
	users []User
	tasks []Task
}

// UserByEmail はメールアドレスでユーザーを探します。
func (s *State) UserByEmail(email string) (User, bool) {
	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return User{}, false
}

// AddUser はユーザーを末尾に追加します。重複チェックは呼び出し側の責務です。
func (s *State) AddUser(u User) {
	s.users = append(s.users, u)
}

// TaskCount はタスク数を返します。
func (s *State) TaskCount() int {
	return len(s.tasks)
}

// AddTask はタスクを末尾に追加します。
func (s *State) AddTask(t Task) {
	s.tasks = append(s.tasks, t)
}

// TaskByID は ID に一致するタスクへのポインタを返します。
// ポインタはコールバック内でのみ有効です。
func (s *State) TaskByID(id int) (*Task, bool) {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i], true
		}
	}
	return nil, false
}

// TasksOwnedBy は所有者のタスクを挿入順のコピーで返します。
func (s *State) TasksOwnedBy(owner string) []Task {
	out := make([]Task, 0)
	for _, t := range s.tasks {
		if t.Owner == owner {
			out = append(out, t)
		}
	}
	return out
}

// Store は単一の排他ロックで State を守ります。
type Store struct {
	mu       sync.Mutex
	poisoned bool
	state    State
}

// New は空のストアを作成します。
func New() *Store {
	return &Store{}
}

// With はロックを取得して fn を実行し、どの経路でも必ず解放します。
// fn が panic した場合ストアは使用不能になり、以降の呼び出しは ErrUnavailable を返します。
func (s *Store) With(fn func(*State) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poisoned {
		return ErrUnavailable
	}

	defer func() {
		if r := recover(); r != nil {
			s.poisoned = true
			err = fmt.Errorf("%w: operation panicked: %v", ErrUnavailable, r)
		}
	}()

	return fn(&s.state)
}

// Poisoned はストアが使用不能かどうかを返します。ヘルスチェックから参照されます。
func (s *Store) Poisoned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poisoned
}
