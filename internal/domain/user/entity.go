package user

import "time"

// User はユーザーエンティティを表す
// 参加管理のコアからは主催者・リクエスト者の参照としてのみ使われる
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// NewUser は新しいユーザーを作成する
func NewUser(name, email string) *User {
	return &User{
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	}
}

// Validate はユーザーの検証を行う
func (u *User) Validate() error {
	if u.Name == "" {
		return ErrNameRequired
	}
	if u.Email == "" {
		return ErrEmailRequired
	}
	return nil
}
