package user

import "errors"

// User ドメインのエラー定義
var (
	ErrUserNotFound       = errors.New("ユーザーが見つかりません")
	ErrNameRequired       = errors.New("ユーザー名は必須です")
	ErrEmailRequired      = errors.New("メールアドレスは必須です")
	ErrEmailAlreadyExists = errors.New("同じメールアドレスのユーザーが既に存在します")
)
