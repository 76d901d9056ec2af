package category

import "errors"

// Category ドメインのエラー定義
var (
	ErrCategoryNotFound   = errors.New("カテゴリが見つかりません")
	ErrNameRequired       = errors.New("カテゴリ名は必須です")
	ErrCategoryNameExists = errors.New("同じ名前のカテゴリが既に存在します")
	ErrCategoryInUse      = errors.New("イベントに使用されているカテゴリは削除できません")
)
