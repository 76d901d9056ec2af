package category

// Category はイベントカテゴリを表す
type Category struct {
	ID   string
	Name string
}

// NewCategory は新しいカテゴリを作成する
func NewCategory(name string) *Category {
	return &Category{Name: name}
}

// Validate はカテゴリの検証を行う
func (c *Category) Validate() error {
	if c.Name == "" {
		return ErrNameRequired
	}
	return nil
}
