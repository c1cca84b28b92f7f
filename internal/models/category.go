package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category represents a transaction category. Categories form a two-level
// tree at most: a child's parent must not itself have a parent.
// System categories (UserID nil, IsSystem true) are shared defaults seeded
// by migration; the categorizer's rule catalog resolves against them.
type Category struct {
	Base
	UserID   *uint        `gorm:"index" json:"user_id,omitempty"`
	NameHe   string       `gorm:"not null" json:"name_he"`
	NameEn   string       `json:"name_en"`
	Type     CategoryType `gorm:"not null" json:"type"`
	Icon     string       `json:"icon"`
	IsSystem bool         `gorm:"default:false" json:"is_system"`
	ParentID *uint        `json:"parent_id,omitempty"`

	// Relationships
	Parent       *Category     `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children     []Category    `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
	Budgets      []Budget      `gorm:"foreignKey:CategoryID" json:"budgets,omitempty"`
}
