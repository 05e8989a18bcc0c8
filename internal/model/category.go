package model

type Category struct {
	BaseModel
	Name            string  `db:"name" json:"name"`
	Slug            string  `db:"slug" json:"slug"`
	Description     *string `db:"description" json:"description"`
	MetaTitle       *string `db:"meta_title" json:"meta_title"`
	MetaDescription *string `db:"meta_description" json:"meta_description"`
	MetaKeywords    *string `db:"meta_keywords" json:"meta_keywords"`
	ImageURL        *string `db:"image_url" json:"image_url"`
	SortOrder       int     `db:"sort_order" json:"sort_order"`
	IsActive        bool    `db:"is_active" json:"is_active"`
}

type SubCategory struct {
	BaseModel
	CategoryID  string  `db:"category_id" json:"category_id"`
	Name        string  `db:"name" json:"name"`
	Slug        string  `db:"slug" json:"slug"`
	Description *string `db:"description" json:"description"`
	ImageURL    *string `db:"image_url" json:"image_url"`
	IsActive    bool    `db:"is_active" json:"is_active"`
}
