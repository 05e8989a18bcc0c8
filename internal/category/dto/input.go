package dto

type CreateCategoryInput struct {
	Name            string
	Description     string
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
	ImageURL        string
	SortOrder       int
}

type UpdateCategoryInput struct {
	ID              string
	Name            string
	Description     string
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
	ImageURL        string
	SortOrder       int
	IsActive        bool
}

type CreateSubCategoryInput struct {
	CategoryName string // parent resolved by unique name
	Name         string
	Description  string
	ImageURL     string
}
