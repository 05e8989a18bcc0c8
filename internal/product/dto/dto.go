package dto

type ProductFilters struct {
	VendorID    string
	CategoryID  string
	Status      string
	IsActive    *bool
	SearchQuery string // matched against name and descriptions
	SortBy      string // name, price, created_at
	SortOrder   string // asc, desc
	Page        int
	PageSize    int
}
