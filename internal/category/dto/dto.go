package dto

type CategoryFilters struct {
	IsActive *bool
	Page     int
	PageSize int
}
