package dto

import "github.com/jaykurgat/Nyumba-Finder/domain"

// PropertyFilter holds the listing filters read from the query string.
// Nil pointers mean "not supplied".
type PropertyFilter struct {
	Query        string
	Location     string
	MinPrice     *float64
	MaxPrice     *float64
	MinBedrooms  *float64
	MinBathrooms *float64
	Amenities    []string
}

// HasPriceBound reports whether a price range predicate is present.
func (f PropertyFilter) HasPriceBound() bool {
	return f.MinPrice != nil || f.MaxPrice != nil
}

// PropertyResponse is returned by create and update.
type PropertyResponse struct {
	Message    string           `json:"message"`
	PropertyID string           `json:"propertyId"`
	Property   *domain.Property `json:"property,omitempty"`
}

// CoordinatesResponse is returned by the coordinates lookup.
type CoordinatesResponse struct {
	PropertyID string  `json:"propertyId"`
	Location   string  `json:"location"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
