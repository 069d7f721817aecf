package services

import (
	"strings"

	"github.com/jaykurgat/Nyumba-Finder/domain"
	"github.com/jaykurgat/Nyumba-Finder/dto"
	"github.com/jaykurgat/Nyumba-Finder/repositories"
)

// buildQuery keeps the predicates the store can evaluate. The store can only
// order by the field carrying a range bound, so a price bound forces price order.
func buildQuery(filter dto.PropertyFilter) repositories.PropertyQuery {
	query := repositories.PropertyQuery{
		MinPrice:     filter.MinPrice,
		MaxPrice:     filter.MaxPrice,
		MinBedrooms:  filter.MinBedrooms,
		MinBathrooms: filter.MinBathrooms,
		OrderBy:      domain.FieldTitle,
	}
	if filter.HasPriceBound() {
		query.OrderBy = domain.FieldPrice
	}
	return query
}

// applyFilters runs the text and amenity filters in memory, keeping order.
func applyFilters(properties []domain.Property, filter dto.PropertyFilter) []domain.Property {
	term := strings.ToLower(filter.Query)
	location := strings.ToLower(filter.Location)

	result := make([]domain.Property, 0, len(properties))
	for _, p := range properties {
		if term != "" && !matchesTerm(p, term) {
			continue
		}
		if location != "" && location != term && !strings.Contains(strings.ToLower(p.Location), location) {
			continue
		}
		if !hasAllAmenities(p, filter.Amenities) {
			continue
		}
		result = append(result, p)
	}
	return result
}

func matchesTerm(p domain.Property, term string) bool {
	if strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term) ||
		strings.Contains(strings.ToLower(p.Location), term) {
		return true
	}
	for _, a := range p.Amenities {
		if strings.Contains(strings.ToLower(a), term) {
			return true
		}
	}
	return false
}

// hasAllAmenities is an exact, case-sensitive subset test.
func hasAllAmenities(p domain.Property, required []string) bool {
	for _, name := range required {
		if !p.HasAmenity(name) {
			return false
		}
	}
	return true
}
