package domain

import (
	"slices"

	"github.com/jaykurgat/Nyumba-Finder/utils"
)

// Sentinel defaults used when a required field was not meaningfully supplied.
const (
	DefaultTitle     = "Untitled Property"
	DefaultLocation  = "Unknown Location"
	DefaultBathrooms = 1
)

// Stored field names, shared by every repository backend.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldLocation    = "location"
	FieldPrice       = "price"
	FieldImages      = "images"
	FieldBedrooms    = "bedrooms"
	FieldBathrooms   = "bathrooms"
	FieldArea        = "area"
	FieldAmenities   = "amenities"
	FieldPhoneNumber = "phoneNumber"
)

// Property is a rental listing submitted by a landlord.
// Price is the monthly rent; Bedrooms == 0 means a studio.
type Property struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Area        *float64 `json:"area,omitempty"`
	Amenities   []string `json:"amenities"`
	PhoneNumber *string  `json:"phoneNumber,omitempty"`
}

// Clone returns a copy of p that shares no slices or pointers with it.
func (p Property) Clone() Property {
	out := p
	out.Images = slices.Clone(p.Images)
	out.Amenities = slices.Clone(p.Amenities)
	if p.Area != nil {
		area := *p.Area
		out.Area = &area
	}
	if p.PhoneNumber != nil {
		phone := *p.PhoneNumber
		out.PhoneNumber = &phone
	}
	return out
}

// Document returns the stored representation of p, without the id.
// Optional fields are left out when absent.
func (p Property) Document() map[string]any {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	amenities := p.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	doc := map[string]any{
		FieldTitle:       p.Title,
		FieldDescription: p.Description,
		FieldLocation:    p.Location,
		FieldPrice:       p.Price,
		FieldImages:      images,
		FieldBedrooms:    p.Bedrooms,
		FieldBathrooms:   p.Bathrooms,
		FieldAmenities:   amenities,
	}
	if p.Area != nil {
		doc[FieldArea] = *p.Area
	}
	if p.PhoneNumber != nil {
		doc[FieldPhoneNumber] = *p.PhoneNumber
	}
	return doc
}

// HasAmenity reports whether name is in the amenity set.
func (p Property) HasAmenity(name string) bool {
	for _, a := range p.Amenities {
		if a == name {
			return true
		}
	}
	return false
}

// NormalizeDocument builds a Property from a raw stored document, coercing every
// field so legacy or partial documents still produce a well-formed value.
func NormalizeDocument(id string, data map[string]any) Property {
	return Property{
		ID:          id,
		Title:       utils.CoerceString(data[FieldTitle], ""),
		Description: utils.CoerceString(data[FieldDescription], ""),
		Location:    utils.CoerceString(data[FieldLocation], ""),
		Price:       utils.CoerceNumber(data[FieldPrice], 0),
		Images:      utils.CoerceStringArray(data[FieldImages]),
		Bedrooms:    int(utils.CoerceNumber(data[FieldBedrooms], 0)),
		Bathrooms:   int(utils.CoerceNumber(data[FieldBathrooms], DefaultBathrooms)),
		Area:        utils.CoerceOptionalNumber(data[FieldArea]),
		Amenities:   utils.CoerceStringArray(data[FieldAmenities]),
		PhoneNumber: utils.CoerceOptionalString(data[FieldPhoneNumber]),
	}
}
