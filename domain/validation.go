package domain

import "github.com/jaykurgat/Nyumba-Finder/utils"

const requiredFieldsMessage = "Missing or invalid required fields: title, price, and location must be valid."

// NewPropertyFromInput shapes a create request into a Property. Missing required
// fields take their sentinel defaults and are then rejected. Images are always
// dropped: image upload is handled outside this service.
func NewPropertyFromInput(raw map[string]any) (Property, error) {
	p := Property{
		Title:       utils.CoerceString(raw[FieldTitle], DefaultTitle),
		Description: utils.CoerceString(raw[FieldDescription], ""),
		Location:    utils.CoerceString(raw[FieldLocation], DefaultLocation),
		Price:       utils.CoerceNumber(raw[FieldPrice], 0),
		Images:      []string{},
		Bedrooms:    int(utils.CoerceNumber(raw[FieldBedrooms], 0)),
		Bathrooms:   int(utils.CoerceNumber(raw[FieldBathrooms], DefaultBathrooms)),
		Area:        utils.CoerceOptionalNumber(raw[FieldArea]),
		Amenities:   utils.CoerceStringArray(raw[FieldAmenities]),
		PhoneNumber: utils.CoerceOptionalString(raw[FieldPhoneNumber]),
	}

	if err := p.Validate(); err != nil {
		return Property{}, err
	}
	return p, nil
}

// Validate checks the full set of invariants of a new property.
func (p Property) Validate() error {
	if err := checkRequired(&p.Title, &p.Price, &p.Location); err != nil {
		return err
	}
	return checkCounts(&p.Bedrooms, &p.Bathrooms, p.Area)
}

// checkRequired validates whichever required fields are non-nil.
//
// The sentinel comparison also rejects a title or location that literally equals
// the default text. That is a known limitation of the sentinel scheme.
func checkRequired(title *string, price *float64, location *string) error {
	if title != nil && (*title == "" || *title == DefaultTitle) {
		return &ValidationError{Message: requiredFieldsMessage}
	}
	if price != nil && *price <= 0 {
		return &ValidationError{Message: requiredFieldsMessage}
	}
	if location != nil && (*location == "" || *location == DefaultLocation) {
		return &ValidationError{Message: requiredFieldsMessage}
	}
	return nil
}

func checkCounts(bedrooms, bathrooms *int, area *float64) error {
	if bedrooms != nil && *bedrooms < 0 {
		return &ValidationError{Message: "Number of bedrooms cannot be negative."}
	}
	if bathrooms != nil && *bathrooms < 1 {
		return &ValidationError{Message: "Must have at least 1 bathroom."}
	}
	if area != nil && *area <= 0 {
		return &ValidationError{Message: "Area must be a positive number."}
	}
	return nil
}
