package domain

import "github.com/jaykurgat/Nyumba-Finder/utils"

// Optional holds a value together with whether the caller supplied it.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a supplied Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// PropertyPatch is a sparse update. Only fields with Set == true are written.
// Area set to a nil value removes the stored area.
type PropertyPatch struct {
	Title       Optional[string]
	Description Optional[string]
	Location    Optional[string]
	Price       Optional[float64]
	Bedrooms    Optional[int]
	Bathrooms   Optional[int]
	Images      Optional[[]string]
	Amenities   Optional[[]string]
	PhoneNumber Optional[string]
	Area        Optional[*float64]
}

// BuildPatch turns a raw update request into a PropertyPatch. A key is only
// considered when present in raw; its value is coerced the same way a create
// request would be. The result is validated over the supplied fields only.
func BuildPatch(raw map[string]any) (PropertyPatch, error) {
	var p PropertyPatch

	if v, ok := raw[FieldTitle]; ok {
		p.Title = Some(utils.CoerceString(v, DefaultTitle))
	}
	if v, ok := raw[FieldDescription]; ok {
		p.Description = Some(utils.CoerceString(v, ""))
	}
	if v, ok := raw[FieldLocation]; ok {
		p.Location = Some(utils.CoerceString(v, DefaultLocation))
	}
	if v, ok := raw[FieldPrice]; ok {
		p.Price = Some(utils.CoerceNumber(v, 0))
	}
	if v, ok := raw[FieldBedrooms]; ok {
		p.Bedrooms = Some(int(utils.CoerceNumber(v, 0)))
	}
	if v, ok := raw[FieldBathrooms]; ok {
		p.Bathrooms = Some(int(utils.CoerceNumber(v, DefaultBathrooms)))
	}
	if v, ok := raw[FieldImages]; ok {
		p.Images = Some(utils.CoerceStringArray(v))
	}
	if v, ok := raw[FieldAmenities]; ok {
		p.Amenities = Some(utils.CoerceStringArray(v))
	}
	if v, ok := raw[FieldPhoneNumber]; ok {
		// an empty string is allowed here and clears the number on read
		p.PhoneNumber = Some(utils.CoerceString(v, ""))
	}
	if v, ok := raw[FieldArea]; ok {
		p.Area = Some(utils.CoerceOptionalNumber(v))
	}

	if err := p.Validate(); err != nil {
		return PropertyPatch{}, err
	}
	return p, nil
}

// Validate applies the property invariants to the supplied fields.
func (p PropertyPatch) Validate() error {
	var title, location *string
	var price *float64
	if p.Title.Set {
		title = &p.Title.Value
	}
	if p.Location.Set {
		location = &p.Location.Value
	}
	if p.Price.Set {
		price = &p.Price.Value
	}
	if err := checkRequired(title, price, location); err != nil {
		return err
	}

	var bedrooms, bathrooms *int
	if p.Bedrooms.Set {
		bedrooms = &p.Bedrooms.Value
	}
	if p.Bathrooms.Set {
		bathrooms = &p.Bathrooms.Value
	}
	var area *float64
	if p.Area.Set {
		area = p.Area.Value
	}
	return checkCounts(bedrooms, bathrooms, area)
}

// IsEmpty reports whether the patch changes nothing.
func (p PropertyPatch) IsEmpty() bool {
	set, unset := p.Changes()
	return len(set) == 0 && len(unset) == 0
}

// Changes splits the patch into stored fields to write and stored fields to remove.
func (p PropertyPatch) Changes() (set map[string]any, unset []string) {
	set = map[string]any{}
	if p.Title.Set {
		set[FieldTitle] = p.Title.Value
	}
	if p.Description.Set {
		set[FieldDescription] = p.Description.Value
	}
	if p.Location.Set {
		set[FieldLocation] = p.Location.Value
	}
	if p.Price.Set {
		set[FieldPrice] = p.Price.Value
	}
	if p.Bedrooms.Set {
		set[FieldBedrooms] = p.Bedrooms.Value
	}
	if p.Bathrooms.Set {
		set[FieldBathrooms] = p.Bathrooms.Value
	}
	if p.Images.Set {
		set[FieldImages] = p.Images.Value
	}
	if p.Amenities.Set {
		set[FieldAmenities] = p.Amenities.Value
	}
	if p.PhoneNumber.Set {
		set[FieldPhoneNumber] = p.PhoneNumber.Value
	}
	if p.Area.Set {
		if p.Area.Value != nil {
			set[FieldArea] = *p.Area.Value
		} else {
			unset = append(unset, FieldArea)
		}
	}
	return set, unset
}

// Apply merges the patch into prop in place.
func (p PropertyPatch) Apply(prop *Property) {
	if p.Title.Set {
		prop.Title = p.Title.Value
	}
	if p.Description.Set {
		prop.Description = p.Description.Value
	}
	if p.Location.Set {
		prop.Location = p.Location.Value
	}
	if p.Price.Set {
		prop.Price = p.Price.Value
	}
	if p.Bedrooms.Set {
		prop.Bedrooms = p.Bedrooms.Value
	}
	if p.Bathrooms.Set {
		prop.Bathrooms = p.Bathrooms.Value
	}
	if p.Images.Set {
		prop.Images = append([]string{}, p.Images.Value...)
	}
	if p.Amenities.Set {
		prop.Amenities = append([]string{}, p.Amenities.Value...)
	}
	if p.PhoneNumber.Set {
		prop.PhoneNumber = utils.CoerceOptionalString(p.PhoneNumber.Value)
	}
	if p.Area.Set {
		if p.Area.Value != nil {
			v := *p.Area.Value
			prop.Area = &v
		} else {
			prop.Area = nil
		}
	}
}
