package domain

// Amenities is the catalogue offered by the search and listing forms.
var Amenities = []string{
	"Parking",
	"Swimming Pool",
	"Gym",
	"Security",
	"Balcony",
	"Garden",
	"Internet Ready",
	"Servant Quarters",
	"Lift",
	"Water Included",
	"Beach Access",
	"Air Conditioning",
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
