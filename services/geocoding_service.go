package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/jaykurgat/Nyumba-Finder/domain"
)

// Nairobi CBD, returned for every location until a real geocoder is wired in.
const (
	defaultLat = -1.286389
	defaultLng = 36.817223
)

// GeocodingService resolves a free-text location to coordinates.
type GeocodingService interface {
	Coordinates(ctx context.Context, location string) (domain.Coordinates, error)
}

type stubGeocodingService struct {
	logger *zap.Logger
}

// NewGeocodingService returns the fixed-point geocoder.
func NewGeocodingService(logger *zap.Logger) GeocodingService {
	return &stubGeocodingService{logger: logger}
}

func (s *stubGeocodingService) Coordinates(ctx context.Context, location string) (domain.Coordinates, error) {
	s.logger.Debug("Geocoding location", zap.String("location", location))
	return domain.Coordinates{Lat: defaultLat, Lng: defaultLng}, nil
}
