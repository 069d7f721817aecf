package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jaykurgat/Nyumba-Finder/domain"
	"github.com/jaykurgat/Nyumba-Finder/repositories"
)

// SeedListings are the demo listings loaded by the seed command.
var SeedListings = []map[string]any{
	{
		"title":       "Spacious 2 Bedroom Apt in Kilimani",
		"price":       75000,
		"location":    "Kilimani, Nairobi",
		"description": "Modern apartment with great views and amenities.",
		"bedrooms":    2,
		"bathrooms":   2,
		"area":        120,
		"amenities":   []string{"Parking", "Swimming Pool", "Gym"},
	},
	{
		"title":       "Cozy Studio near Yaya Centre",
		"price":       40000,
		"location":    "Kilimani, Nairobi",
		"description": "Perfect studio for singles or couples.",
		"bedrooms":    0,
		"bathrooms":   1,
		"area":        45,
		"amenities":   []string{"Parking", "Security"},
	},
	{
		"title":       "Family Home in Lavington",
		"price":       150000,
		"location":    "Lavington, Nairobi",
		"description": "Beautiful 4-bedroom house with a garden.",
		"bedrooms":    4,
		"bathrooms":   3,
		"area":        300,
		"amenities":   []string{"Parking", "Garden", "Security"},
	},
	{
		"title":       "Beachfront Villa in Nyali",
		"price":       120000,
		"location":    "Nyali, Mombasa",
		"description": "Stunning villa with direct beach access.",
		"bedrooms":    3,
		"bathrooms":   3,
		"area":        250,
		"amenities":   []string{"Parking", "Swimming Pool", "Beach Access"},
	},
	{
		"title":       "Affordable Bedsitter in Roysambu",
		"price":       15000,
		"location":    "Roysambu, Nairobi",
		"description": "Budget-friendly bedsitter, close to TRM.",
		"bedrooms":    0,
		"bathrooms":   1,
		"area":        30,
		"amenities":   []string{"Security"},
	},
	{
		"title":       "Modern 1 Bedroom in Westlands",
		"price":       60000,
		"location":    "Westlands, Nairobi",
		"description": "Chic apartment in a prime location.",
		"bedrooms":    1,
		"bathrooms":   1,
		"area":        65,
		"amenities":   []string{"Parking", "Gym", "Security"},
	},
}

// Seed inserts the given listings and returns the created ids in order.
func Seed(ctx context.Context, repo repositories.PropertyRepository, listings []map[string]any, logger *zap.Logger) ([]string, error) {
	ids := make([]string, 0, len(listings))
	for i, raw := range listings {
		property, err := domain.NewPropertyFromInput(raw)
		if err != nil {
			return ids, fmt.Errorf("seed listing %d: %w", i, err)
		}
		if err := repo.Create(ctx, &property); err != nil {
			return ids, fmt.Errorf("seed listing %d: %w", i, err)
		}
		logger.Info("Seeded property", zap.String("property_id", property.ID), zap.String("title", property.Title))
		ids = append(ids, property.ID)
	}
	return ids, nil
}
