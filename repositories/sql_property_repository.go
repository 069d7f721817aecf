package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jaykurgat/Nyumba-Finder/domain"
)

// propertyRow is the relational shape of a property. List fields are kept as
// JSON text so they round-trip through the same coercion as documents.
type propertyRow struct {
	ID          string   `gorm:"primaryKey;size:36"`
	Title       string   `gorm:"size:255;index"`
	Description string   `gorm:"type:text"`
	Location    string   `gorm:"size:255"`
	Price       float64  `gorm:"index"`
	Images      string   `gorm:"type:text"`
	Bedrooms    int      `gorm:"index"`
	Bathrooms   int      `gorm:"index"`
	Area        *float64
	Amenities   string  `gorm:"type:text"`
	PhoneNumber *string `gorm:"size:50"`
}

// TableName pins the table name.
func (propertyRow) TableName() string {
	return "properties"
}

var sqlColumns = map[string]string{
	domain.FieldTitle:       "title",
	domain.FieldDescription: "description",
	domain.FieldLocation:    "location",
	domain.FieldPrice:       "price",
	domain.FieldImages:      "images",
	domain.FieldBedrooms:    "bedrooms",
	domain.FieldBathrooms:   "bathrooms",
	domain.FieldArea:        "area",
	domain.FieldAmenities:   "amenities",
	domain.FieldPhoneNumber: "phone_number",
}

// sqlPropertyRepository is the relational backend, built on GORM.
type sqlPropertyRepository struct {
	db *gorm.DB
}

// NewSQLPropertyRepository builds the relational backend. A nil db yields a
// repository whose every call fails with domain.ErrStoreUnavailable.
func NewSQLPropertyRepository(db *gorm.DB) PropertyRepository {
	return &sqlPropertyRepository{db: db}
}

func (r *sqlPropertyRepository) conn(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return r.db.WithContext(ctx), nil
}

// Get loads one row: SELECT * FROM properties WHERE id = ?
func (r *sqlPropertyRepository) Get(ctx context.Context, id string) (*domain.Property, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var row propertyRow
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("error finding property %s: %w", id, err)
	}

	p := row.toProperty()
	return &p, nil
}

// List applies the range predicates in SQL and orders by price or title.
func (r *sqlPropertyRepository) List(ctx context.Context, query PropertyQuery) ([]domain.Property, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	qb := db.Model(&propertyRow{})
	if query.MinPrice != nil {
		qb = qb.Where("price >= ?", *query.MinPrice)
	}
	if query.MaxPrice != nil {
		qb = qb.Where("price <= ?", *query.MaxPrice)
	}
	if query.MinBedrooms != nil {
		qb = qb.Where("bedrooms >= ?", *query.MinBedrooms)
	}
	if query.MinBathrooms != nil {
		qb = qb.Where("bathrooms >= ?", *query.MinBathrooms)
	}

	var rows []propertyRow
	if err := qb.Order(sqlColumns[orderField(query)]).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error querying properties: %w", err)
	}

	properties := make([]domain.Property, 0, len(rows))
	for _, row := range rows {
		properties = append(properties, row.toProperty())
	}
	return properties, nil
}

// Create inserts a new row with a generated UUID.
func (r *sqlPropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	row := propertyRow{
		ID:          uuid.NewString(),
		Title:       property.Title,
		Description: property.Description,
		Location:    property.Location,
		Price:       property.Price,
		Images:      encodeList(property.Images),
		Bedrooms:    property.Bedrooms,
		Bathrooms:   property.Bathrooms,
		Area:        property.Area,
		Amenities:   encodeList(property.Amenities),
		PhoneNumber: property.PhoneNumber,
	}
	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("error inserting property: %w", err)
	}
	property.ID = row.ID
	return nil
}

// Update writes only the patched columns. A removed area becomes NULL.
func (r *sqlPropertyRepository) Update(ctx context.Context, id string, patch domain.PropertyPatch) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	// RowsAffected is 0 on MySQL when the values are unchanged, so check first.
	var count int64
	if err := db.Model(&propertyRow{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("error checking property %s: %w", id, err)
	}
	if count == 0 {
		return domain.ErrNotFound
	}

	set, unset := patch.Changes()
	updates := make(map[string]any, len(set)+len(unset))
	for field, value := range set {
		if list, ok := value.([]string); ok {
			value = encodeList(list)
		}
		updates[sqlColumns[field]] = value
	}
	for _, field := range unset {
		updates[sqlColumns[field]] = nil
	}
	if len(updates) == 0 {
		return nil
	}

	if err := db.Model(&propertyRow{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("error updating property %s: %w", id, err)
	}
	return nil
}

// Delete runs DELETE FROM properties WHERE id = ?
func (r *sqlPropertyRepository) Delete(ctx context.Context, id string) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	res := db.Where("id = ?", id).Delete(&propertyRow{})
	if res.Error != nil {
		return fmt.Errorf("error deleting property %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Migrate creates or updates the properties table.
func (r *sqlPropertyRepository) Migrate(ctx context.Context) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return db.AutoMigrate(&propertyRow{})
}

func (row propertyRow) toProperty() domain.Property {
	doc := map[string]any{
		domain.FieldTitle:       row.Title,
		domain.FieldDescription: row.Description,
		domain.FieldLocation:    row.Location,
		domain.FieldPrice:       row.Price,
		domain.FieldImages:      decodeList(row.Images),
		domain.FieldBedrooms:    row.Bedrooms,
		domain.FieldBathrooms:   row.Bathrooms,
		domain.FieldAmenities:   decodeList(row.Amenities),
	}
	if row.Area != nil {
		doc[domain.FieldArea] = *row.Area
	}
	if row.PhoneNumber != nil {
		doc[domain.FieldPhoneNumber] = *row.PhoneNumber
	}
	return domain.NormalizeDocument(row.ID, doc)
}

func encodeList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// decodeList returns the raw decoded JSON; coercion takes care of bad values.
func decodeList(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	return v
}
