package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jaykurgat/Nyumba-Finder/domain"
	"github.com/jaykurgat/Nyumba-Finder/dto"
	"github.com/jaykurgat/Nyumba-Finder/publishers"
	"github.com/jaykurgat/Nyumba-Finder/repositories"
)

const noFieldsMessage = "No valid fields provided for update."

// PropertyService holds the listing business logic.
type PropertyService interface {
	ListProperties(ctx context.Context, filter dto.PropertyFilter) ([]domain.Property, error)
	GetProperty(ctx context.Context, id string) (*domain.Property, error)
	CreateProperty(ctx context.Context, raw map[string]any) (*domain.Property, error)
	UpdateProperty(ctx context.Context, id string, raw map[string]any) (*domain.Property, error)
	DeleteProperty(ctx context.Context, id string) error
	// InvalidateProperty drops every cached copy of id, including a fill that is
	// still in flight.
	InvalidateProperty(id string)
}

type propertyService struct {
	repo        repositories.PropertyRepository
	images      repositories.ImageStore
	cache       repositories.CacheRepository
	publisher   publishers.EventPublisher
	logger      *zap.Logger
	concurrency int

	// generations counts writes per id. A cache fill is only kept when no
	// write started or finished while the store was being read.
	generations sync.Map // id -> *atomic.Uint64
	// fillMu orders a fill's generation check and cache write against
	// invalidation.
	fillMu sync.Mutex
}

// NewPropertyService wires the service. concurrency bounds the parallel image
// deletions of a single delete; values below 1 mean one at a time.
func NewPropertyService(
	repo repositories.PropertyRepository,
	images repositories.ImageStore,
	cache repositories.CacheRepository,
	publisher publishers.EventPublisher,
	logger *zap.Logger,
	concurrency int,
) PropertyService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &propertyService{
		repo:        repo,
		images:      images,
		cache:       cache,
		publisher:   publisher,
		logger:      logger,
		concurrency: concurrency,
	}
}

// ListProperties always queries the store; list results are not cached.
func (s *propertyService) ListProperties(ctx context.Context, filter dto.PropertyFilter) ([]domain.Property, error) {
	s.logger.Debug("Listing properties",
		zap.String("q", filter.Query),
		zap.String("location", filter.Location),
		zap.Strings("amenities", filter.Amenities))

	properties, err := s.repo.List(ctx, buildQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("error fetching properties: %w", err)
	}

	result := applyFilters(properties, filter)
	s.logger.Debug("Properties filtered", zap.Int("fetched", len(properties)), zap.Int("returned", len(result)))
	return result, nil
}

// GetProperty reads through the cache.
func (s *propertyService) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	if p, ok := s.cache.GetProperty(id); ok {
		return p, nil
	}

	gen := s.generation(id).Load()
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.fillMu.Lock()
	if s.generation(id).Load() == gen {
		s.cache.SetProperty(*p)
	} else {
		s.logger.Debug("Skipping stale cache fill", zap.String("property_id", id))
	}
	s.fillMu.Unlock()
	return p, nil
}

// InvalidateProperty bumps the generation of id and clears both cache levels.
func (s *propertyService) InvalidateProperty(id string) {
	s.fillMu.Lock()
	defer s.fillMu.Unlock()
	s.generation(id).Add(1)
	s.cache.DeleteProperty(id)
}

func (s *propertyService) generation(id string) *atomic.Uint64 {
	if v, ok := s.generations.Load(id); ok {
		return v.(*atomic.Uint64)
	}
	v, _ := s.generations.LoadOrStore(id, new(atomic.Uint64))
	return v.(*atomic.Uint64)
}

func (s *propertyService) CreateProperty(ctx context.Context, raw map[string]any) (*domain.Property, error) {
	property, err := domain.NewPropertyFromInput(raw)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &property); err != nil {
		return nil, fmt.Errorf("error listing property: %w", err)
	}
	s.logger.Info("Property created", zap.String("property_id", property.ID))

	s.publish(ctx, publishers.ActionCreate, property.ID)
	return &property, nil
}

// UpdateProperty applies a sparse update and returns the stored record.
func (s *propertyService) UpdateProperty(ctx context.Context, id string, raw map[string]any) (*domain.Property, error) {
	patch, err := domain.BuildPatch(raw)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, &domain.ValidationError{Message: noFieldsMessage}
	}

	s.generation(id).Add(1)
	err = s.repo.Update(ctx, id, patch)
	s.InvalidateProperty(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating property: %w", err)
	}

	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Property updated", zap.String("property_id", id))

	s.publish(ctx, publishers.ActionUpdate, id)
	return updated, nil
}

// DeleteProperty removes the record after a best-effort cleanup of its images.
// Image failures are logged and never fail the delete.
func (s *propertyService) DeleteProperty(ctx context.Context, id string) error {
	property, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	s.deleteImages(ctx, id, property.Images)

	s.generation(id).Add(1)
	err = s.repo.Delete(ctx, id)
	s.InvalidateProperty(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("error deleting property: %w", err)
	}
	s.logger.Info("Property deleted", zap.String("property_id", id))

	s.publish(ctx, publishers.ActionDelete, id)
	return nil
}

func (s *propertyService) deleteImages(ctx context.Context, id string, images []string) {
	if len(images) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, imageURL := range images {
		path, err := StoragePathFromURL(imageURL)
		if err != nil {
			s.logger.Warn("Could not extract storage path from image URL",
				zap.String("property_id", id), zap.Error(err))
			continue
		}

		g.Go(func() error {
			if err := s.images.Delete(gctx, path); err != nil {
				s.logger.Warn("Failed to delete image from storage",
					zap.String("property_id", id),
					zap.String("path", path),
					zap.Error(err))
			}
			return nil
		})
	}

	// goroutines never return an error
	_ = g.Wait()
	s.logger.Debug("Image cleanup finished", zap.String("property_id", id), zap.Int("images", len(images)))
}

func (s *propertyService) publish(ctx context.Context, action, id string) {
	if err := s.publisher.Publish(ctx, action, id); err != nil {
		s.logger.Warn("Failed to publish property event",
			zap.String("action", action),
			zap.String("property_id", id),
			zap.Error(err))
	}
}
