package repositories

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/karlseguin/ccache/v3"
	"go.uber.org/zap"

	"github.com/jaykurgat/Nyumba-Finder/domain"
)

// CacheRepository caches single-property reads on two levels.
type CacheRepository interface {
	GetProperty(id string) (*domain.Property, bool)
	SetProperty(property domain.Property)
	DeleteProperty(id string)
}

// cacheRepository combines an in-process ccache with an optional memcached.
// The local level holds private clones; callers never see its values.
type cacheRepository struct {
	localCache      *ccache.Cache[*domain.Property]
	memcachedClient *memcache.Client
	ttl             time.Duration
	logger          *zap.Logger
}

// NewCacheRepository creates the cache. An empty memcachedHost keeps only the
// local level.
func NewCacheRepository(memcachedHost string, ttl time.Duration, logger *zap.Logger) CacheRepository {
	localCache := ccache.New(ccache.Configure[*domain.Property]().MaxSize(1000))

	var memcachedClient *memcache.Client
	if memcachedHost != "" {
		memcachedClient = memcache.New(memcachedHost)
		logger.Info("Cache repository initialized with Memcached", zap.String("host", memcachedHost))
	} else {
		logger.Info("Cache repository initialized without Memcached")
	}

	return &cacheRepository{
		localCache:      localCache,
		memcachedClient: memcachedClient,
		ttl:             ttl,
		logger:          logger,
	}
}

func propertyKey(id string) string {
	return "property:" + id
}

// GetProperty looks in the local cache first, then in Memcached.
func (r *cacheRepository) GetProperty(id string) (*domain.Property, bool) {
	key := propertyKey(id)

	item := r.localCache.Get(key)
	if item != nil && !item.Expired() {
		p := item.Value().Clone()
		r.logger.Debug("Cache HIT (local)", zap.String("key", key))
		return &p, true
	}

	if r.memcachedClient == nil {
		return nil, false
	}

	memcachedItem, err := r.memcachedClient.Get(key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			r.logger.Warn("Error getting from Memcached", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var p domain.Property
	if err := json.Unmarshal(memcachedItem.Value, &p); err != nil {
		r.logger.Warn("Error unmarshaling cache data from Memcached", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	// promote to the local level for the next read
	local := p.Clone()
	r.localCache.Set(key, &local, r.ttl)
	r.logger.Debug("Cache HIT (Memcached)", zap.String("key", key))

	return &p, true
}

// SetProperty stores the property on both levels.
func (r *cacheRepository) SetProperty(property domain.Property) {
	key := propertyKey(property.ID)
	local := property.Clone()
	r.localCache.Set(key, &local, r.ttl)

	if r.memcachedClient == nil {
		return
	}

	data, err := json.Marshal(property)
	if err != nil {
		r.logger.Warn("Error marshaling cache data for Memcached", zap.String("key", key), zap.Error(err))
		return
	}

	item := &memcache.Item{
		Key:        key,
		Value:      data,
		Expiration: int32(r.ttl / time.Second),
	}
	if err := r.memcachedClient.Set(item); err != nil {
		r.logger.Warn("Error setting cache in Memcached", zap.String("key", key), zap.Error(err))
	}
}

// DeleteProperty removes the property from both levels.
func (r *cacheRepository) DeleteProperty(id string) {
	key := propertyKey(id)
	r.localCache.Delete(key)

	if r.memcachedClient == nil {
		return
	}
	if err := r.memcachedClient.Delete(key); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		r.logger.Warn("Error deleting from Memcached", zap.String("key", key), zap.Error(err))
	}
}
