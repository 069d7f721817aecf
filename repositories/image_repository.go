package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jaykurgat/Nyumba-Finder/domain"
)

// ErrImageNotFound is returned when no stored file matches a path.
var ErrImageNotFound = errors.New("image not found in storage")

// ImageStore removes externally stored listing images.
type ImageStore interface {
	Delete(ctx context.Context, path string) error
}

// gridFSImageStore keeps images in a GridFS bucket, addressed by filename.
type gridFSImageStore struct {
	db         *mongo.Database
	bucketName string
}

// NewGridFSImageStore creates an ImageStore on the given database. A nil db
// yields a store whose Delete always fails with domain.ErrStoreUnavailable.
func NewGridFSImageStore(db *mongo.Database, bucketName string) ImageStore {
	return &gridFSImageStore{db: db, bucketName: bucketName}
}

// Delete removes every file stored under path.
func (s *gridFSImageStore) Delete(ctx context.Context, path string) error {
	if s.db == nil {
		return domain.ErrStoreUnavailable
	}

	bucket, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(s.bucketName))
	if err != nil {
		return fmt.Errorf("error opening bucket %s: %w", s.bucketName, err)
	}

	cursor, err := bucket.Find(bson.M{"filename": path})
	if err != nil {
		return fmt.Errorf("error looking up image %s: %w", path, err)
	}

	var files []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return fmt.Errorf("error reading image entries for %s: %w", path, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%s: %w", path, ErrImageNotFound)
	}

	for _, f := range files {
		if err := bucket.Delete(f.ID); err != nil {
			return fmt.Errorf("error deleting image %s: %w", path, err)
		}
	}
	return nil
}
