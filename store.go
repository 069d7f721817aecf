package main

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jaykurgat/Nyumba-Finder/config"
	"github.com/jaykurgat/Nyumba-Finder/repositories"
)

const mongoConnectTimeout = 10 * time.Second

// store bundles the persistence backends chosen by configuration.
type store struct {
	properties repositories.PropertyRepository
	images     repositories.ImageStore
	mongo      *repositories.MongoClient
	sql        *gorm.DB
}

// openStore connects the configured backends. Connection failures are logged
// and leave the backend unavailable instead of aborting startup.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) *store {
	s := &store{}

	var mongoDB *mongo.Database
	if cfg.UsesMongo() {
		s.mongo = repositories.NewMongoClient(cfg.MongoURI, cfg.MongoDatabase, logger)

		connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
		db, err := s.mongo.Connect(connectCtx)
		cancel()
		if err != nil {
			logger.Error("MongoDB unavailable", zap.Error(err))
		} else {
			mongoDB = db
		}
	} else {
		logger.Warn("MONGO_URI is not set, image cleanup is disabled")
	}
	s.images = repositories.NewGridFSImageStore(mongoDB, cfg.ImagesBucket)

	switch cfg.StoreDriver {
	case config.DriverMySQL:
		s.sql = openMySQL(cfg.MySQLDSN, logger)
		s.properties = repositories.NewSQLPropertyRepository(s.sql)
	default:
		s.properties = repositories.NewMongoPropertyRepository(mongoDB, cfg.PropertiesCollection, logger)
	}

	logger.Info("Store initialized", zap.String("driver", cfg.StoreDriver), zap.Bool("mongo", s.mongo != nil))
	return s
}

func openMySQL(dsn string, logger *zap.Logger) *gorm.DB {
	logger.Info("Connecting to MySQL")
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Error("MySQL unavailable", zap.Error(err))
		return nil
	}
	logger.Info("Connected to MySQL")
	return db
}

func (s *store) close(ctx context.Context, logger *zap.Logger) {
	if s.mongo != nil {
		if err := s.mongo.Disconnect(ctx); err != nil {
			logger.Warn("Error disconnecting from MongoDB", zap.Error(err))
		}
	}
	if s.sql != nil {
		sqlDB, err := s.sql.DB()
		if err != nil {
			logger.Warn("Error getting MySQL connection pool", zap.Error(err))
			return
		}
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Error closing MySQL connection", zap.Error(err))
		}
	}
}
