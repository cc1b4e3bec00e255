package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-events/internal/common/apperror"
	"campus-events/internal/config"
	"campus-events/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Record is a tenant directory entry stored in the platform database
type Record struct {
	ID        string    `bson:"_id" json:"id"` // Tenant identifier, e.g. "rpi"
	Name      string    `bson:"name" json:"name"`
	MongoURI  string    `bson:"mongo_uri" json:"mongo_uri"`
	Database  string    `bson:"database" json:"database"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Directory maps a tenant identifier to the storage it lives in
type Directory interface {
	Lookup(ctx context.Context, tenantID string) (config.TenantTarget, error)
}

// DirectoryImpl checks the static config mapping, then the platform "tenants"
// collection, then the default target.
type DirectoryImpl struct {
	static     map[string]config.TenantTarget
	collection *mongo.Collection
	fallback   *config.TenantTarget
}

func NewDirectory(cfg *config.Config, mongodb *database.MongodbDB) *DirectoryImpl {
	dir := NewStaticDirectory(cfg.TenantDatabases, cfg.DefaultTarget())
	dir.collection = mongodb.DB.Collection("tenants")
	return dir
}

// NewStaticDirectory resolves only from the given mapping and fallback
func NewStaticDirectory(targets map[string]config.TenantTarget, fallback *config.TenantTarget) *DirectoryImpl {
	if targets == nil {
		targets = map[string]config.TenantTarget{}
	}
	return &DirectoryImpl{static: targets, fallback: fallback}
}

func (d *DirectoryImpl) Lookup(ctx context.Context, tenantID string) (config.TenantTarget, error) {
	if target, ok := d.static[tenantID]; ok {
		return target, nil
	}

	if d.collection != nil {
		var rec Record
		err := d.collection.FindOne(ctx, bson.M{"_id": tenantID}).Decode(&rec)
		switch {
		case err == nil:
			if rec.MongoURI == "" || rec.Database == "" {
				return config.TenantTarget{}, fmt.Errorf("tenant %s directory entry lacks a uri or database: %w", tenantID, apperror.ErrConfiguration)
			}
			return config.TenantTarget{URI: rec.MongoURI, Database: rec.Database}, nil
		case !errors.Is(err, mongo.ErrNoDocuments):
			return config.TenantTarget{}, fmt.Errorf("lookup tenant %s: %w", tenantID, err)
		}
	}

	if d.fallback != nil {
		return *d.fallback, nil
	}
	return config.TenantTarget{}, fmt.Errorf("tenant %s has no storage mapping and no default is configured: %w", tenantID, apperror.ErrConfiguration)
}

// Upsert writes a directory entry to the platform database
func (d *DirectoryImpl) Upsert(ctx context.Context, rec Record) error {
	if d.collection == nil {
		return fmt.Errorf("tenant directory has no backing collection: %w", apperror.ErrConfiguration)
	}
	if rec.ID == "" || rec.MongoURI == "" || rec.Database == "" {
		return fmt.Errorf("tenant directory entry needs an id, uri and database: %w", apperror.ErrConfiguration)
	}
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"name":       rec.Name,
			"mongo_uri":  rec.MongoURI,
			"database":   rec.Database,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := d.collection.UpdateOne(ctx, bson.M{"_id": rec.ID}, update, options.Update().SetUpsert(true))
	return err
}
