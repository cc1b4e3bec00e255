package audit

import (
	"context"

	common_models "campus-events/internal/common/models"
	"campus-events/internal/tenant"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ModelAuditLog = "AuditLog"

type AuditRepository interface {
	Create(ctx context.Context, log common_models.AuditLog) error
	List(ctx context.Context, filter Filter, limit, offset int64) ([]common_models.AuditLog, error)
}

// Schemas registers the audit collection with the tenant resolver
func Schemas() []tenant.Schema {
	return []tenant.Schema{
		{
			Name:       ModelAuditLog,
			Collection: "audit_logs",
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "record_id", Value: 1}, {Key: "timestamp", Value: -1}}},
			},
		},
	}
}

type AuditRepositoryImpl struct {
	Models tenant.ModelSource
}

func NewAuditRepository(models tenant.ModelSource) AuditRepository {
	return &AuditRepositoryImpl{Models: models}
}

func (r *AuditRepositoryImpl) collection(ctx context.Context) (*mongo.Collection, error) {
	models, err := r.Models.Models(ctx, ModelAuditLog)
	if err != nil {
		return nil, err
	}
	return models.Collection(ModelAuditLog), nil
}

func (r *AuditRepositoryImpl) Create(ctx context.Context, log common_models.AuditLog) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	_, err = coll.InsertOne(ctx, log)
	return err
}

func (r *AuditRepositoryImpl) List(ctx context.Context, filter Filter, limit, offset int64) ([]common_models.AuditLog, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"timestamp": -1})

	query := bson.M{}
	if filter.Module != "" {
		query["module"] = filter.Module
	}
	if filter.RecordID != "" {
		query["record_id"] = filter.RecordID
	}

	cursor, err := coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []common_models.AuditLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
