package event

import (
	"context"
	"errors"
	"time"

	"campus-events/internal/features/approval"
	"campus-events/internal/tenant"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
	SetApprovalStatus(ctx context.Context, id primitive.ObjectID, status approval.StepStatus) error
}

// Schemas registers the events collection with the tenant resolver
func Schemas() []tenant.Schema {
	return []tenant.Schema{
		{
			Name:       ModelEvent,
			Collection: "events",
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "start_time", Value: 1}}},
				{Keys: bson.D{{Key: "status", Value: 1}}},
			},
		},
	}
}

type EventRepositoryImpl struct {
	Models tenant.ModelSource
}

func NewEventRepository(models tenant.ModelSource) EventRepository {
	return &EventRepositoryImpl{Models: models}
}

func (r *EventRepositoryImpl) collection(ctx context.Context) (*mongo.Collection, error) {
	models, err := r.Models.Models(ctx, ModelEvent)
	if err != nil {
		return nil, err
	}
	return models.Collection(ModelEvent), nil
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *Event) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}

	result, err := coll.InsertOne(ctx, event)
	if err != nil {
		return err
	}
	event.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	var event Event
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *EventRepositoryImpl) SetApprovalStatus(ctx context.Context, id primitive.ObjectID, status approval.StepStatus) error {
	var eventStatus string
	switch status {
	case approval.StepApproved:
		eventStatus = StatusApproved
	case approval.StepRejected:
		eventStatus = StatusRejected
	default:
		eventStatus = StatusPending
	}
	return r.update(ctx, id, bson.M{"status": eventStatus, "updated_at": time.Now()})
}

func (r *EventRepositoryImpl) update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	result, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}
