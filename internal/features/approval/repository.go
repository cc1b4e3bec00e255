package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-events/internal/tenant"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ApprovalRepository persists the flow definition and approval instances of
// the tenant bound to ctx. The step transitions are conditional updates: they
// return a nil instance when the expected step index no longer holds.
type ApprovalRepository interface {
	FindFlow(ctx context.Context) (*FlowDefinition, error)
	SaveFlow(ctx context.Context, flow *FlowDefinition) (*FlowDefinition, error)

	Create(ctx context.Context, instance *Instance) error
	FindByEventID(ctx context.Context, eventID primitive.ObjectID) (*Instance, error)
	DeleteByEventID(ctx context.Context, eventID primitive.ObjectID) error
	AdvanceStep(ctx context.Context, id primitive.ObjectID, index int, userID string, at time.Time) (*Instance, error)
	RejectStep(ctx context.Context, id primitive.ObjectID, index int, userID, reason string, at time.Time) (*Instance, error)

	// PushComment reports false when the instance or the parent comment is missing
	PushComment(ctx context.Context, id primitive.ObjectID, comment Comment) (bool, error)
	// PullComment reports false when the comment is missing
	PullComment(ctx context.Context, id, commentID primitive.ObjectID) (bool, error)
}

// Schemas registers the approval collections with the tenant resolver
func Schemas() []tenant.Schema {
	return []tenant.Schema{
		{Name: ModelFlow, Collection: "approval_flows"},
		{
			Name:       ModelInstance,
			Collection: "approval_instances",
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			},
		},
	}
}

type ApprovalRepositoryImpl struct {
	Models tenant.ModelSource
}

func NewApprovalRepository(models tenant.ModelSource) ApprovalRepository {
	return &ApprovalRepositoryImpl{Models: models}
}

func (r *ApprovalRepositoryImpl) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	models, err := r.Models.Models(ctx, name)
	if err != nil {
		return nil, err
	}
	return models.Collection(name), nil
}

func (r *ApprovalRepositoryImpl) FindFlow(ctx context.Context) (*FlowDefinition, error) {
	coll, err := r.collection(ctx, ModelFlow)
	if err != nil {
		return nil, err
	}

	var flow FlowDefinition
	err = coll.FindOne(ctx, bson.M{}).Decode(&flow)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // Tenant has not configured approvals
		}
		return nil, err
	}
	return &flow, nil
}

func (r *ApprovalRepositoryImpl) SaveFlow(ctx context.Context, flow *FlowDefinition) (*FlowDefinition, error) {
	coll, err := r.collection(ctx, ModelFlow)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"steps":      flow.Steps,
			"updated_by": flow.UpdatedBy,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved FlowDefinition
	if err := coll.FindOneAndUpdate(ctx, bson.M{}, update, opts).Decode(&saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ApprovalRepositoryImpl) Create(ctx context.Context, instance *Instance) error {
	coll, err := r.collection(ctx, ModelInstance)
	if err != nil {
		return err
	}

	result, err := coll.InsertOne(ctx, instance)
	if err != nil {
		return err
	}
	instance.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ApprovalRepositoryImpl) FindByEventID(ctx context.Context, eventID primitive.ObjectID) (*Instance, error) {
	coll, err := r.collection(ctx, ModelInstance)
	if err != nil {
		return nil, err
	}

	var instance Instance
	err = coll.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&instance)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &instance, nil
}

func (r *ApprovalRepositoryImpl) DeleteByEventID(ctx context.Context, eventID primitive.ObjectID) error {
	coll, err := r.collection(ctx, ModelInstance)
	if err != nil {
		return err
	}
	_, err = coll.DeleteOne(ctx, bson.M{"event_id": eventID})
	return err
}

// AdvanceStep approves step index and moves the pointer past it, only if the
// pointer still sits on index and the step is still pending.
func (r *ApprovalRepositoryImpl) AdvanceStep(ctx context.Context, id primitive.ObjectID, index int, userID string, at time.Time) (*Instance, error) {
	step := fmt.Sprintf("approvals.%d", index)
	update := bson.M{
		"$set": bson.M{
			step + ".status":              StepApproved,
			step + ".approved_by_user_id": userID,
			step + ".approved_at":         at,
			"updated_at":                  at,
		},
		"$inc": bson.M{"current_step_index": 1},
	}
	return r.transition(ctx, id, index, update)
}

// RejectStep marks step index rejected under the same guard; the pointer stays.
func (r *ApprovalRepositoryImpl) RejectStep(ctx context.Context, id primitive.ObjectID, index int, userID, reason string, at time.Time) (*Instance, error) {
	step := fmt.Sprintf("approvals.%d", index)
	update := bson.M{
		"$set": bson.M{
			step + ".status":              StepRejected,
			step + ".rejected_by_user_id": userID,
			step + ".rejected_at":         at,
			step + ".reason":              reason,
			"updated_at":                  at,
		},
	}
	return r.transition(ctx, id, index, update)
}

func (r *ApprovalRepositoryImpl) transition(ctx context.Context, id primitive.ObjectID, index int, update bson.M) (*Instance, error) {
	coll, err := r.collection(ctx, ModelInstance)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id":                                      id,
		"current_step_index":                       index,
		fmt.Sprintf("approvals.%d.status", index): StepPending,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var instance Instance
	err = coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&instance)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &instance, nil
}

func (r *ApprovalRepositoryImpl) PushComment(ctx context.Context, id primitive.ObjectID, comment Comment) (bool, error) {
	coll, err := r.collection(ctx, ModelInstance)
	if err != nil {
		return false, err
	}

	filter := bson.M{"_id": id}
	if comment.ParentCommentID != nil {
		filter["comments._id"] = *comment.ParentCommentID
	}
	update := bson.M{
		"$push": bson.M{
			"comments": bson.M{"$each": []Comment{comment}, "$position": 0},
		},
		"$set": bson.M{"updated_at": comment.CreatedAt},
	}

	result, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// PullComment removes the comment and clears parent_comment_id on its replies
// in a single pipeline update.
func (r *ApprovalRepositoryImpl) PullComment(ctx context.Context, id, commentID primitive.ObjectID) (bool, error) {
	coll, err := r.collection(ctx, ModelInstance)
	if err != nil {
		return false, err
	}

	remaining := bson.D{{Key: "$filter", Value: bson.D{
		{Key: "input", Value: "$comments"},
		{Key: "as", Value: "c"},
		{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$c._id", commentID}}}},
	}}}
	detach := bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$$c.parent_comment_id", commentID}}},
		bson.D{{Key: "$mergeObjects", Value: bson.A{"$$c", bson.D{{Key: "parent_comment_id", Value: nil}}}}},
		"$$c",
	}}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "comments", Value: bson.D{{Key: "$map", Value: bson.D{
				{Key: "input", Value: remaining},
				{Key: "as", Value: "c"},
				{Key: "in", Value: detach},
			}}}},
			{Key: "updated_at", Value: time.Now()},
		}}},
	}

	result, err := coll.UpdateOne(ctx, bson.M{"_id": id, "comments._id": commentID}, pipeline)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}
