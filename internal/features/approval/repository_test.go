package approval

import (
	"context"
	"testing"
	"time"

	"campus-events/internal/tenant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// MockModelSource binds every requested model to one collection
type MockModelSource struct {
	Coll *mongo.Collection
}

func (m *MockModelSource) Models(ctx context.Context, names ...string) (tenant.Models, error) {
	models := tenant.Models{}
	for _, name := range names {
		models[name] = &tenant.Model{Name: name, Tenant: "rpi", Collection: m.Coll}
	}
	return models, nil
}

type findAndModifyCommand struct {
	Query  bson.M `bson:"query"`
	Update bson.M `bson:"update"`
}

type updateCommand struct {
	Updates []struct {
		Q bson.M        `bson:"q"`
		U bson.RawValue `bson:"u"`
	} `bson:"updates"`
}

func startedFindAndModify(mt *mtest.T) findAndModifyCommand {
	mt.Helper()
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	require.Equal(mt, "findAndModify", evt.CommandName)

	var cmd findAndModifyCommand
	require.NoError(mt, bson.Unmarshal(evt.Command, &cmd))
	return cmd
}

func startedUpdate(mt *mtest.T) updateCommand {
	mt.Helper()
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	require.Equal(mt, "update", evt.CommandName)

	var cmd updateCommand
	require.NoError(mt, bson.Unmarshal(evt.Command, &cmd))
	require.Len(mt, cmd.Updates, 1)
	return cmd
}

func instanceDoc(id primitive.ObjectID, index int, statuses ...StepStatus) bson.D {
	steps := bson.A{}
	for _, s := range statuses {
		steps = append(steps, bson.D{{Key: "role", Value: "facilities"}, {Key: "status", Value: string(s)}})
	}
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "event_id", Value: primitive.NewObjectID()},
		{Key: "approvals", Value: steps},
		{Key: "current_step_index", Value: index},
		{Key: "comments", Value: bson.A{}},
	}
}

func TestRepositoryStepTransitions(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mt.Run("Advance Is Guarded By Index And Pending Status", func(mt *mtest.T) {
		repo := NewApprovalRepository(&MockModelSource{Coll: mt.Coll})
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: instanceDoc(id, 2, StepApproved, StepApproved)},
		))

		got, err := repo.AdvanceStep(context.Background(), id, 1, "u-2", at)
		require.NoError(mt, err)
		require.NotNil(mt, got)
		assert.Equal(mt, 2, got.CurrentStepIndex)

		cmd := startedFindAndModify(mt)
		assert.Equal(mt, id, cmd.Query["_id"])
		assert.EqualValues(mt, 1, cmd.Query["current_step_index"])
		assert.Equal(mt, string(StepPending), cmd.Query["approvals.1.status"])

		set, ok := cmd.Update["$set"].(bson.M)
		require.True(mt, ok)
		assert.Equal(mt, string(StepApproved), set["approvals.1.status"])
		assert.Equal(mt, "u-2", set["approvals.1.approved_by_user_id"])
		inc, ok := cmd.Update["$inc"].(bson.M)
		require.True(mt, ok)
		assert.EqualValues(mt, 1, inc["current_step_index"])
	})

	mt.Run("Reject Keeps The Pointer", func(mt *mtest.T) {
		repo := NewApprovalRepository(&MockModelSource{Coll: mt.Coll})
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: instanceDoc(id, 0, StepRejected)},
		))

		got, err := repo.RejectStep(context.Background(), id, 0, "u-3", "double booked", at)
		require.NoError(mt, err)
		require.NotNil(mt, got)
		assert.True(mt, got.Rejected())

		cmd := startedFindAndModify(mt)
		assert.Equal(mt, id, cmd.Query["_id"])
		assert.EqualValues(mt, 0, cmd.Query["current_step_index"])
		assert.Equal(mt, string(StepPending), cmd.Query["approvals.0.status"])
		assert.NotContains(mt, cmd.Update, "$inc")

		set, ok := cmd.Update["$set"].(bson.M)
		require.True(mt, ok)
		assert.Equal(mt, string(StepRejected), set["approvals.0.status"])
		assert.Equal(mt, "double booked", set["approvals.0.reason"])
	})

	mt.Run("Lost Race Returns Nil Instance", func(mt *mtest.T) {
		repo := NewApprovalRepository(&MockModelSource{Coll: mt.Coll})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		got, err := repo.AdvanceStep(context.Background(), primitive.NewObjectID(), 0, "u-2", at)
		assert.NoError(mt, err)
		assert.Nil(mt, got)
	})

	mt.Run("Server Error Propagates", func(mt *mtest.T) {
		repo := NewApprovalRepository(&MockModelSource{Coll: mt.Coll})
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad update",
		}))

		got, err := repo.RejectStep(context.Background(), primitive.NewObjectID(), 0, "u-2", "no", at)
		assert.Error(mt, err)
		assert.Nil(mt, got)
	})
}

func TestRepositoryComments(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("Top Level Comment Filters On Instance Only", func(mt *mtest.T) {
		repo := NewApprovalRepository(&MockModelSource{Coll: mt.Coll})
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		ok, err := repo.PushComment(context.Background(), id, Comment{ID: primitive.NewObjectID(), UserID: "u-1", Text: "hi"})
		require.NoError(mt, err)
		assert.True(mt, ok)

		cmd := startedUpdate(mt)
		assert.Equal(mt, id, cmd.Updates[0].Q["_id"])
		assert.NotContains(mt, cmd.Updates[0].Q, "comments._id")
	})

	mt.Run("Reply Filters On Parent", func(mt *mtest.T) {
		repo := NewApprovalRepository(&MockModelSource{Coll: mt.Coll})
		id, parent := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		ok, err := repo.PushComment(context.Background(), id, Comment{ID: primitive.NewObjectID(), UserID: "u-1", Text: "re", ParentCommentID: &parent})
		require.NoError(mt, err)
		assert.False(mt, ok)

		cmd := startedUpdate(mt)
		assert.Equal(mt, id, cmd.Updates[0].Q["_id"])
		assert.Equal(mt, parent, cmd.Updates[0].Q["comments._id"])
	})

	mt.Run("Pull Matches On Comment", func(mt *mtest.T) {
		repo := NewApprovalRepository(&MockModelSource{Coll: mt.Coll})
		id, commentID := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		ok, err := repo.PullComment(context.Background(), id, commentID)
		require.NoError(mt, err)
		assert.True(mt, ok)

		cmd := startedUpdate(mt)
		assert.Equal(mt, id, cmd.Updates[0].Q["_id"])
		assert.Equal(mt, commentID, cmd.Updates[0].Q["comments._id"])
		assert.Equal(mt, bson.TypeArray, cmd.Updates[0].U.Type)
	})

	mt.Run("Pull Of Missing Comment", func(mt *mtest.T) {
		repo := NewApprovalRepository(&MockModelSource{Coll: mt.Coll})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		ok, err := repo.PullComment(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.False(mt, ok)
	})
}
