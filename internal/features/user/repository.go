package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-events/internal/common/apperror"
	"campus-events/internal/common/models"
	"campus-events/internal/tenant"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ModelUser = "User"

var ErrUserNotFound = fmt.Errorf("user %w", apperror.ErrNotFound)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// Schemas registers the users collection with the tenant resolver
func Schemas() []tenant.Schema {
	return []tenant.Schema{
		{
			Name:       ModelUser,
			Collection: "users",
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			},
		},
	}
}

type UserRepositoryImpl struct {
	Models tenant.ModelSource
}

func NewUserRepository(models tenant.ModelSource) UserRepository {
	return &UserRepositoryImpl{Models: models}
}

func (r *UserRepositoryImpl) collection(ctx context.Context) (*mongo.Collection, error) {
	models, err := r.Models.Models(ctx, ModelUser)
	if err != nil {
		return nil, err
	}
	return models.Collection(ModelUser), nil
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	_, err = coll.InsertOne(ctx, user)
	return err
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*models.User, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	var user models.User
	err = coll.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var objectIDs []primitive.ObjectID
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}

	if len(objectIDs) == 0 {
		return []models.User{}, nil
	}

	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
