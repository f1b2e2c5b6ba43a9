package smtp

import (
	"context"
	"time"

	"go-certify/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SmtpConfigRepository interface {
	Create(ctx context.Context, config *SmtpConfig) error
	GetByID(ctx context.Context, id string) (*SmtpConfig, error)
	GetDefault(ctx context.Context) (*SmtpConfig, error)
	List(ctx context.Context) ([]SmtpConfig, error)
	Update(ctx context.Context, config *SmtpConfig) error
	Delete(ctx context.Context, id string) error
	UnsetDefaultExcept(ctx context.Context, id primitive.ObjectID) error
}

type SmtpConfigRepositoryImpl struct {
	collection *mongo.Collection
}

func NewSmtpConfigRepository(db *database.MongodbDB) SmtpConfigRepository {
	return &SmtpConfigRepositoryImpl{
		collection: db.DB.Collection("smtp_configs"),
	}
}

func (r *SmtpConfigRepositoryImpl) Create(ctx context.Context, config *SmtpConfig) error {
	config.CreatedAt = time.Now()
	config.UpdatedAt = time.Now()

	if config.ID.IsZero() {
		config.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, config)
	return err
}

func (r *SmtpConfigRepositoryImpl) GetByID(ctx context.Context, id string) (*SmtpConfig, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var config SmtpConfig
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func (r *SmtpConfigRepositoryImpl) GetDefault(ctx context.Context) (*SmtpConfig, error) {
	var config SmtpConfig
	err := r.collection.FindOne(ctx, bson.M{"is_default": true}).Decode(&config)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

func (r *SmtpConfigRepositoryImpl) List(ctx context.Context) ([]SmtpConfig, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var configs []SmtpConfig
	if err = cursor.All(ctx, &configs); err != nil {
		return nil, err
	}

	return configs, nil
}

func (r *SmtpConfigRepositoryImpl) Update(ctx context.Context, config *SmtpConfig) error {
	config.UpdatedAt = time.Now()

	filter := bson.M{"_id": config.ID}
	update := bson.M{"$set": config}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

func (r *SmtpConfigRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

// UnsetDefaultExcept clears is_default on every config other than id,
// keeping the single-default invariant.
func (r *SmtpConfigRepositoryImpl) UnsetDefaultExcept(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": bson.M{"$ne": id}, "is_default": true}
	update := bson.M{"$set": bson.M{"is_default": false, "updated_at": time.Now()}}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}
