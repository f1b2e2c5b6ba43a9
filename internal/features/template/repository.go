package template

import (
	"context"
	"time"

	"go-certify/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TemplateRepository interface {
	Create(ctx context.Context, template *CertificateTemplate) error
	GetByID(ctx context.Context, id string) (*CertificateTemplate, error)
	List(ctx context.Context) ([]CertificateTemplate, error)
	Update(ctx context.Context, template *CertificateTemplate) error
	Delete(ctx context.Context, id string) error
}

type TemplateRepositoryImpl struct {
	collection *mongo.Collection
}

func NewTemplateRepository(db *database.MongodbDB) TemplateRepository {
	return &TemplateRepositoryImpl{
		collection: db.DB.Collection("certificate_templates"),
	}
}

func (r *TemplateRepositoryImpl) Create(ctx context.Context, template *CertificateTemplate) error {
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()

	if template.ID.IsZero() {
		template.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, template)
	return err
}

func (r *TemplateRepositoryImpl) GetByID(ctx context.Context, id string) (*CertificateTemplate, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var template CertificateTemplate
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&template)
	if err != nil {
		return nil, err
	}

	return &template, nil
}

func (r *TemplateRepositoryImpl) List(ctx context.Context) ([]CertificateTemplate, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []CertificateTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *TemplateRepositoryImpl) Update(ctx context.Context, template *CertificateTemplate) error {
	template.UpdatedAt = time.Now()

	filter := bson.M{"_id": template.ID}
	update := bson.M{"$set": bson.M{
		"name":       template.Name,
		"fields":     template.Fields,
		"updated_at": template.UpdatedAt,
	}}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

func (r *TemplateRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
