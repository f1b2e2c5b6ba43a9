package job

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-certify/internal/database"
)

const (
	jobCollection       = "batch_jobs"
	recipientCollection = "recipients"
)

type JobRepository interface {
	Create(ctx context.Context, j *BatchJob) (*BatchJob, error)
	GetByID(ctx context.Context, id string) (*BatchJob, error)
	List(ctx context.Context, jobType string, page, limit int64) ([]BatchJob, int64, error)
	SetStatus(ctx context.Context, id string, status JobStatus) error
	SetCounters(ctx context.Context, id string, processed, success, failed int) error
	Finish(ctx context.Context, id string, status JobStatus, outputPath, errorMessage string) error
	ResetForRetry(ctx context.Context, id string, resetCount int) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]BatchJob, error)
	Delete(ctx context.Context, id string) error
}

type JobRepositoryImpl struct {
	coll *mongo.Collection
}

func NewJobRepository(db *database.MongodbDB) JobRepository {
	return &JobRepositoryImpl{coll: db.DB.Collection(jobCollection)}
}

func (r *JobRepositoryImpl) Create(ctx context.Context, j *BatchJob) (*BatchJob, error) {
	now := time.Now()
	j.CreatedAt = now
	j.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, j)
	if err != nil {
		return nil, err
	}
	j.ID = res.InsertedID.(primitive.ObjectID)
	return j, nil
}

func (r *JobRepositoryImpl) GetByID(ctx context.Context, id string) (*BatchJob, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var j BatchJob
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *JobRepositoryImpl) List(ctx context.Context, jobType string, page, limit int64) ([]BatchJob, int64, error) {
	filter := bson.M{}
	if jobType != "" {
		filter["type"] = jobType
	}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	jobs := make([]BatchJob, 0)
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *JobRepositoryImpl) SetStatus(ctx context.Context, id string, status JobStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	})
	return err
}

// SetCounters writes absolute counter values scoped to one job document.
func (r *JobRepositoryImpl) SetCounters(ctx context.Context, id string, processed, success, failed int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"processed_count": processed,
			"success_count":   success,
			"failed_count":    failed,
			"updated_at":      time.Now(),
		},
	})
	return err
}

func (r *JobRepositoryImpl) Finish(ctx context.Context, id string, status JobStatus, outputPath, errorMessage string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	now := time.Now()
	set := bson.M{
		"status":       status,
		"completed_at": now,
		"updated_at":   now,
	}
	if outputPath != "" {
		set["output_path"] = outputPath
	}
	if errorMessage != "" {
		set["error_message"] = errorMessage
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	return err
}

// ResetForRetry moves a job back to pending after its failed recipients
// were reset. resetCount is subtracted from processed_count so the
// counters keep describing work actually accounted for.
func (r *JobRepositoryImpl) ResetForRetry(ctx context.Context, id string, resetCount int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"status":        JobStatusPending,
			"failed_count":  0,
			"error_message": "",
			"completed_at":  nil,
			"updated_at":    time.Now(),
		},
		"$inc": bson.M{"processed_count": -resetCount},
	})
	return err
}

func (r *JobRepositoryImpl) ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]BatchJob, error) {
	filter := bson.M{
		"status":       bson.M{"$in": []JobStatus{JobStatusCompleted, JobStatusFailed, JobStatusCancelled}},
		"completed_at": bson.M{"$lt": cutoff},
	}
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	jobs := make([]BatchJob, 0)
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *JobRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

type RecipientRepository interface {
	BulkCreate(ctx context.Context, recipients []Recipient) error
	FindByJob(ctx context.Context, jobID string) ([]Recipient, error)
	FindByJobPaged(ctx context.Context, jobID, emailStatus string, page, limit int64) ([]Recipient, int64, error)
	Update(ctx context.Context, rec *Recipient) error
	ResetFailed(ctx context.Context, jobID string) (int64, error)
	CountSentSince(ctx context.Context, since time.Time) (int64, error)
	DeleteByJob(ctx context.Context, jobID string) error
}

type RecipientRepositoryImpl struct {
	coll *mongo.Collection
}

func NewRecipientRepository(db *database.MongodbDB) RecipientRepository {
	return &RecipientRepositoryImpl{coll: db.DB.Collection(recipientCollection)}
}

func (r *RecipientRepositoryImpl) BulkCreate(ctx context.Context, recipients []Recipient) error {
	if len(recipients) == 0 {
		return nil
	}
	now := time.Now()
	docs := make([]interface{}, 0, len(recipients))
	for i := range recipients {
		recipients[i].ID = primitive.NewObjectID()
		recipients[i].CreatedAt = now
		recipients[i].UpdatedAt = now
		docs = append(docs, recipients[i])
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}

// FindByJob returns a job's recipients in stable creation order, which
// keeps sequence-numbered file names consistent across reruns.
func (r *RecipientRepositoryImpl) FindByJob(ctx context.Context, jobID string) ([]Recipient, error) {
	oid, err := primitive.ObjectIDFromHex(jobID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.M{"_id": 1})
	cur, err := r.coll.Find(ctx, bson.M{"job_id": oid}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	recipients := make([]Recipient, 0)
	if err := cur.All(ctx, &recipients); err != nil {
		return nil, err
	}
	return recipients, nil
}

func (r *RecipientRepositoryImpl) FindByJobPaged(ctx context.Context, jobID, emailStatus string, page, limit int64) ([]Recipient, int64, error) {
	oid, err := primitive.ObjectIDFromHex(jobID)
	if err != nil {
		return nil, 0, err
	}
	filter := bson.M{"job_id": oid}
	if emailStatus != "" {
		filter["email_status"] = emailStatus
	}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.M{"_id": 1}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	recipients := make([]Recipient, 0)
	if err := cur.All(ctx, &recipients); err != nil {
		return nil, 0, err
	}
	return recipients, total, nil
}

func (r *RecipientRepositoryImpl) Update(ctx context.Context, rec *Recipient) error {
	rec.UpdatedAt = time.Now()
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": rec.ID}, bson.M{"$set": rec})
	return err
}

// ResetFailed returns failed recipients of a job to the pending state and
// reports how many were reset.
func (r *RecipientRepositoryImpl) ResetFailed(ctx context.Context, jobID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(jobID)
	if err != nil {
		return 0, err
	}
	filter := bson.M{
		"job_id": oid,
		"$or": []bson.M{
			{"email_status": EmailStatusFailed},
			{"error_message": bson.M{"$nin": []interface{}{nil, ""}}},
		},
	}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{
			"email_status":  EmailStatusPending,
			"error_message": "",
			"updated_at":    time.Now(),
		},
	})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountSentSince counts deliveries across all jobs, which is what a
// provider-wide daily quota cares about.
func (r *RecipientRepositoryImpl) CountSentSince(ctx context.Context, since time.Time) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{
		"email_status": EmailStatusSent,
		"sent_at":      bson.M{"$gte": since},
	})
}

func (r *RecipientRepositoryImpl) DeleteByJob(ctx context.Context, jobID string) error {
	oid, err := primitive.ObjectIDFromHex(jobID)
	if err != nil {
		return err
	}
	_, err = r.coll.DeleteMany(ctx, bson.M{"job_id": oid})
	return err
}
