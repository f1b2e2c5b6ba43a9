package maintenance

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"go-certify/internal/config"
	"go-certify/internal/features/job"
)

type stubJobRepo struct {
	jobs    map[string]*job.BatchJob
	deleted []string
}

func (r *stubJobRepo) Create(_ context.Context, j *job.BatchJob) (*job.BatchJob, error) {
	return nil, errors.New("not supported")
}
func (r *stubJobRepo) GetByID(_ context.Context, id string) (*job.BatchJob, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return j, nil
}
func (r *stubJobRepo) List(context.Context, string, int64, int64) ([]job.BatchJob, int64, error) {
	return nil, 0, nil
}
func (r *stubJobRepo) SetStatus(context.Context, string, job.JobStatus) error { return nil }
func (r *stubJobRepo) SetCounters(context.Context, string, int, int, int) error {
	return nil
}
func (r *stubJobRepo) Finish(context.Context, string, job.JobStatus, string, string) error {
	return nil
}
func (r *stubJobRepo) ResetForRetry(context.Context, string, int) error { return nil }
func (r *stubJobRepo) ListFinishedBefore(_ context.Context, cutoff time.Time) ([]job.BatchJob, error) {
	var out []job.BatchJob
	for _, j := range r.jobs {
		if j.Status.IsTerminal() && j.CompletedAt != nil && j.CompletedAt.Before(cutoff) {
			out = append(out, *j)
		}
	}
	return out, nil
}
func (r *stubJobRepo) Delete(_ context.Context, id string) error {
	delete(r.jobs, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type stubRecipientRepo struct {
	deletedJobs []string
}

func (r *stubRecipientRepo) BulkCreate(context.Context, []job.Recipient) error { return nil }
func (r *stubRecipientRepo) FindByJob(context.Context, string) ([]job.Recipient, error) {
	return nil, nil
}
func (r *stubRecipientRepo) FindByJobPaged(context.Context, string, string, int64, int64) ([]job.Recipient, int64, error) {
	return nil, 0, nil
}
func (r *stubRecipientRepo) Update(context.Context, *job.Recipient) error { return nil }
func (r *stubRecipientRepo) ResetFailed(context.Context, string) (int64, error) {
	return 0, nil
}
func (r *stubRecipientRepo) CountSentSince(context.Context, time.Time) (int64, error) {
	return 0, nil
}
func (r *stubRecipientRepo) DeleteByJob(_ context.Context, jobID string) error {
	r.deletedJobs = append(r.deletedJobs, jobID)
	return nil
}

func seedFinishedJob(repo *stubJobRepo, age time.Duration, status job.JobStatus, outputPath string) string {
	completed := time.Now().Add(-age)
	j := &job.BatchJob{
		ID:          primitive.NewObjectID(),
		Type:        job.JobTypeCertificate,
		Status:      status,
		OutputPath:  outputPath,
		CompletedAt: &completed,
	}
	repo.jobs[j.ID.Hex()] = j
	return j.ID.Hex()
}

func TestSweepRemovesExpiredJobs(t *testing.T) {
	jobs := &stubJobRepo{jobs: map[string]*job.BatchJob{}}
	recipients := &stubRecipientRepo{}

	outDir := filepath.Join(t.TempDir(), "old-output")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}

	oldID := seedFinishedJob(jobs, 40*24*time.Hour, job.JobStatusCompleted, outDir)
	freshID := seedFinishedJob(jobs, 1*24*time.Hour, job.JobStatusCompleted, "")

	// Running jobs are never swept, whatever their age
	runningID := seedFinishedJob(jobs, 90*24*time.Hour, job.JobStatusProcessing, "")

	sweeper := NewSweeper(jobs, recipients, &config.Config{RetainDays: 30}, zap.NewNop())
	sweeper.Sweep(context.Background())

	if _, err := jobs.GetByID(context.Background(), oldID); err == nil {
		t.Error("expired job should be deleted")
	}
	if _, err := jobs.GetByID(context.Background(), freshID); err != nil {
		t.Error("recent job should survive")
	}
	if _, err := jobs.GetByID(context.Background(), runningID); err != nil {
		t.Error("running job should survive")
	}

	if len(recipients.deletedJobs) != 1 || recipients.deletedJobs[0] != oldID {
		t.Errorf("recipient cleanup = %v, want only the expired job", recipients.deletedJobs)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Error("expired job's output directory should be removed")
	}
}

func TestScheduleRejectsBadCron(t *testing.T) {
	sweeper := NewSweeper(&stubJobRepo{jobs: map[string]*job.BatchJob{}}, &stubRecipientRepo{},
		&config.Config{CleanupCron: "not a cron expr", RetainDays: 30}, zap.NewNop())

	if err := sweeper.Schedule(); err == nil {
		t.Error("expected an error for an invalid cron expression")
	}
}
