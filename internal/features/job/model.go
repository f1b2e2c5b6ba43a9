package job

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type JobType string

const (
	JobTypeCertificate JobType = "certificate"
	JobTypeEmail       JobType = "email"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// IsTerminal reports whether a job can no longer make progress.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

type EmailStatus string

const (
	EmailStatusPending EmailStatus = "pending"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

// CertificateConfig is the type-specific configuration of a certificate
// generation job.
type CertificateConfig struct {
	TemplateID    string `json:"template_id" bson:"template_id"`
	NamingPattern string `json:"naming_pattern" bson:"naming_pattern"`
	OutputPath    string `json:"output_path" bson:"output_path"`
}

// EmailConfig is the type-specific configuration of an email send job.
// Subject, when set, overrides the email template's subject. DelayMs is
// the inter-send pause that keeps the relay's per-minute quota honest.
type EmailConfig struct {
	EmailTemplateID string `json:"email_template_id" bson:"email_template_id"`
	SmtpConfigID    string `json:"smtp_config_id" bson:"smtp_config_id"`
	Subject         string `json:"subject" bson:"subject"`
	DelayMs         int    `json:"delay_ms" bson:"delay_ms"`
}

// JobConfig carries whichever of the two shapes matches the job type.
type JobConfig struct {
	Certificate *CertificateConfig `json:"certificate,omitempty" bson:"certificate,omitempty"`
	Email       *EmailConfig       `json:"email,omitempty" bson:"email,omitempty"`
}

// BatchJob is one run of certificate generation or email sending over a
// fixed recipient set. TotalCount is fixed at creation; the other
// counters satisfy processed = success + failed between iterations.
type BatchJob struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Type           JobType            `json:"type" bson:"type"`
	Status         JobStatus          `json:"status" bson:"status"`
	Config         JobConfig          `json:"config" bson:"config"`
	FileName       string             `json:"file_name,omitempty" bson:"file_name,omitempty"` // Source data file, informational
	TotalCount     int                `json:"total_count" bson:"total_count"`
	ProcessedCount int                `json:"processed_count" bson:"processed_count"`
	SuccessCount   int                `json:"success_count" bson:"success_count"`
	FailedCount    int                `json:"failed_count" bson:"failed_count"`
	OutputPath     string             `json:"output_path,omitempty" bson:"output_path,omitempty"`
	ErrorMessage   string             `json:"error_message,omitempty" bson:"error_message,omitempty"` // Whole-job setup failure reason
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// Recipient is one imported row bound to a job, carrying per-row
// generation and delivery state. Recipients are bulk-created with the job
// and only ever removed by deleting the job.
type Recipient struct {
	ID              primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	JobID           primitive.ObjectID     `json:"job_id" bson:"job_id"`
	Email           string                 `json:"email" bson:"email"`
	FullName        string                 `json:"full_name" bson:"full_name"`
	ExtraFields     map[string]interface{} `json:"extra_fields" bson:"extra_fields"`
	CertificatePath string                 `json:"certificate_path,omitempty" bson:"certificate_path,omitempty"`
	EmailStatus     EmailStatus            `json:"email_status" bson:"email_status"`
	ErrorMessage    string                 `json:"error_message,omitempty" bson:"error_message,omitempty"`
	SentAt          *time.Time             `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at" bson:"updated_at"`
}
