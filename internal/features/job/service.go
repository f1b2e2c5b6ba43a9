package job

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-certify/internal/features/email_template"
	"go-certify/internal/features/importer"
	"go-certify/internal/features/progress"
	"go-certify/internal/features/settings"
	"go-certify/internal/features/smtp"
	"go-certify/internal/features/template"
	"go-certify/internal/mailer"
	"go-certify/internal/metrics"
	"go-certify/internal/pdf"
	"go-certify/pkg/utils"
)

var (
	ErrJobRunning     = errors.New("job is already running")
	ErrJobTerminal    = errors.New("job has already finished")
	ErrInvalidPayload = errors.New("invalid job payload")
)

type JobService interface {
	CreateCertificateJob(ctx context.Context, data []byte, filename string, cfg CertificateConfig) (*BatchJob, error)
	CreateEmailJob(ctx context.Context, data []byte, filename string, cfg EmailConfig) (*BatchJob, error)
	CreateEmailJobFromJob(ctx context.Context, sourceJobID string, cfg EmailConfig) (*BatchJob, error)
	GetJob(ctx context.Context, id string) (*BatchJob, error)
	ListJobs(ctx context.Context, jobType string, page, limit int64) ([]BatchJob, int64, error)
	ListRecipients(ctx context.Context, jobID, emailStatus string, page, limit int64) ([]Recipient, int64, error)
	Start(jobID string) error
	RetryFailed(ctx context.Context, jobID string) (*BatchJob, error)
	Cancel(ctx context.Context, jobID string) error
	DeleteJob(ctx context.Context, jobID string) error
	Run(jobID string)
}

type JobServiceImpl struct {
	Repo           JobRepository
	Recipients     RecipientRepository
	Templates      template.TemplateService
	EmailTemplates email_template.EmailTemplateService
	SmtpConfigs    smtp.SmtpConfigService
	Settings       settings.SettingsService
	Importer       importer.ImporterService
	Renderer       pdf.Renderer
	Dispatcher     mailer.Dispatcher
	Progress       progress.Publisher
	Logger         *zap.Logger

	// Sleep is swappable so loop tests do not wait out real delays.
	Sleep func(d time.Duration)

	running sync.Map
}

func NewJobService(
	repo JobRepository,
	recipients RecipientRepository,
	templates template.TemplateService,
	emailTemplates email_template.EmailTemplateService,
	smtpConfigs smtp.SmtpConfigService,
	settingsService settings.SettingsService,
	importerService importer.ImporterService,
	renderer pdf.Renderer,
	dispatcher mailer.Dispatcher,
	publisher progress.Publisher,
	logger *zap.Logger,
) JobService {
	return &JobServiceImpl{
		Repo:           repo,
		Recipients:     recipients,
		Templates:      templates,
		EmailTemplates: emailTemplates,
		SmtpConfigs:    smtpConfigs,
		Settings:       settingsService,
		Importer:       importerService,
		Renderer:       renderer,
		Dispatcher:     dispatcher,
		Progress:       publisher,
		Logger:         logger,
		Sleep:          time.Sleep,
	}
}

// CreateCertificateJob parses the uploaded roster, validates it against
// the template's placeholders, and stores the job with one recipient per
// usable row. The job stays pending until Start launches the loop.
func (s *JobServiceImpl) CreateCertificateJob(ctx context.Context, data []byte, filename string, cfg CertificateConfig) (*BatchJob, error) {
	if cfg.TemplateID == "" {
		return nil, fmt.Errorf("%w: template_id is required", ErrInvalidPayload)
	}
	if _, err := s.Templates.GetTemplate(ctx, cfg.TemplateID); err != nil {
		return nil, fmt.Errorf("certificate template %s not found", cfg.TemplateID)
	}
	if cfg.NamingPattern == "" {
		cfg.NamingPattern = "{{sn}}_{{name}}.pdf"
	}

	recipients, err := s.importRecipients(data, filename)
	if err != nil {
		return nil, err
	}

	j := &BatchJob{
		Type:       JobTypeCertificate,
		Status:     JobStatusPending,
		Config:     JobConfig{Certificate: &cfg},
		FileName:   filename,
		TotalCount: len(recipients),
	}
	return s.persistJob(ctx, j, recipients)
}

// CreateEmailJob builds an email job from a fresh roster upload.
func (s *JobServiceImpl) CreateEmailJob(ctx context.Context, data []byte, filename string, cfg EmailConfig) (*BatchJob, error) {
	if err := s.validateEmailConfig(ctx, &cfg); err != nil {
		return nil, err
	}

	recipients, err := s.importRecipients(data, filename)
	if err != nil {
		return nil, err
	}

	j := &BatchJob{
		Type:       JobTypeEmail,
		Status:     JobStatusPending,
		Config:     JobConfig{Email: &cfg},
		FileName:   filename,
		TotalCount: len(recipients),
	}
	return s.persistJob(ctx, j, recipients)
}

// CreateEmailJobFromJob clones the recipients of an earlier job, carrying
// their generated certificate paths so the emails attach them. Delivery
// state starts over from pending.
func (s *JobServiceImpl) CreateEmailJobFromJob(ctx context.Context, sourceJobID string, cfg EmailConfig) (*BatchJob, error) {
	if err := s.validateEmailConfig(ctx, &cfg); err != nil {
		return nil, err
	}

	source, err := s.Repo.GetByID(ctx, sourceJobID)
	if err != nil {
		return nil, fmt.Errorf("source job %s not found", sourceJobID)
	}
	existing, err := s.Recipients.FindByJob(ctx, sourceJobID)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, fmt.Errorf("source job %s has no recipients", sourceJobID)
	}

	cloned := make([]Recipient, 0, len(existing))
	for _, rec := range existing {
		cloned = append(cloned, Recipient{
			Email:           rec.Email,
			FullName:        rec.FullName,
			ExtraFields:     rec.ExtraFields,
			CertificatePath: rec.CertificatePath,
			EmailStatus:     EmailStatusPending,
		})
	}

	j := &BatchJob{
		Type:       JobTypeEmail,
		Status:     JobStatusPending,
		Config:     JobConfig{Email: &cfg},
		FileName:   source.FileName,
		TotalCount: len(cloned),
	}
	return s.persistJob(ctx, j, cloned)
}

func (s *JobServiceImpl) validateEmailConfig(ctx context.Context, cfg *EmailConfig) error {
	if cfg.EmailTemplateID == "" {
		return fmt.Errorf("%w: email_template_id is required", ErrInvalidPayload)
	}
	if _, err := s.EmailTemplates.GetTemplate(ctx, cfg.EmailTemplateID); err != nil {
		return fmt.Errorf("email template %s not found", cfg.EmailTemplateID)
	}
	if cfg.SmtpConfigID != "" {
		if _, err := s.SmtpConfigs.GetConfig(ctx, cfg.SmtpConfigID); err != nil {
			return fmt.Errorf("smtp config %s not found", cfg.SmtpConfigID)
		}
	}
	return nil
}

func (s *JobServiceImpl) importRecipients(data []byte, filename string) ([]Recipient, error) {
	parsed, err := s.Importer.Parse(data, filename)
	if err != nil {
		return nil, err
	}
	validation := s.Importer.Validate(parsed, []string{"name"})
	if !validation.IsValid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(validation.Errors, "; "))
	}

	recipients := make([]Recipient, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		recipients = append(recipients, Recipient{
			Email:       importer.ExtractEmail(row),
			FullName:    importer.ExtractName(row),
			ExtraFields: row,
			EmailStatus: EmailStatusPending,
		})
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: no usable rows in %s", ErrInvalidPayload, filename)
	}
	return recipients, nil
}

func (s *JobServiceImpl) persistJob(ctx context.Context, j *BatchJob, recipients []Recipient) (*BatchJob, error) {
	created, err := s.Repo.Create(ctx, j)
	if err != nil {
		return nil, err
	}
	for i := range recipients {
		recipients[i].JobID = created.ID
	}
	if err := s.Recipients.BulkCreate(ctx, recipients); err != nil {
		return nil, err
	}
	s.Logger.Info("job created",
		zap.String("job_id", created.ID.Hex()),
		zap.String("type", string(created.Type)),
		zap.Int("total", created.TotalCount),
	)
	return created, nil
}

func (s *JobServiceImpl) GetJob(ctx context.Context, id string) (*BatchJob, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *JobServiceImpl) ListJobs(ctx context.Context, jobType string, page, limit int64) ([]BatchJob, int64, error) {
	return s.Repo.List(ctx, jobType, page, limit)
}

func (s *JobServiceImpl) ListRecipients(ctx context.Context, jobID, emailStatus string, page, limit int64) ([]Recipient, int64, error) {
	return s.Recipients.FindByJobPaged(ctx, jobID, emailStatus, page, limit)
}

// Start launches the batch loop in the background. At most one loop runs
// per job id at a time.
func (s *JobServiceImpl) Start(jobID string) error {
	if _, loaded := s.running.LoadOrStore(jobID, struct{}{}); loaded {
		return ErrJobRunning
	}
	go s.Run(jobID)
	return nil
}

// Run executes one full pass over a job's recipients. It is exported so
// tests can drive the loop synchronously; HTTP callers go through Start.
func (s *JobServiceImpl) Run(jobID string) {
	defer s.running.Delete(jobID)

	ctx := context.Background()
	log := s.Logger.With(zap.String("job_id", jobID))

	j, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		log.Error("job lookup failed", zap.Error(err))
		return
	}
	if j.Status.IsTerminal() {
		log.Warn("refusing to run finished job", zap.String("status", string(j.Status)))
		return
	}

	metrics.JobsRunning.Inc()
	defer metrics.JobsRunning.Dec()

	if err := s.Repo.SetStatus(ctx, jobID, JobStatusProcessing); err != nil {
		log.Error("status update failed", zap.Error(err))
		return
	}

	switch j.Type {
	case JobTypeCertificate:
		s.runCertificateJob(ctx, j, log)
	case JobTypeEmail:
		s.runEmailJob(ctx, j, log)
	default:
		s.failJob(ctx, j, fmt.Sprintf("unknown job type %q", j.Type), log)
	}
}

// failJob marks a job failed before its loop began, for setup problems
// like a deleted template. Recipient state is left untouched.
func (s *JobServiceImpl) failJob(ctx context.Context, j *BatchJob, reason string, log *zap.Logger) {
	log.Error("job setup failed", zap.String("reason", reason))
	if err := s.Repo.Finish(ctx, j.ID.Hex(), JobStatusFailed, "", reason); err != nil {
		log.Error("failure status update failed", zap.Error(err))
	}
	s.publish(j.ID.Hex(), j.ProcessedCount, j.TotalCount, JobStatusFailed)
}

func (s *JobServiceImpl) runCertificateJob(ctx context.Context, j *BatchJob, log *zap.Logger) {
	cfg := j.Config.Certificate
	if cfg == nil {
		s.failJob(ctx, j, "certificate job has no certificate config", log)
		return
	}

	tmpl, err := s.Templates.GetTemplate(ctx, cfg.TemplateID)
	if err != nil {
		s.failJob(ctx, j, fmt.Sprintf("template %s not found", cfg.TemplateID), log)
		return
	}
	templateBytes, err := s.Templates.TemplateBytes(ctx, cfg.TemplateID)
	if err != nil {
		s.failJob(ctx, j, fmt.Sprintf("template file unreadable: %v", err), log)
		return
	}

	outputPath := cfg.OutputPath
	if outputPath == "" {
		appCfg, err := s.Settings.GetAppConfig(ctx)
		if err != nil {
			s.failJob(ctx, j, fmt.Sprintf("app settings unavailable: %v", err), log)
			return
		}
		outputPath = filepath.Join(appCfg.OutputPath, j.ID.Hex())
	}
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		s.failJob(ctx, j, fmt.Sprintf("cannot create output directory %s: %v", outputPath, err), log)
		return
	}

	recipients, err := s.Recipients.FindByJob(ctx, j.ID.Hex())
	if err != nil {
		s.failJob(ctx, j, fmt.Sprintf("recipient load failed: %v", err), log)
		return
	}

	jobID := j.ID.Hex()
	processed, success, failed := 0, 0, 0
	for i := range recipients {
		if s.cancelled(ctx, jobID) {
			log.Info("job cancelled", zap.Int("processed", processed))
			s.publish(jobID, processed, j.TotalCount, JobStatusCancelled)
			return
		}

		rec := &recipients[i]
		// Reruns after a retry only touch recipients that failed.
		if rec.CertificatePath != "" && rec.ErrorMessage == "" {
			processed++
			success++
			s.checkpoint(ctx, jobID, processed, success, failed, j.TotalCount)
			continue
		}

		record := recipientRecord(rec)
		if err := s.renderOne(templateBytes, tmpl.Fields, record, cfg.NamingPattern, outputPath, i, rec); err != nil {
			rec.CertificatePath = ""
			rec.ErrorMessage = err.Error()
			failed++
			metrics.CertificateFailures.Inc()
			log.Warn("certificate failed", zap.String("recipient", rec.FullName), zap.Error(err))
		} else {
			rec.ErrorMessage = ""
			success++
			metrics.CertificatesGenerated.Inc()
		}
		processed++
		if err := s.Recipients.Update(ctx, rec); err != nil {
			log.Error("recipient update failed", zap.Error(err))
		}
		s.checkpoint(ctx, jobID, processed, success, failed, j.TotalCount)
	}

	s.finishRun(ctx, jobID, processed, success, failed, j.TotalCount, outputPath, log)
}

// renderOne isolates a single recipient's render so a panic from a
// corrupt row cannot take down the rest of the batch.
func (s *JobServiceImpl) renderOne(
	templateBytes []byte,
	fields []pdf.FieldPlacement,
	record map[string]interface{},
	pattern, outputPath string,
	index int,
	rec *Recipient,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
		}
	}()

	rendered, err := s.Renderer.Render(templateBytes, fields, record)
	if err != nil {
		return err
	}
	fileName := utils.BuildFileName(pattern, index, record)
	fullPath := filepath.Join(outputPath, fileName)
	if err := os.WriteFile(fullPath, rendered, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fileName, err)
	}
	rec.CertificatePath = fullPath
	return nil
}

func (s *JobServiceImpl) runEmailJob(ctx context.Context, j *BatchJob, log *zap.Logger) {
	cfg := j.Config.Email
	if cfg == nil {
		s.failJob(ctx, j, "email job has no email config", log)
		return
	}

	tmpl, err := s.EmailTemplates.GetTemplate(ctx, cfg.EmailTemplateID)
	if err != nil {
		s.failJob(ctx, j, fmt.Sprintf("email template %s not found", cfg.EmailTemplateID), log)
		return
	}

	var smtpCfg *smtp.SmtpConfig
	if cfg.SmtpConfigID != "" {
		smtpCfg, err = s.SmtpConfigs.GetConfig(ctx, cfg.SmtpConfigID)
	} else {
		smtpCfg, err = s.SmtpConfigs.GetDefaultConfig(ctx)
	}
	if err != nil || smtpCfg == nil {
		s.failJob(ctx, j, "no usable smtp configuration", log)
		return
	}

	appCfg, err := s.Settings.GetAppConfig(ctx)
	if err != nil {
		s.failJob(ctx, j, fmt.Sprintf("app settings unavailable: %v", err), log)
		return
	}
	delay := time.Duration(cfg.DelayMs) * time.Millisecond
	if cfg.DelayMs <= 0 {
		delay = time.Duration(appCfg.DefaultDelayMs) * time.Millisecond
	}

	subjectTemplate := tmpl.Subject
	if cfg.Subject != "" {
		subjectTemplate = cfg.Subject
	}

	recipients, err := s.Recipients.FindByJob(ctx, j.ID.Hex())
	if err != nil {
		s.failJob(ctx, j, fmt.Sprintf("recipient load failed: %v", err), log)
		return
	}

	var sentToday int64
	if appCfg.DailyEmailLimit > 0 {
		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		sentToday, err = s.Recipients.CountSentSince(ctx, midnight)
		if err != nil {
			s.failJob(ctx, j, fmt.Sprintf("daily quota check failed: %v", err), log)
			return
		}
	}

	jobID := j.ID.Hex()
	mailSettings := smtpCfg.MailerSettings()
	processed, success, failed := 0, 0, 0
	for i := range recipients {
		if s.cancelled(ctx, jobID) {
			log.Info("job cancelled", zap.Int("processed", processed))
			s.publish(jobID, processed, j.TotalCount, JobStatusCancelled)
			return
		}

		rec := &recipients[i]
		// Already-delivered recipients stay delivered; reruns and
		// retries never send twice.
		if rec.EmailStatus == EmailStatusSent {
			processed++
			success++
			s.checkpoint(ctx, jobID, processed, success, failed, j.TotalCount)
			continue
		}

		if appCfg.DailyEmailLimit > 0 && sentToday >= int64(appCfg.DailyEmailLimit) {
			log.Warn("daily email limit reached, pausing job",
				zap.Int("limit", appCfg.DailyEmailLimit),
				zap.Int("processed", processed),
			)
			s.checkpoint(ctx, jobID, processed, success, failed, j.TotalCount)
			if err := s.Repo.SetStatus(ctx, jobID, JobStatusPending); err != nil {
				log.Error("status update failed", zap.Error(err))
			}
			s.publish(jobID, processed, j.TotalCount, JobStatusPending)
			return
		}

		record := recipientRecord(rec)
		subject := utils.ReplacePlaceholders(subjectTemplate, record)
		body := utils.ReplacePlaceholders(tmpl.HtmlContent, record)

		var sendErr error
		if rec.Email == "" {
			sendErr = errors.New("recipient has no email address")
		} else {
			var attachments []string
			if rec.CertificatePath != "" {
				attachments = append(attachments, rec.CertificatePath)
			}
			sendErr = s.Dispatcher.Send(mailSettings, rec.Email, subject, body, attachments...)
		}

		if sendErr != nil {
			rec.EmailStatus = EmailStatusFailed
			rec.ErrorMessage = sendErr.Error()
			failed++
			metrics.EmailFailures.Inc()
			log.Warn("email failed", zap.String("to", rec.Email), zap.Error(sendErr))
		} else {
			now := time.Now()
			rec.EmailStatus = EmailStatusSent
			rec.SentAt = &now
			rec.ErrorMessage = ""
			success++
			sentToday++
			metrics.EmailsSent.Inc()
		}
		processed++
		if err := s.Recipients.Update(ctx, rec); err != nil {
			log.Error("recipient update failed", zap.Error(err))
		}
		s.checkpoint(ctx, jobID, processed, success, failed, j.TotalCount)

		// Pace only actual relay traffic; skips cost the quota nothing.
		if rec.Email != "" && i < len(recipients)-1 && delay > 0 {
			s.Sleep(delay)
		}
	}

	s.finishRun(ctx, jobID, processed, success, failed, j.TotalCount, "", log)
}

// cancelled re-reads the job between recipients so a cancel request takes
// effect within one iteration.
func (s *JobServiceImpl) cancelled(ctx context.Context, jobID string) bool {
	fresh, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return false
	}
	return fresh.Status == JobStatusCancelled
}

// checkpoint persists counters and notifies live watchers after every
// recipient, keeping processed = success + failed observable throughout.
func (s *JobServiceImpl) checkpoint(ctx context.Context, jobID string, processed, success, failed, total int) {
	if err := s.Repo.SetCounters(ctx, jobID, processed, success, failed); err != nil {
		s.Logger.Error("counter update failed", zap.String("job_id", jobID), zap.Error(err))
	}
	s.publish(jobID, processed, total, JobStatusProcessing)
}

func (s *JobServiceImpl) finishRun(ctx context.Context, jobID string, processed, success, failed, total int, outputPath string, log *zap.Logger) {
	status := JobStatusCompleted
	if success == 0 && processed > 0 {
		status = JobStatusFailed
	}
	if err := s.Repo.Finish(ctx, jobID, status, outputPath, ""); err != nil {
		log.Error("finish update failed", zap.Error(err))
	}
	log.Info("job finished",
		zap.String("status", string(status)),
		zap.Int("processed", processed),
		zap.Int("success", success),
		zap.Int("failed", failed),
	)
	s.publish(jobID, processed, total, status)
}

func (s *JobServiceImpl) publish(jobID string, processed, total int, status JobStatus) {
	pct := 0.0
	if total > 0 {
		pct = float64(processed) / float64(total) * 100
	}
	s.Progress.Publish(jobID, progress.Event{
		JobID:      jobID,
		Processed:  processed,
		Total:      total,
		Percentage: pct,
		Status:     string(status),
	})
}

// RetryFailed resets a job's failed recipients to pending and relaunches
// the loop. Already-delivered emails and rendered certificates are left
// alone, so only the failed subset is reprocessed. A pending job with
// unprocessed recipients, such as one paused by the daily email limit,
// is relaunched as well even when nothing failed.
func (s *JobServiceImpl) RetryFailed(ctx context.Context, jobID string) (*BatchJob, error) {
	j, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.Status == JobStatusProcessing {
		return nil, ErrJobRunning
	}

	reset, err := s.Recipients.ResetFailed(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if reset == 0 && j.Status != JobStatusFailed && j.Status != JobStatusPending {
		return nil, errors.New("job has no failed recipients to retry")
	}
	if err := s.Repo.ResetForRetry(ctx, jobID, int(reset)); err != nil {
		return nil, err
	}
	s.Logger.Info("retrying failed recipients",
		zap.String("job_id", jobID),
		zap.Int64("reset", reset),
	)
	if err := s.Start(jobID); err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, jobID)
}

// Cancel requests a cooperative stop. The running loop notices the status
// change before the next recipient.
func (s *JobServiceImpl) Cancel(ctx context.Context, jobID string) error {
	j, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if j.Status.IsTerminal() {
		return ErrJobTerminal
	}
	return s.Repo.SetStatus(ctx, jobID, JobStatusCancelled)
}

// DeleteJob removes the job, its recipients, and its generated output.
func (s *JobServiceImpl) DeleteJob(ctx context.Context, jobID string) error {
	j, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if j.Status == JobStatusProcessing {
		return ErrJobRunning
	}
	if err := s.Recipients.DeleteByJob(ctx, jobID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, jobID); err != nil {
		return err
	}
	if j.OutputPath != "" {
		if err := os.RemoveAll(j.OutputPath); err != nil {
			s.Logger.Warn("output cleanup failed",
				zap.String("job_id", jobID),
				zap.String("path", j.OutputPath),
				zap.Error(err),
			)
		}
	}
	return nil
}

// recipientRecord merges the imported row with the canonical name and
// email fields so placeholders resolve either way.
func recipientRecord(rec *Recipient) map[string]interface{} {
	record := make(map[string]interface{}, len(rec.ExtraFields)+3)
	for k, v := range rec.ExtraFields {
		record[k] = v
	}
	record["name"] = rec.FullName
	record["fullname"] = rec.FullName
	record["email"] = rec.Email
	return record
}
