package smtp

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-certify/internal/mailer"
)

type fakeSmtpRepo struct {
	configs map[string]*SmtpConfig
}

func newFakeSmtpRepo() *fakeSmtpRepo {
	return &fakeSmtpRepo{configs: map[string]*SmtpConfig{}}
}

func (r *fakeSmtpRepo) Create(_ context.Context, config *SmtpConfig) error {
	if config.ID.IsZero() {
		config.ID = primitive.NewObjectID()
	}
	clone := *config
	r.configs[config.ID.Hex()] = &clone
	return nil
}

func (r *fakeSmtpRepo) GetByID(_ context.Context, id string) (*SmtpConfig, error) {
	c, ok := r.configs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	clone := *c
	return &clone, nil
}

func (r *fakeSmtpRepo) GetDefault(_ context.Context) (*SmtpConfig, error) {
	for _, c := range r.configs {
		if c.IsDefault {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeSmtpRepo) List(_ context.Context) ([]SmtpConfig, error) {
	var out []SmtpConfig
	for _, c := range r.configs {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeSmtpRepo) Update(_ context.Context, config *SmtpConfig) error {
	if _, ok := r.configs[config.ID.Hex()]; !ok {
		return errors.New("not found")
	}
	clone := *config
	r.configs[config.ID.Hex()] = &clone
	return nil
}

func (r *fakeSmtpRepo) Delete(_ context.Context, id string) error {
	delete(r.configs, id)
	return nil
}

func (r *fakeSmtpRepo) UnsetDefaultExcept(_ context.Context, id primitive.ObjectID) error {
	for _, c := range r.configs {
		if c.ID != id {
			c.IsDefault = false
		}
	}
	return nil
}

type stubDispatcher struct {
	verifyOK  bool
	verifyMsg string
}

func (d *stubDispatcher) Send(mailer.Settings, string, string, string, ...string) error { return nil }
func (d *stubDispatcher) Verify(mailer.Settings) (bool, string) {
	return d.verifyOK, d.verifyMsg
}

func defaultCount(t *testing.T, repo *fakeSmtpRepo) int {
	t.Helper()
	n := 0
	for _, c := range repo.configs {
		if c.IsDefault {
			n++
		}
	}
	return n
}

func TestCreateConfigValidation(t *testing.T) {
	service := NewSmtpConfigService(newFakeSmtpRepo(), &stubDispatcher{})

	tests := []struct {
		name    string
		config  SmtpConfig
		wantErr bool
	}{
		{"valid", SmtpConfig{Host: "smtp.example.com", Port: 587}, false},
		{"missing host", SmtpConfig{Port: 587}, true},
		{"missing port", SmtpConfig{Host: "smtp.example.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.CreateConfig(context.Background(), &tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSingleDefaultInvariant(t *testing.T) {
	repo := newFakeSmtpRepo()
	service := NewSmtpConfigService(repo, &stubDispatcher{})
	ctx := context.Background()

	first := &SmtpConfig{Name: "first", Host: "a.example.com", Port: 587, IsDefault: true}
	if err := service.CreateConfig(ctx, first); err != nil {
		t.Fatalf("CreateConfig() error = %v", err)
	}
	second := &SmtpConfig{Name: "second", Host: "b.example.com", Port: 465}
	if err := service.CreateConfig(ctx, second); err != nil {
		t.Fatalf("CreateConfig() error = %v", err)
	}

	if got := defaultCount(t, repo); got != 1 {
		t.Fatalf("defaults = %d, want 1", got)
	}

	// Promote the second; the first must lose its flag
	if _, err := service.SetDefault(ctx, second.ID.Hex()); err != nil {
		t.Fatalf("SetDefault() error = %v", err)
	}
	if got := defaultCount(t, repo); got != 1 {
		t.Errorf("defaults after promotion = %d, want 1", got)
	}

	def, err := service.GetDefaultConfig(ctx)
	if err != nil {
		t.Fatalf("GetDefaultConfig() error = %v", err)
	}
	if def == nil || def.Name != "second" {
		t.Errorf("default = %+v, want the promoted config", def)
	}
}

func TestCreateDefaultDemotesOthers(t *testing.T) {
	repo := newFakeSmtpRepo()
	service := NewSmtpConfigService(repo, &stubDispatcher{})
	ctx := context.Background()

	a := &SmtpConfig{Name: "a", Host: "a.example.com", Port: 587, IsDefault: true}
	_ = service.CreateConfig(ctx, a)
	b := &SmtpConfig{Name: "b", Host: "b.example.com", Port: 587, IsDefault: true}
	_ = service.CreateConfig(ctx, b)

	if got := defaultCount(t, repo); got != 1 {
		t.Errorf("defaults = %d, want 1", got)
	}
	def, _ := service.GetDefaultConfig(ctx)
	if def.Name != "b" {
		t.Errorf("default = %s, want the most recently flagged config", def.Name)
	}
}

func TestVerify(t *testing.T) {
	repo := newFakeSmtpRepo()
	cfg := &SmtpConfig{Host: "smtp.example.com", Port: 587}
	_ = repo.Create(context.Background(), cfg)

	t.Run("reachable relay", func(t *testing.T) {
		service := NewSmtpConfigService(repo, &stubDispatcher{verifyOK: true, verifyMsg: "connection verified"})
		ok, msg := service.Verify(context.Background(), cfg.ID.Hex())
		if !ok || msg != "connection verified" {
			t.Errorf("Verify() = (%v, %q)", ok, msg)
		}
	})

	t.Run("unreachable relay reports, never raises", func(t *testing.T) {
		service := NewSmtpConfigService(repo, &stubDispatcher{verifyOK: false, verifyMsg: "dial tcp: timeout"})
		ok, msg := service.Verify(context.Background(), cfg.ID.Hex())
		if ok || msg == "" {
			t.Errorf("Verify() = (%v, %q), want failure with message", ok, msg)
		}
	})

	t.Run("unknown config", func(t *testing.T) {
		service := NewSmtpConfigService(repo, &stubDispatcher{verifyOK: true})
		ok, _ := service.Verify(context.Background(), primitive.NewObjectID().Hex())
		if ok {
			t.Error("Verify() on unknown config should fail")
		}
	})
}

func TestMailerSettingsMapping(t *testing.T) {
	cfg := &SmtpConfig{
		Host:      "smtp.example.com",
		Port:      465,
		Username:  "user",
		Password:  "secret",
		FromName:  "Events Team",
		FromEmail: "noreply@example.com",
	}
	got := cfg.MailerSettings()
	if got.Host != cfg.Host || got.Port != cfg.Port || got.Username != cfg.Username ||
		got.Password != cfg.Password || got.FromName != cfg.FromName || got.FromEmail != cfg.FromEmail {
		t.Errorf("MailerSettings() = %+v, want a field-for-field copy", got)
	}
}
