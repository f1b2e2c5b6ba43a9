package mailer

import "testing"

func TestDialerTLSMode(t *testing.T) {
	d := &GomailDispatcher{}

	tests := []struct {
		name    string
		port    int
		wantSSL bool
	}{
		{"implicit TLS on 465", 465, true},
		{"starttls on 587", 587, false},
		{"starttls on 25", 25, false},
		{"starttls on 2525", 2525, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialer := d.dialer(Settings{Host: "smtp.example.com", Port: tt.port})
			if dialer.SSL != tt.wantSSL {
				t.Errorf("SSL = %v, want %v", dialer.SSL, tt.wantSSL)
			}
		})
	}
}

func TestDialerCredentials(t *testing.T) {
	d := &GomailDispatcher{}
	dialer := d.dialer(Settings{Host: "smtp.example.com", Port: 587, Username: "user", Password: "secret"})

	if dialer.Host != "smtp.example.com" || dialer.Port != 587 {
		t.Errorf("dialer endpoint = %s:%d", dialer.Host, dialer.Port)
	}
	if dialer.Username != "user" || dialer.Password != "secret" {
		t.Error("credentials not carried into the dialer")
	}
}

func TestVerifyNeverErrors(t *testing.T) {
	d := &GomailDispatcher{}

	t.Run("missing host", func(t *testing.T) {
		ok, msg := d.Verify(Settings{Port: 587})
		if ok || msg == "" {
			t.Errorf("Verify() = (%v, %q), want failure with message", ok, msg)
		}
	})

	t.Run("missing port", func(t *testing.T) {
		ok, msg := d.Verify(Settings{Host: "smtp.example.com"})
		if ok || msg == "" {
			t.Errorf("Verify() = (%v, %q), want failure with message", ok, msg)
		}
	})
}
