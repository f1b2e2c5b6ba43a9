package smtp

import (
	"time"

	"go-certify/internal/mailer"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SmtpConfig holds one relay's connection parameters. At most one config
// is the default at any time. Credentials are stored as-is; anyone
// hardening this should swap the storage behind this same read contract.
type SmtpConfig struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Host      string             `json:"host" bson:"host"`
	Port      int                `json:"port" bson:"port"`
	Username  string             `json:"username" bson:"username"`
	Password  string             `json:"password" bson:"password"`
	FromName  string             `json:"from_name" bson:"from_name"`
	FromEmail string             `json:"from_email" bson:"from_email"`
	IsDefault bool               `json:"is_default" bson:"is_default"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// MailerSettings converts the stored config into dispatcher settings.
func (c *SmtpConfig) MailerSettings() mailer.Settings {
	return mailer.Settings{
		Host:      c.Host,
		Port:      c.Port,
		Username:  c.Username,
		Password:  c.Password,
		FromName:  c.FromName,
		FromEmail: c.FromEmail,
	}
}
