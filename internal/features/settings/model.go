package settings

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SettingsType string

const SettingsTypeApp SettingsType = "app"

// AppConfig are the tunables the batch engine consults at job start.
type AppConfig struct {
	OutputPath      string `json:"output_path" bson:"output_path"`
	DefaultDelayMs  int    `json:"default_delay_ms" bson:"default_delay_ms"`
	DailyEmailLimit int    `json:"daily_email_limit" bson:"daily_email_limit"` // 0 disables the cap
}

type Settings struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Type      SettingsType       `json:"type" bson:"type"` // Unique index on type
	App       *AppConfig         `json:"app,omitempty" bson:"app,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
