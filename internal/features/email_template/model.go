package email_template

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmailTemplate struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Subject      string             `json:"subject" bson:"subject"`
	HtmlContent  string             `json:"html_content" bson:"html_content"`
	Placeholders []string           `json:"placeholders" bson:"placeholders"` // Derived from subject+body at save time
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
