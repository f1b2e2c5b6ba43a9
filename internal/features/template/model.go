package template

import (
	"time"

	"go-certify/internal/pdf"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CertificateTemplate is an uploaded PDF plus its field-placement
// configuration. The raw PDF on disk is immutable after upload; only the
// name and field placements may change.
type CertificateTemplate struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name       string               `json:"name" bson:"name"`
	FileName   string               `json:"file_name" bson:"file_name"`
	FilePath   string               `json:"file_path" bson:"file_path"`
	Size       int64                `json:"size" bson:"size"`
	PageWidth  float64              `json:"page_width" bson:"page_width"`
	PageHeight float64              `json:"page_height" bson:"page_height"`
	Fields     []pdf.FieldPlacement `json:"fields" bson:"fields"`
	CreatedAt  time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at" bson:"updated_at"`
}
