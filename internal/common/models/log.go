package models

import "time"

type Log struct {
	Message      string    `bson:"message" json:"message"`
	JobId        string    `bson:"job_id,omitempty" json:"job_id,omitempty"` // Batch job the entry relates to, if any
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
