package models

import "time"

// ExportRecord is the history entry stored for every finished export run
type ExportRecord struct {
	ID           string    `bson:"_id" json:"id"`
	StoreURL     string    `bson:"store_url" json:"store_url"`
	Mode         string    `bson:"mode" json:"mode"`
	Schema       string    `bson:"schema" json:"schema"`
	ProductCount int       `bson:"product_count" json:"product_count"`
	Filename     string    `bson:"filename,omitempty" json:"filename,omitempty"`
	S3Key        string    `bson:"s3_key,omitempty" json:"s3_key,omitempty"`
	Status       string    `bson:"status" json:"status"` // "completed" or "failed"
	Error        string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// InstallInfo records when this deployment first started
type InstallInfo struct {
	ID          string    `bson:"_id" json:"-"`
	InstalledAt time.Time `bson:"installed_at" json:"installed_at"`
}
