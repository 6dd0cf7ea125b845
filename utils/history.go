package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raushankrgupta/shopify-product-exporter/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	exportsCollection = "exports"
	installCollection = "install"
	installDocumentID = "install"
)

// ErrHistoryDisabled is returned when no database is connected.
var ErrHistoryDisabled = errors.New("export history is not configured")

// SaveExportRecord stores the history entry of one export run.
func SaveExportRecord(ctx context.Context, rec *models.ExportRecord) error {
	collection := GetCollection(DatabaseName, exportsCollection)
	if collection == nil {
		return ErrHistoryDisabled
	}
	if _, err := collection.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("save export %s: %w", rec.ID, err)
	}
	return nil
}

// ListExportRecords returns one page of history, newest first, and the total
// number of records.
func ListExportRecords(ctx context.Context, page, limit int) ([]models.ExportRecord, int64, error) {
	collection := GetCollection(DatabaseName, exportsCollection)
	if collection == nil {
		return nil, 0, ErrHistoryDisabled
	}

	total, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count exports: %w", err)
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})
	findOptions.SetSkip(int64((page - 1) * limit))
	findOptions.SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("find exports: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.ExportRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("decode exports: %w", err)
	}
	return records, total, nil
}

// EnsureInstallTimestamp returns the stored install time, recording now as
// the install time on first use.
func EnsureInstallTimestamp(ctx context.Context, now time.Time) (*models.InstallInfo, error) {
	collection := GetCollection(DatabaseName, installCollection)
	if collection == nil {
		return nil, ErrHistoryDisabled
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	update := bson.M{"$setOnInsert": bson.M{"installed_at": now.UTC()}}

	var info models.InstallInfo
	if err := collection.FindOneAndUpdate(ctx, bson.M{"_id": installDocumentID}, update, opts).Decode(&info); err != nil {
		return nil, fmt.Errorf("install timestamp: %w", err)
	}
	return &info, nil
}
