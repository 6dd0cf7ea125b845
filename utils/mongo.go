package utils

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DatabaseName is the database holding export history.
const DatabaseName = "shopify_exporter"

var Client *mongo.Client

// ConnectMongo initializes the MongoDB connection
func ConnectMongo(uri string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database
	err = client.Ping(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	Client = client
	log.Info("Connected to MongoDB")
	return nil
}

// DisconnectMongo closes the connection opened by ConnectMongo, if any.
func DisconnectMongo(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	err := Client.Disconnect(ctx)
	Client = nil
	return err
}

// HistoryEnabled reports whether a database is connected.
func HistoryEnabled() bool {
	return Client != nil
}

// GetCollection returns a handle to a MongoDB collection, or nil when no
// database is connected.
func GetCollection(databaseName, collectionName string) *mongo.Collection {
	if Client == nil {
		return nil
	}
	return Client.Database(databaseName).Collection(collectionName)
}
