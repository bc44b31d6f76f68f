package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Collection names match the ones the existing deployment already holds.
const (
	AdminsCollection        = "admins"
	OfficeUsersCollection   = "officeusers"
	PincodesCollection      = "pincodeareas"
	AddressFormsCollection  = "formdatas"
	NotificationsCollection = "notifications"
)

type MongoDBClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDBClient(lc fx.Lifecycle, cfg *Config, log *zap.Logger) (*MongoDBClient, *mongo.Database, error) {
	clientOptions := options.Client().ApplyURI(cfg.MongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("pinging MongoDB: %w", err)
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	db := client.Database(cfg.MongoDatabase)

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			return EnsureIndexes(startCtx, db, log)
		},
		OnStop: func(stopCtx context.Context) error {
			log.Info("closing MongoDB connection")
			return client.Disconnect(stopCtx)
		},
	})
	return &MongoDBClient{Client: client, Database: db}, db, nil
}

var indexes = map[string][]mongo.IndexModel{
	AdminsCollection: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	},
	OfficeUsersCollection: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	PincodesCollection: {
		{
			Keys:    bson.D{{Key: "pincode", Value: 1}, {Key: "areaname", Value: 1}, {Key: "cityname", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("pincode_area_city_unique"),
		},
		{Keys: bson.D{{Key: "statename", Value: 1}}},
	},
	AddressFormsCollection: {
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "formCompleted", Value: 1}}},
	},
	NotificationsCollection: {
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
	},
}

// EnsureIndexes creates the indexes every repository relies on. Creating an
// existing index is a no-op in MongoDB.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for name, models := range indexes {
		created, err := db.Collection(name).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("creating indexes on %s: %w", name, err)
		}
		log.Debug("indexes ensured", zap.String("collection", name), zap.Strings("indexes", created))
	}
	return nil
}
