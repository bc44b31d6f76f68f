package dashboard

import (
	"context"
	"fmt"
	"time"

	"OCLAdmin/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store interface {
	FormCounts(ctx context.Context) (total, completed int64, err error)
	RecentForms(ctx context.Context, n int64) ([]RecentForm, error)
	DailyCounts(ctx context.Context, since time.Time) ([]DailyCount, error)
	TopStates(ctx context.Context, n int64) ([]StateCount, error)
	PincodeCounts(ctx context.Context) (PincodeStats, error)
}

type StatsRepository struct {
	forms    *mongo.Collection
	pincodes *mongo.Collection
}

func NewStatsRepository(db *mongo.Database) *StatsRepository {
	return &StatsRepository{
		forms:    db.Collection(config.AddressFormsCollection),
		pincodes: db.Collection(config.PincodesCollection),
	}
}

func (r *StatsRepository) FormCounts(ctx context.Context) (int64, int64, error) {
	total, err := r.forms.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, fmt.Errorf("counting forms: %w", err)
	}
	completed, err := r.forms.CountDocuments(ctx, bson.M{"formCompleted": true})
	if err != nil {
		return 0, 0, fmt.Errorf("counting completed forms: %w", err)
	}
	return total, completed, nil
}

var recentProjection = bson.M{
	"senderName": 1, "senderEmail": 1, "receiverName": 1, "receiverEmail": 1,
	"createdAt": 1, "formCompleted": 1,
}

func (r *StatsRepository) RecentForms(ctx context.Context, n int64) ([]RecentForm, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(n).
		SetProjection(recentProjection)
	cursor, err := r.forms.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("finding recent forms: %w", err)
	}
	forms := []RecentForm{}
	if err := cursor.All(ctx, &forms); err != nil {
		return nil, fmt.Errorf("decoding recent forms: %w", err)
	}
	return forms, nil
}

func (r *StatsRepository) DailyCounts(ctx context.Context, since time.Time) ([]DailyCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"date":      bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"}},
				"completed": "$formCompleted",
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.date", Value: 1}}}},
	}
	out := []DailyCount{}
	if err := r.aggregate(ctx, pipeline, &out); err != nil {
		return nil, fmt.Errorf("aggregating daily form counts: %w", err)
	}
	return out, nil
}

func (r *StatsRepository) TopStates(ctx context.Context, n int64) ([]StateCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"senderState": bson.M{"$exists": true, "$ne": ""}}}},
		{{Key: "$group", Value: bson.M{"_id": "$senderState", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: n}},
	}
	out := []StateCount{}
	if err := r.aggregate(ctx, pipeline, &out); err != nil {
		return nil, fmt.Errorf("aggregating top states: %w", err)
	}
	return out, nil
}

func (r *StatsRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, dest interface{}) error {
	cursor, err := r.forms.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cursor.All(ctx, dest)
}

func (r *StatsRepository) PincodeCounts(ctx context.Context) (PincodeStats, error) {
	var s PincodeStats
	total, err := r.pincodes.CountDocuments(ctx, bson.M{})
	if err != nil {
		return s, fmt.Errorf("counting pincodes: %w", err)
	}
	states, err := r.pincodes.Distinct(ctx, "statename", bson.M{})
	if err != nil {
		return s, fmt.Errorf("listing states: %w", err)
	}
	cities, err := r.pincodes.Distinct(ctx, "cityname", bson.M{})
	if err != nil {
		return s, fmt.Errorf("listing cities: %w", err)
	}
	return PincodeStats{Total: total, States: len(states), Cities: len(cities)}, nil
}
