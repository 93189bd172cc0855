package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	settingsCollection = "settings"
	penaltySettingID   = "penalty"
)

type penaltyDoc struct {
	ID    string  `bson:"_id"`
	Value float64 `bson:"value"`
}

// MongoSettingsRepository implements billing.SettingsRepository on top of
// the settings collection.
type MongoSettingsRepository struct {
	col *mongo.Collection
}

func NewMongoSettingsRepository(db *mongo.Database) *MongoSettingsRepository {
	return &MongoSettingsRepository{col: db.Collection(settingsCollection)}
}

// PenaltyAmount reads the single global penalty document. A missing
// document means no penalty is configured and reads as 0.
func (r *MongoSettingsRepository) PenaltyAmount(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var doc penaltyDoc
	err := r.col.FindOne(ctx, bson.M{"_id": penaltySettingID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read penalty setting: %w", err)
	}
	return doc.Value, nil
}
