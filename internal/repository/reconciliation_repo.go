package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizfund/internal/model"
)

// ReconciliationRepo handles MongoDB operations for post-quiz
// reconciliation records. Records are keyed by roomId and upserted, so
// re-running finalization never duplicates a snapshot.
type ReconciliationRepo interface {
	Save(ctx context.Context, record *model.ReconciliationRecord) error
	GetByRoomID(ctx context.Context, roomID string) (*model.ReconciliationRecord, error)
	ListByHost(ctx context.Context, hostID string) ([]*model.ReconciliationRecord, error)
}

type reconciliationRepo struct {
	collection *mongo.Collection
}

func NewReconciliationRepo(db *mongo.Database) ReconciliationRepo {
	return &reconciliationRepo{
		collection: db.Collection("reconciliation_records"),
	}
}

func (r *reconciliationRepo) Save(ctx context.Context, record *model.ReconciliationRecord) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"roomId": record.RoomID}, record, opts)
	return err
}

func (r *reconciliationRepo) GetByRoomID(ctx context.Context, roomID string) (*model.ReconciliationRecord, error) {
	var record model.ReconciliationRecord
	err := r.collection.FindOne(ctx, bson.M{"roomId": roomID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Record not found
		}
		return nil, err
	}
	return &record, nil
}

func (r *reconciliationRepo) ListByHost(ctx context.Context, hostID string) ([]*model.ReconciliationRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"hostId": hostID},
		options.Find().SetSort(bson.M{"completedAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*model.ReconciliationRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
