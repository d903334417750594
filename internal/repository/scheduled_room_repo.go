package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizfund/internal/model"
)

// ScheduledRoomRepo handles MongoDB operations for scheduled
// fundraising events.
type ScheduledRoomRepo interface {
	Create(ctx context.Context, room *model.ScheduledRoom) error
	GetByID(ctx context.Context, id string) (*model.ScheduledRoom, error)
	ListByHost(ctx context.Context, hostID string) ([]*model.ScheduledRoom, error)
	ListUpcoming(ctx context.Context) ([]*model.ScheduledRoom, error)
	SetStatus(ctx context.Context, id string, status model.ScheduledRoomStatus) error
	Delete(ctx context.Context, id string) error
}

type scheduledRoomRepo struct {
	collection *mongo.Collection
}

func NewScheduledRoomRepo(db *mongo.Database) ScheduledRoomRepo {
	return &scheduledRoomRepo{
		collection: db.Collection("scheduled_rooms"),
	}
}

func (r *scheduledRoomRepo) Create(ctx context.Context, room *model.ScheduledRoom) error {
	if room.ID == "" {
		room.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now
	if room.Status == "" {
		room.Status = model.ScheduledPending
	}

	_, err := r.collection.InsertOne(ctx, room)
	return err
}

func (r *scheduledRoomRepo) GetByID(ctx context.Context, id string) (*model.ScheduledRoom, error) {
	var room model.ScheduledRoom
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Scheduled room not found
		}
		return nil, err
	}
	return &room, nil
}

func (r *scheduledRoomRepo) ListByHost(ctx context.Context, hostID string) ([]*model.ScheduledRoom, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"hostId": hostID},
		options.Find().SetSort(bson.M{"scheduledAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rooms []*model.ScheduledRoom
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *scheduledRoomRepo) ListUpcoming(ctx context.Context) ([]*model.ScheduledRoom, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"status":      model.ScheduledPending,
		"scheduledAt": bson.M{"$gte": time.Now()},
	}, options.Find().SetSort(bson.M{"scheduledAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rooms []*model.ScheduledRoom
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *scheduledRoomRepo) SetStatus(ctx context.Context, id string, status model.ScheduledRoomStatus) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updatedAt": time.Now()},
	})
	return err
}

func (r *scheduledRoomRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
