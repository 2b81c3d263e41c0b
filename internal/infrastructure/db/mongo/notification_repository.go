package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clientmax/agency-crm/internal/core/domain"
	"github.com/clientmax/agency-crm/internal/core/ports"
)

const notificationsCollection = "notifications"

// NotificationRepository implements ports.NotificationRepository using MongoDB.
type NotificationRepository struct {
	db *mongo.Database
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *mongo.Database) ports.NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert persists one notification document keyed by its stamped id.
func (r *NotificationRepository) Insert(ctx context.Context, n domain.Notification) error {
	doc := bson.M{
		"_id":       n.ID,
		"type":      string(n.Type),
		"title":     n.Title,
		"message":   n.Message,
		"timestamp": n.Timestamp.UTC(),
		"read":      n.Read,
		"priority":  string(n.Priority),
	}
	if n.ClientID != "" {
		doc["client_id"] = n.ClientID
	}
	if n.ClientName != "" {
		doc["client_name"] = n.ClientName
	}
	if n.ActionURL != "" {
		doc["action_url"] = n.ActionURL
	}

	_, err := r.db.Collection(notificationsCollection).InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

type notificationDoc struct {
	ID         string    `bson:"_id"`
	Type       string    `bson:"type"`
	Title      string    `bson:"title"`
	Message    string    `bson:"message"`
	Timestamp  time.Time `bson:"timestamp"`
	Read       bool      `bson:"read"`
	Priority   string    `bson:"priority"`
	ClientID   string    `bson:"client_id,omitempty"`
	ClientName string    `bson:"client_name,omitempty"`
	ActionURL  string    `bson:"action_url,omitempty"`
}

// List returns all stored notifications, newest first.
func (r *NotificationRepository) List(ctx context.Context) ([]domain.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.db.Collection(notificationsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.Notification
	for cur.Next(ctx) {
		var doc notificationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		out = append(out, domain.Notification{
			ID:         doc.ID,
			Type:       domain.NotificationType(doc.Type),
			Title:      doc.Title,
			Message:    doc.Message,
			Timestamp:  doc.Timestamp,
			Read:       doc.Read,
			Priority:   domain.Priority(doc.Priority),
			ClientID:   doc.ClientID,
			ClientName: doc.ClientName,
			ActionURL:  doc.ActionURL,
		})
	}
	return out, cur.Err()
}

// MarkRead flags one stored notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.db.Collection(notificationsCollection).
		UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	return err
}

// MarkAllRead flags every stored notification as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context) error {
	_, err := r.db.Collection(notificationsCollection).
		UpdateMany(ctx, bson.M{}, bson.M{"$set": bson.M{"read": true}})
	return err
}

// Delete removes one stored notification.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Collection(notificationsCollection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteAll removes every stored notification.
func (r *NotificationRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Collection(notificationsCollection).DeleteMany(ctx, bson.M{})
	return err
}
