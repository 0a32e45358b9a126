package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

const sessionEventCollection = "session_events"

// SessionEventRepository implements ports.SessionEventRepository using MongoDB.
type SessionEventRepository struct {
	coll *mongo.Collection
}

// NewSessionEventRepository creates a new SessionEventRepository.
func NewSessionEventRepository(db *mongo.Database) *SessionEventRepository {
	return &SessionEventRepository{coll: db.Collection(sessionEventCollection)}
}

// InsertSessionEvent appends one entry to the session audit collection.
func (r *SessionEventRepository) InsertSessionEvent(ctx context.Context, event domain.SessionEvent) error {
	doc := bson.M{
		"kind":         string(event.Kind),
		"principal_id": event.PrincipalID,
		"email":        event.Email,
		"at":           event.At.UTC(),
		"stored_at":    time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert session event: %w", err)
	}
	return nil
}
