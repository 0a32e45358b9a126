package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

const principalCollection = "principals"

// PrincipalRepository implements ports.CredentialStore on MongoDB. Status
// transitions are updates; Purge is the only delete.
type PrincipalRepository struct {
	coll *mongo.Collection
}

func NewPrincipalRepository(db *mongo.Database) *PrincipalRepository {
	return &PrincipalRepository{coll: db.Collection(principalCollection)}
}

type mongoPrincipal struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Roles        []string           `bson:"roles"`
	Status       string             `bson:"status"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

func (r *PrincipalRepository) FindActiveByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	var mp mongoPrincipal
	filter := bson.M{"email": email, "status": string(domain.PrincipalActive)}
	if err := r.coll.FindOne(ctx, filter).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find principal: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *PrincipalRepository) Save(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	now := time.Now().UTC()
	doc := fromDomain(p)
	doc.UpdatedAt = now.Unix()

	if p.ID == "" {
		if doc.CreatedAt == 0 {
			doc.CreatedAt = doc.UpdatedAt
		}
		res, err := r.coll.InsertOne(ctx, doc)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrPrincipalExists
			}
			return nil, fmt.Errorf("insert principal: %w", err)
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			doc.ID = oid
		}
		return doc.toDomain(), nil
	}

	oid, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return nil, domain.ErrPrincipalNotFound
	}
	doc.ID = oid
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrPrincipalExists
		}
		return nil, fmt.Errorf("update principal: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrPrincipalNotFound
	}
	return doc.toDomain(), nil
}

// SoftDelete flips the principal to deleted without removing the document.
func (r *PrincipalRepository) SoftDelete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrPrincipalNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"status":     string(domain.PrincipalDeleted),
			"updated_at": time.Now().UTC().Unix(),
		},
	})
	if err != nil {
		return fmt.Errorf("soft delete principal: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPrincipalNotFound
	}
	return nil
}

// Purge physically removes the principal document.
func (r *PrincipalRepository) Purge(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrPrincipalNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("purge principal: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPrincipalNotFound
	}
	return nil
}

func fromDomain(p *domain.Principal) mongoPrincipal {
	roles := make([]string, len(p.Roles))
	for i, role := range p.Roles {
		roles[i] = string(role)
	}
	var created int64
	if !p.CreatedAt.IsZero() {
		created = p.CreatedAt.Unix()
	}
	return mongoPrincipal{
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Roles:        roles,
		Status:       string(p.Status),
		CreatedAt:    created,
	}
}

func (mp mongoPrincipal) toDomain() *domain.Principal {
	roles := make([]domain.Role, len(mp.Roles))
	for i, role := range mp.Roles {
		roles[i] = domain.Role(role)
	}
	return &domain.Principal{
		ID:           mp.ID.Hex(),
		Email:        mp.Email,
		PasswordHash: mp.PasswordHash,
		Roles:        roles,
		Status:       domain.PrincipalStatus(mp.Status),
		CreatedAt:    unixToTime(mp.CreatedAt),
		UpdatedAt:    unixToTime(mp.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
