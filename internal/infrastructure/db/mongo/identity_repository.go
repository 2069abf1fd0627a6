package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
)

const identityCollection = "users"

// IdentityRepository implements ports.IdentityStore using MongoDB. Email
// uniqueness is backed by a unique index created in EnsureIndexes.
type IdentityRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{
		coll: db.Collection(identityCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the unique email index. Safe to call on every start.
func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

type mongoIdentity struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Email         string             `bson:"email"`
	Name          string             `bson:"name"`
	Image         string             `bson:"image,omitempty"`
	PasswordHash  string             `bson:"password_hash,omitempty"`
	Provider      string             `bson:"provider"`
	Role          string             `bson:"role"`
	Banned        bool               `bson:"banned"`
	EmailVerified bool               `bson:"email_verified"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func toDomain(m *mongoIdentity) *domain.Identity {
	return &domain.Identity{
		ID:            m.ID.Hex(),
		Email:         m.Email,
		Name:          m.Name,
		Image:         m.Image,
		PasswordHash:  m.PasswordHash,
		Provider:      domain.Provider(m.Provider),
		Role:          m.Role,
		Banned:        m.Banned,
		EmailVerified: m.EmailVerified,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	doc := mongoIdentity{
		Email:         identity.Email,
		Name:          identity.Name,
		Image:         identity.Image,
		PasswordHash:  identity.PasswordHash,
		Provider:      string(identity.Provider),
		Role:          identity.Role,
		Banned:        identity.Banned,
		EmailVerified: identity.EmailVerified,
		CreatedAt:     identity.CreatedAt,
		UpdatedAt:     identity.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return toDomain(&doc), nil
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	var m mongoIdentity
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return toDomain(&m), nil
}

// UpdateProfile refreshes name and image. Provider and role are never touched.
func (r *IdentityRepository) UpdateProfile(ctx context.Context, email string, update ports.ProfileUpdate) (*domain.Identity, error) {
	var m mongoIdentity
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{
			"name":       update.Name,
			"image":      update.Image,
			"updated_at": r.now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update identity profile: %w", err)
	}
	return toDomain(&m), nil
}

func (r *IdentityRepository) SetPasswordHash(ctx context.Context, email, hash string) error {
	return r.setFields(ctx, email, bson.M{"password_hash": hash})
}

func (r *IdentityRepository) MarkEmailVerified(ctx context.Context, email string) error {
	return r.setFields(ctx, email, bson.M{"email_verified": true})
}

func (r *IdentityRepository) setFields(ctx context.Context, email string, fields bson.M) error {
	fields["updated_at"] = r.now()
	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
