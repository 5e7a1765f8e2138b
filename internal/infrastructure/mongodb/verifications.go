package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront-api/internal/domain"
)

// DefaultVerificationCollection is the collection holding pending tokens.
const DefaultVerificationCollection = "verification_tokens"

// tokenDoc is the stored form of a verification token. ExpiresAt is a BSON
// date so the TTL index can reap it.
type tokenDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Token     string             `bson:"token"`
	ExpiresAt time.Time          `bson:"expiresAt"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *tokenDoc) toDomain() *domain.VerificationToken {
	return &domain.VerificationToken{
		Email:     d.Email,
		Token:     d.Token,
		ExpiresAt: d.ExpiresAt.Unix(),
		CreatedAt: d.CreatedAt,
	}
}

// VerificationStore keeps verification tokens in MongoDB.
type VerificationStore struct {
	coll *mongo.Collection
}

func NewVerificationStore(db *mongo.Database, collection string) *VerificationStore {
	if collection == "" {
		collection = DefaultVerificationCollection
	}
	return &VerificationStore{coll: db.Collection(collection)}
}

// EnsureIndexes creates the unique and TTL indexes. Safe to call on every start.
func (s *VerificationStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("token_unique"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_ttl"),
		},
	})
	if err != nil {
		return fmt.Errorf("create verification indexes: %w", err)
	}
	return nil
}

// Put replaces the email's token, inserting when none exists.
func (s *VerificationStore) Put(ctx context.Context, v *domain.VerificationToken) error {
	doc := tokenDoc{
		Email:     v.Email,
		Token:     v.Token,
		ExpiresAt: time.Unix(v.ExpiresAt, 0).UTC(),
		CreatedAt: v.CreatedAt,
	}
	replace := func() error {
		_, err := s.coll.ReplaceOne(ctx,
			bson.M{"email": v.Email},
			doc,
			options.Replace().SetUpsert(true),
		)
		return err
	}
	err := replace()
	// Concurrent first upserts for one email collide on email_unique; the
	// retry matches the winner's document and replaces it.
	if mongo.IsDuplicateKeyError(err) {
		err = replace()
	}
	return err
}

func (s *VerificationStore) Find(ctx context.Context, token, email string, now time.Time) (*domain.VerificationToken, error) {
	var doc tokenDoc
	err := s.coll.FindOne(ctx, bson.M{"email": email, "token": token}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	v := doc.toDomain()
	if v.Expired(now) {
		return v, domain.ErrTokenExpired
	}
	return v, nil
}

// Delete removes the record only while it still holds token.
func (s *VerificationStore) Delete(ctx context.Context, email, token string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"email": email, "token": token})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("verification already consumed: %w", domain.ErrNotFound)
	}
	return nil
}

func (s *VerificationStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}
