package repositories

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"hinglish-snaps/db"
	"hinglish-snaps/models"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(d *mongo.Database) *UserRepository {
	return &UserRepository{col: d.Collection(db.CollectionUsers)}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user. A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
