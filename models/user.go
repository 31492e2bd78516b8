package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is a registered account. Password holds the bcrypt hash and is never
// serialised to JSON.
// Collection: users
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	Phone    string             `bson:"phone" json:"phone"`
	Password string             `bson:"password" json:"-"`
	IsAdmin  bool               `bson:"is_admin" json:"isAdmin"`
}
