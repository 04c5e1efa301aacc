package model

import "time"

// EmailTemplate is a saved subject/body pair a user can reuse across sends.
type EmailTemplate struct {
	ID        string    `db:"id" bson:"_id" json:"id"`
	OwnerID   string    `db:"owner_id" bson:"owner_id" json:"owner_id"`
	Name      string    `db:"name" bson:"name" json:"name"`
	Subject   string    `db:"subject" bson:"subject" json:"subject"`
	Body      string    `db:"body" bson:"body" json:"body"`
	Variables []string  `db:"variables" bson:"variables" json:"variables"`
	CreatedAt time.Time `db:"created_at" bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" bson:"updated_at" json:"updated_at"`
}
