package model

import "time"

type User struct {
	ID                 string     `db:"id" bson:"_id" json:"id"`
	Email              string     `db:"email" bson:"email" json:"email"`
	Name               string     `db:"name" bson:"name" json:"name"`
	ProfilePic         string     `db:"profile_pic" bson:"profile_pic" json:"profilePic"`
	GoogleID           string     `db:"google_id" bson:"google_id" json:"googleId"`
	GoogleAccessToken  string     `db:"google_access_token" bson:"google_access_token" json:"-"`
	GoogleRefreshToken string     `db:"google_refresh_token" bson:"google_refresh_token" json:"-"`
	TokenExpiry        *time.Time `db:"token_expiry" bson:"token_expiry,omitempty" json:"-"`
	CreatedAt          time.Time  `db:"created_at" bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" bson:"updated_at" json:"updated_at"`
}
