package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID             uuid.UUID
	Username       string
	SecUID         sql.NullString
	FullName       sql.NullString
	Followers      sql.NullInt64
	Following      sql.NullInt64
	AccountLikes   sql.NullInt64
	Seller         sql.NullBool
	ProfileURL     sql.NullString
	Email          sql.NullString
	AvatarURL      sql.NullString
	AvgViews       sql.NullInt64
	AvgLikes       sql.NullInt64
	AvgComments    sql.NullInt64
	AvgSaves       sql.NullInt64
	AvgShares      sql.NullInt64
	EngagementRate sql.NullFloat64
	UpdatedAt      time.Time
}

type Post struct {
	ID           uuid.UUID
	PostID       string
	SecUID       string
	Username     sql.NullString
	FullName     sql.NullString
	ProfileURL   sql.NullString
	PostURL      sql.NullString
	Caption      sql.NullString
	Views        sql.NullInt64
	Likes        sql.NullInt64
	Comments     sql.NullInt64
	Shares       sql.NullInt64
	Saves        sql.NullInt64
	Duration     sql.NullInt64
	QualityScore sql.NullString
	PostedAt     time.Time
}
