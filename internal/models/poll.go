package models

import "time"

type Poll struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null;index" json:"title"`
	Description string `gorm:"size:1000" json:"description,omitempty"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
	IsPublic    bool   `gorm:"not null;default:true" json:"is_public"`

	// OwnerID is set at creation and never changes afterwards.
	OwnerID int  `gorm:"not null;index" json:"owner_id"`
	Owner   User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`

	Options []PollOption `gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE" json:"options,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type PollOption struct {
	ID     int    `gorm:"primaryKey" json:"id"`
	PollID int    `gorm:"not null;index" json:"poll_id"`
	Text   string `gorm:"size:100;not null" json:"text"`

	// Incremented only by the vote write path, inside the same
	// transaction as the vote insert. Never decremented.
	VoteCount int `gorm:"not null;default:0" json:"vote_count"`
}

// Vote rows are append-only. The composite unique index on
// (poll_id, user_id) is the authoritative one-vote-per-poll guard;
// everything above it is a fast-path pre-check.
type Vote struct {
	ID           int `gorm:"primaryKey" json:"id"`
	PollID       int `gorm:"not null;uniqueIndex:idx_votes_poll_user" json:"poll_id"`
	PollOptionID int `gorm:"not null;index" json:"poll_option_id"`
	UserID       int `gorm:"not null;uniqueIndex:idx_votes_poll_user" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}
