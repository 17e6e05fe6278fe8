package models

import (
	"time"
)

// Vote captures a single user's current vote on one VoteCount.
//
// A user's vote is a mutable slot, not a log: the unique index over
// (user_id, vote_count_id) guarantees at most one row per pair even when
// two requests race past the application-level check.
type Vote struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_votecount" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	VoteCountID uint      `gorm:"not null;uniqueIndex:idx_user_votecount;index" json:"vote_count_id"`
	VoteCount   VoteCount `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"vote_count"`
	Direction   int       `gorm:"not null" json:"direction"` // 1 或 -1
	IPAddress   string    `gorm:"size:45;not null" json:"ip_address"`
	CreatedAt   time.Time `json:"created_at"`
}

// DirectionLabel 用于管理后台展示
func (v Vote) DirectionLabel() string {
	if v.Direction == Upvote {
		return "Upvote"
	}
	return "Downvote"
}
