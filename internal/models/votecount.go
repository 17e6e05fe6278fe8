package models

import (
	"errors"
	"fmt"
	"time"
)

// 投票方向常量，两个组件共用同一组值
const (
	Upvote   = 1
	Downvote = -1
)

var (
	// ErrDuplicateContentObject 同一个 (content_type, object_pk) 已存在计票记录
	ErrDuplicateContentObject = errors.New("a VoteCount already exists for this content object")
	// ErrInvalidPeriod 窗口统计必须提供一个正的时间范围
	ErrInvalidPeriod = errors.New("must provide a positive time period (eg, days=1)")
)

// VoteCount stores the aggregate vote totals for any content object.
//
// ObjectPK is a text column so the subject can use *any* primary key type
// (integer or text). Because of that the (content_type, object_pk) pair
// cannot carry a unique constraint; uniqueness is enforced by a
// lookup-before-insert check plus opportunistic duplicate cleanup in the
// tally service.
type VoteCount struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ContentType string    `gorm:"size:100;not null;index:idx_votecount_object" json:"content_type"`
	ObjectPK    string    `gorm:"type:text;not null;index:idx_votecount_object" json:"object_pk"`
	Upvotes     int       `gorm:"not null;default:0" json:"upvotes"`
	Downvotes   int       `gorm:"not null;default:0" json:"downvotes"`
	Modified    time.Time `json:"modified"`
}

// VoteSum 净得分 = 赞 - 踩
func (vc VoteCount) VoteSum() int {
	return vc.Upvotes - vc.Downvotes
}

// ObjectRef serializes an arbitrary primary key for storage in ObjectPK.
func ObjectRef(pk interface{}) string {
	return fmt.Sprint(pk)
}
