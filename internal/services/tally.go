package services

import (
	"time"
	"votecount/internal/db"
	"votecount/internal/metrics"
	"votecount/internal/models"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// TallyService 维护每个内容对象的票数汇总记录（VoteCount）
type TallyService struct {
	clock clockwork.Clock
}

func NewTallyService() *TallyService {
	return &TallyService{clock: clockwork.NewRealClock()}
}

// NewTallyServiceWithClock is used by tests to control timestamps.
func NewTallyServiceWithClock(clock clockwork.Clock) *TallyService {
	return &TallyService{clock: clock}
}

// Get 按主键查询计票记录，不存在时返回 gorm.ErrRecordNotFound
func (s *TallyService) Get(id uint) (*models.VoteCount, error) {
	var vc models.VoteCount
	if err := db.DB.First(&vc, id).Error; err != nil {
		return nil, err
	}
	return &vc, nil
}

// GetOrCreate returns the VoteCount for (contentType, objectPK), creating a
// zero-counter row on first use. Because object_pk is opaque text the pair
// has no unique constraint; if a concurrent race produced duplicates, the
// earliest row (lowest id) is kept and the rest are deleted. Their counters
// are not merged - a documented weak point of the cooperative guard.
func (s *TallyService) GetOrCreate(contentType, objectPK string) (*models.VoteCount, error) {
	var counts []models.VoteCount
	if err := db.DB.Where("content_type = ? AND object_pk = ?", contentType, objectPK).
		Order("id ASC").Find(&counts).Error; err != nil {
		return nil, err
	}

	switch len(counts) {
	case 0:
		vc := models.VoteCount{
			ContentType: contentType,
			ObjectPK:    objectPK,
			Modified:    s.clock.Now(),
		}
		if err := db.DB.Create(&vc).Error; err != nil {
			return nil, err
		}
		metrics.VoteCountsCreated.Inc()
		return &vc, nil
	case 1:
		return &counts[0], nil
	default:
		// 并发创建出了重复记录：保留最早的一条，其余删除
		kept := counts[0]
		for _, extra := range counts[1:] {
			if err := db.DB.Delete(&models.VoteCount{}, extra.ID).Error; err != nil {
				return nil, err
			}
			metrics.DuplicatesResolved.Inc()
		}
		return &kept, nil
	}
}

// Create inserts a zero-counter VoteCount and fails with
// ErrDuplicateContentObject if the pair already has one. Same caveat as
// GetOrCreate: the check is lookup-before-insert, not a constraint.
func (s *TallyService) Create(contentType, objectPK string) (*models.VoteCount, error) {
	var count int64
	if err := db.DB.Model(&models.VoteCount{}).
		Where("content_type = ? AND object_pk = ?", contentType, objectPK).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, models.ErrDuplicateContentObject
	}

	vc := models.VoteCount{
		ContentType: contentType,
		ObjectPK:    objectPK,
		Modified:    s.clock.Now(),
	}
	if err := db.DB.Create(&vc).Error; err != nil {
		return nil, err
	}
	metrics.VoteCountsCreated.Inc()
	return &vc, nil
}

// VotesInWindow returns the number of votes cast (upvote OR downvote, not
// the vote sum) for this VoteCount during the trailing window. Only accurate
// for as long as vote rows are kept; if history older than the window has
// been purged the result undercounts.
func (s *TallyService) VotesInWindow(vc *models.VoteCount, window time.Duration) (int64, error) {
	if window <= 0 {
		return 0, models.ErrInvalidPeriod
	}
	since := s.clock.Now().Add(-window)

	var n int64
	err := db.DB.Model(&models.Vote{}).
		Where("vote_count_id = ? AND created_at >= ?", vc.ID, since).
		Count(&n).Error
	return n, err
}

// ApplyDelta adjusts the counters by a relative amount and refreshes the
// modified timestamp, all in a single UPDATE so concurrent deltas never
// lose updates. This is the only path that may touch the counter columns.
func (s *TallyService) ApplyDelta(tx *gorm.DB, voteCountID uint, upDelta, downDelta int) error {
	return tx.Model(&models.VoteCount{}).
		Where("id = ?", voteCountID).
		UpdateColumns(map[string]interface{}{
			"upvotes":   gorm.Expr("upvotes + ?", upDelta),
			"downvotes": gorm.Expr("downvotes + ?", downDelta),
			"modified":  s.clock.Now(),
		}).Error
}
