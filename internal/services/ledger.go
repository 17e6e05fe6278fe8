package services

import (
	"errors"
	"fmt"
	"votecount/internal/db"
	"votecount/internal/metrics"
	"votecount/internal/models"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// LedgerService 管理每个 (用户, 计票记录) 的投票槽位，并在每次变更时
// 通过 TallyService.ApplyDelta 保持汇总计数一致
type LedgerService struct {
	clock clockwork.Clock
	tally *TallyService
}

func NewLedgerService(tally *TallyService) *LedgerService {
	return &LedgerService{clock: clockwork.NewRealClock(), tally: tally}
}

// NewLedgerServiceWithClock is used by tests to control timestamps.
func NewLedgerServiceWithClock(tally *TallyService, clock clockwork.Clock) *LedgerService {
	return &LedgerService{clock: clock, tally: tally}
}

// GetVote 查询某用户在某计票记录上的当前投票
func (s *LedgerService) GetVote(userID, voteCountID uint) (*models.Vote, error) {
	var vote models.Vote
	err := db.DB.Where("user_id = ? AND vote_count_id = ?", userID, voteCountID).
		First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// RegisterVote evaluates a user's vote attempt against their existing vote
// slot and adjusts the VoteCount accordingly. The whole sequence runs in one
// transaction so the tally never observably reflects neither the old nor the
// new vote.
//
//   - no prior vote: create one, counter +direction
//   - prior vote, same direction: remove it, counter -direction (toggle off)
//   - prior vote, other direction: replace it, both counters adjusted
//
// Returns the net change to the vote sum and whether the attempt was counted.
func (s *LedgerService) RegisterVote(userID uint, vc *models.VoteCount, direction int, ipAddress string) (netChange int, accepted bool, err error) {
	if direction != models.Upvote && direction != models.Downvote {
		return 0, false, fmt.Errorf("invalid vote direction %d", direction)
	}

	// TODO: Rate-limit users based on IP to avoid spamming
	// (would return accepted=false without touching the tally)

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// 检查该用户是否已投票
		var prev models.Vote
		result := tx.Where("user_id = ? AND vote_count_id = ?", userID, vc.ID).First(&prev)
		if result.Error != nil {
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}
			// 首次投票
			if err := s.createVote(tx, userID, vc.ID, direction, ipAddress); err != nil {
				return err
			}
			netChange += direction
			return nil
		}

		// 已有投票：先删除旧票并扣减对应计数
		prevDirection := prev.Direction
		if err := tx.Delete(&models.Vote{}, prev.ID).Error; err != nil {
			return err
		}
		if err := s.adjustCounter(tx, vc.ID, prevDirection, -1); err != nil {
			return err
		}
		netChange -= prevDirection

		if prevDirection == direction {
			// 同方向重复提交视为撤销，不再新建
			metrics.VotesRetracted.WithLabelValues("false").Inc()
			return nil
		}

		// 方向改变：重新读取计票记录以观察刚应用的扣减，再写入新票
		var fresh models.VoteCount
		if err := tx.First(&fresh, vc.ID).Error; err != nil {
			return err
		}
		if err := s.createVote(tx, userID, fresh.ID, direction, ipAddress); err != nil {
			return err
		}
		netChange += direction
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return netChange, true, nil
}

// RetractVote deletes the vote. Under normal circumstances the owning
// VoteCount's counter is decremented to match; with preserveTally the
// counters are deliberately left alone (administrative bulk deletes where
// tally drift is acceptable).
func (s *LedgerService) RetractVote(vote *models.Vote, preserveTally bool) error {
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Vote{}, vote.ID).Error; err != nil {
			return err
		}
		if preserveTally {
			return nil
		}
		return s.adjustCounter(tx, vote.VoteCountID, vote.Direction, -1)
	})
	if err != nil {
		return err
	}
	metrics.VotesRetracted.WithLabelValues(fmt.Sprintf("%t", preserveTally)).Inc()
	return nil
}

// BulkDeleteVotes removes votes one at a time (never as a single set delete)
// so that each deletion's counter side effect fires. Missing ids are skipped.
// The returned message is the human-readable summary shown in the admin UI.
func (s *LedgerService) BulkDeleteVotes(ids []uint, preserveTally bool) (int, string, error) {
	deleted := 0
	for _, id := range ids {
		var vote models.Vote
		if err := db.DB.First(&vote, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return deleted, "", err
		}
		if err := s.RetractVote(&vote, preserveTally); err != nil {
			return deleted, "", err
		}
		deleted++
	}

	msg := fmt.Sprintf("%d votes were", deleted)
	if deleted == 1 {
		msg = "1 vote was"
	}
	return deleted, msg + " successfully deleted.", nil
}

// createVote 写入一条新投票并增加对应计数列
func (s *LedgerService) createVote(tx *gorm.DB, userID, voteCountID uint, direction int, ipAddress string) error {
	vote := models.Vote{
		UserID:      userID,
		VoteCountID: voteCountID,
		Direction:   direction,
		IPAddress:   ipAddress,
		CreatedAt:   s.clock.Now(),
	}
	if err := tx.Create(&vote).Error; err != nil {
		return err
	}
	if err := s.adjustCounter(tx, voteCountID, direction, 1); err != nil {
		return err
	}
	metrics.VotesRegistered.WithLabelValues(metrics.DirectionLabel(direction)).Inc()
	return nil
}

// adjustCounter 按投票方向把 ±1 转换到对应的计数列上
func (s *LedgerService) adjustCounter(tx *gorm.DB, voteCountID uint, direction, sign int) error {
	if direction == models.Upvote {
		return s.tally.ApplyDelta(tx, voteCountID, sign, 0)
	}
	return s.tally.ApplyDelta(tx, voteCountID, 0, sign)
}
