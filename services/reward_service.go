// services/reward_service.go - Reward Ledger
package services

import (
	"fmt"
	"log"
	"xavilearn/models"

	"gorm.io/gorm"
)

// RewardLedger applies claimed rewards to a user. It performs no deduplication
// of its own: callers gate every Grant behind their claim-flag check so the
// ledger is invoked at most once per claim.
type RewardLedger struct {
	db *gorm.DB
}

func NewRewardLedger(db *gorm.DB) *RewardLedger {
	return &RewardLedger{db: db}
}

// Grant applies a reward inside the caller's transaction. Coin grants increment
// the balance atomically in SQL; badge grants bump the badge counter; item
// grants are a flagging point until an inventory system exists.
func (l *RewardLedger) Grant(tx *gorm.DB, userID uint, rewardType models.RewardType, amount int) error {
	switch rewardType {
	case models.RewardCoins:
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("xavi_coints", gorm.Expr("xavi_coints + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil

	case models.RewardBadge:
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("badges_earned", gorm.Expr("badges_earned + ?", 1)).Error

	case models.RewardItem:
		log.Printf("Item reward for user %d not materialized (no inventory yet)", userID)
		return nil

	default:
		return fmt.Errorf("unknown reward type %q", rewardType)
	}
}
