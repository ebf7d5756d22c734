package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"pollsapi/internal/core"
	"pollsapi/internal/models"
)

const uniqueViolation = "23505"

type VoteStore struct {
	db *gorm.DB
}

func NewVoteStore(db *gorm.DB) *VoteStore {
	return &VoteStore{db: db}
}

func (s *VoteStore) HasVoted(ctx context.Context, pollID, userID int) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Where("poll_id = ? AND user_id = ?", pollID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *VoteStore) CountSince(ctx context.Context, userID int, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

// Cast inserts the vote and bumps the option counter in one transaction.
// When a concurrent vote from the same user commits first, the insert hits
// the (poll_id, user_id) unique index; that loss is reported as an
// ALREADY_VOTED conflict and the counter increment rolls back with it.
func (s *VoteStore) Cast(ctx context.Context, pollID, optionID, userID int) (*models.Vote, error) {
	vote := &models.Vote{
		PollID:       pollID,
		PollOptionID: optionID,
		UserID:       userID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vote).Error; err != nil {
			return err
		}
		return tx.Model(&models.PollOption{}).
			Where("id = ?", optionID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1)).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.Conflict(core.CodeAlreadyVoted, "user has already voted on this poll")
		}
		return nil, err
	}
	return vote, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
