package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"pollsapi/internal/core"
	"pollsapi/internal/models"
)

type PollStore struct {
	db *gorm.DB
}

func NewPollStore(db *gorm.DB) *PollStore {
	return &PollStore{db: db}
}

func (s *PollStore) FindByID(ctx context.Context, id int) (*models.Poll, error) {
	var poll models.Poll
	err := s.db.WithContext(ctx).Preload("Options").First(&poll, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

func (s *PollStore) Create(ctx context.Context, poll *models.Poll) error {
	return s.db.WithContext(ctx).Create(poll).Error
}

func (s *PollStore) Save(ctx context.Context, poll *models.Poll) error {
	return s.db.WithContext(ctx).Save(poll).Error
}

// Delete removes the poll and, in the same transaction, its options and
// votes. Cascades are also declared at the schema level; deleting explicitly
// keeps the behavior identical on stores migrated without FK enforcement.
func (s *PollStore) Delete(ctx context.Context, poll *models.Poll) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", poll.ID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", poll.ID).Delete(&models.PollOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(poll).Error
	})
}

func (s *PollStore) CountByOwner(ctx context.Context, ownerID int) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Poll{}).
		Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}

func (s *PollStore) TitleExists(ctx context.Context, ownerID int, title string, excludeID int) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.Poll{}).
		Where("owner_id = ? AND LOWER(title) = ?", ownerID, strings.ToLower(title))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *PollStore) CountOptions(ctx context.Context, pollID int) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.PollOption{}).
		Where("poll_id = ?", pollID).Count(&count).Error
	return count, err
}

func (s *PollStore) OptionTextExists(ctx context.Context, pollID int, text string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.PollOption{}).
		Where("poll_id = ? AND LOWER(text) = ?", pollID, strings.ToLower(text)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *PollStore) AddOption(ctx context.Context, option *models.PollOption) error {
	return s.db.WithContext(ctx).Create(option).Error
}

func (s *PollStore) FindOption(ctx context.Context, optionID int) (*models.PollOption, error) {
	var option models.PollOption
	err := s.db.WithContext(ctx).First(&option, optionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &option, nil
}

// List runs the filtered, scoped, sorted page query. The total is counted on
// the filtered set before pagination; vote sorts aggregate option counters
// through a LEFT JOIN so zero-option polls rank as zero, and every ordering
// carries an id tie-break so pages never reshuffle between requests.
func (s *PollStore) List(ctx context.Context, scope core.ListScope) ([]core.PollSummary, int64, error) {
	var total int64
	if err := s.filtered(ctx, scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := s.filtered(ctx, scope).
		Select(`polls.id, polls.title, polls.description, polls.is_active, polls.is_public,
			polls.owner_id, polls.created_at,
			COALESCE(SUM(poll_options.vote_count), 0) AS total_votes`).
		Joins("LEFT JOIN poll_options ON poll_options.poll_id = polls.id").
		Group("polls.id")

	switch scope.Params.Sort {
	case core.SortCreatedAsc:
		q = q.Order("polls.created_at ASC, polls.id ASC")
	case core.SortTitleAsc:
		q = q.Order("polls.title ASC, polls.id ASC")
	case core.SortTitleDesc:
		q = q.Order("polls.title DESC, polls.id ASC")
	case core.SortVotesDesc:
		q = q.Order("total_votes DESC, polls.id ASC")
	case core.SortVotesAsc:
		q = q.Order("total_votes ASC, polls.id ASC")
	default:
		q = q.Order("polls.created_at DESC, polls.id ASC")
	}

	var items []core.PollSummary
	err := q.Offset(scope.Params.Offset()).Limit(scope.Params.Size).Scan(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *PollStore) filtered(ctx context.Context, scope core.ListScope) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Poll{})

	// Visibility scope comes before everything else: anonymous callers see
	// public polls, authenticated callers additionally see their own.
	if scope.CallerID != nil {
		q = q.Where("polls.is_public = ? OR polls.owner_id = ?", true, *scope.CallerID)
	} else {
		q = q.Where("polls.is_public = ?", true)
	}

	if scope.Params.Search != "" {
		q = q.Where("LOWER(polls.title) LIKE ?", "%"+strings.ToLower(scope.Params.Search)+"%")
	}
	if scope.Params.IsActive != nil {
		q = q.Where("polls.is_active = ?", *scope.Params.IsActive)
	}
	if scope.Params.OwnerID != nil {
		q = q.Where("polls.owner_id = ?", *scope.Params.OwnerID)
	}
	return q
}
