package core

import (
	"context"

	"pollsapi/internal/models"
)

// ListScope pairs the caller-facing parameters with the identity used for
// visibility filtering. A nil CallerID means anonymous: public polls only.
type ListScope struct {
	Params   ListParams
	CallerID *int
}

// PollRepo is everything the core needs from poll storage. Implementations
// return (nil, nil) from FindByID when the poll does not exist; the core owns
// the not-found classification.
type PollRepo interface {
	FindByID(ctx context.Context, id int) (*models.Poll, error)
	Create(ctx context.Context, poll *models.Poll) error
	Save(ctx context.Context, poll *models.Poll) error
	Delete(ctx context.Context, poll *models.Poll) error

	CountByOwner(ctx context.Context, ownerID int) (int64, error)
	TitleExists(ctx context.Context, ownerID int, title string, excludeID int) (bool, error)

	CountOptions(ctx context.Context, pollID int) (int64, error)
	OptionTextExists(ctx context.Context, pollID int, text string) (bool, error)
	AddOption(ctx context.Context, option *models.PollOption) error
	FindOption(ctx context.Context, optionID int) (*models.PollOption, error)

	List(ctx context.Context, scope ListScope) ([]PollSummary, int64, error)
}

// VoteRepo extends the gate's read view with the atomic write path. Cast must
// insert the vote row and bump the option counter as one unit, and translate
// a (poll_id, user_id) uniqueness violation into an ALREADY_VOTED conflict.
type VoteRepo interface {
	VoteReads
	Cast(ctx context.Context, pollID, optionID, userID int) (*models.Vote, error)
}
