package core

import (
	"context"
	"errors"
	"strings"

	"pollsapi/internal/config"
	"pollsapi/internal/models"
)

// Service implements the poll operations over the repositories. All
// authorization goes through the gate; all persistence through the repos.
type Service struct {
	polls    PollRepo
	votes    VoteRepo
	gate     *Gate
	validate Validator
	limits   config.Limits
}

func NewService(polls PollRepo, votes VoteRepo, limits config.Limits) *Service {
	return &Service{
		polls:    polls,
		votes:    votes,
		gate:     NewGate(votes, limits),
		validate: NewValidator(limits),
		limits:   limits,
	}
}

type CreatePollInput struct {
	Title       string
	Description string
	IsActive    bool
	IsPublic    bool
}

// UpdatePollInput carries partial-update semantics: nil fields are left
// untouched, so a field is only cleared when the client sends it explicitly.
type UpdatePollInput struct {
	Title       *string
	Description *string
	IsActive    *bool
	IsPublic    *bool
}

func (s *Service) ListPolls(ctx context.Context, params ListParams, callerID *int) (*PollPage, error) {
	items, total, err := s.polls.List(ctx, ListScope{Params: params, CallerID: callerID})
	if err != nil {
		return nil, Internal(err)
	}
	if items == nil {
		items = []PollSummary{}
	}
	return &PollPage{
		Items:    items,
		PageMeta: NewPageMeta(total, params.Page, params.Size),
	}, nil
}

// ListOwnPolls returns the caller's polls regardless of visibility.
func (s *Service) ListOwnPolls(ctx context.Context, params ListParams, ownerID int) (*PollPage, error) {
	params.OwnerID = &ownerID
	return s.ListPolls(ctx, params, &ownerID)
}

func (s *Service) GetPoll(ctx context.Context, pollID int, callerID *int) (*models.Poll, error) {
	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return nil, Internal(err)
	}
	if poll == nil {
		return nil, NotFound("poll not found")
	}
	if denied := s.gate.CanRead(poll, callerID); denied != nil {
		return nil, denied
	}
	return poll, nil
}

func (s *Service) CreatePoll(ctx context.Context, ownerID int, in CreatePollInput) (*models.Poll, error) {
	if err := s.validate.PollTitle(in.Title); err != nil {
		return nil, err
	}
	if err := s.validate.PollDescription(in.Description); err != nil {
		return nil, err
	}
	if err := s.validate.TitleDiffers(in.Title, in.Description); err != nil {
		return nil, err
	}

	count, err := s.polls.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, Internal(err)
	}
	if count >= int64(s.limits.MaxPollsPerUser) {
		return nil, RuleViolation(CodePollLimitExceeded, "maximum number of polls per user exceeded")
	}

	title := strings.TrimSpace(in.Title)
	dup, err := s.polls.TitleExists(ctx, ownerID, title, 0)
	if err != nil {
		return nil, Internal(err)
	}
	if dup {
		return nil, Conflict(CodeDuplicateTitle, "a poll with this title already exists")
	}

	poll := &models.Poll{
		Title:       title,
		Description: in.Description,
		IsActive:    in.IsActive,
		IsPublic:    in.IsPublic,
		OwnerID:     ownerID,
	}
	if err := s.polls.Create(ctx, poll); err != nil {
		return nil, Internal(err)
	}
	return poll, nil
}

func (s *Service) UpdatePoll(ctx context.Context, pollID int, callerID *int, in UpdatePollInput) (*models.Poll, error) {
	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return nil, Internal(err)
	}
	if poll == nil {
		return nil, NotFound("poll not found")
	}
	if denied := s.gate.CanMutate(poll, callerID); denied != nil {
		return nil, denied
	}

	if in.Title != nil {
		if err := s.validate.PollTitle(*in.Title); err != nil {
			return nil, err
		}
		title := strings.TrimSpace(*in.Title)
		dup, err := s.polls.TitleExists(ctx, poll.OwnerID, title, poll.ID)
		if err != nil {
			return nil, Internal(err)
		}
		if dup {
			return nil, Conflict(CodeDuplicateTitle, "a poll with this title already exists")
		}
		poll.Title = title
	}
	if in.Description != nil {
		if err := s.validate.PollDescription(*in.Description); err != nil {
			return nil, err
		}
		poll.Description = *in.Description
	}
	if err := s.validate.TitleDiffers(poll.Title, poll.Description); err != nil {
		return nil, err
	}
	if in.IsActive != nil {
		poll.IsActive = *in.IsActive
	}
	if in.IsPublic != nil {
		poll.IsPublic = *in.IsPublic
	}

	if err := s.polls.Save(ctx, poll); err != nil {
		return nil, Internal(err)
	}
	return poll, nil
}

func (s *Service) DeletePoll(ctx context.Context, pollID int, callerID *int) error {
	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return Internal(err)
	}
	if poll == nil {
		return NotFound("poll not found")
	}
	if denied := s.gate.CanMutate(poll, callerID); denied != nil {
		return denied
	}
	if err := s.polls.Delete(ctx, poll); err != nil {
		return Internal(err)
	}
	return nil
}

func (s *Service) AddOption(ctx context.Context, pollID int, callerID *int, text string) (*models.PollOption, error) {
	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return nil, Internal(err)
	}
	if poll == nil {
		return nil, NotFound("poll not found")
	}
	if denied := s.gate.CanMutate(poll, callerID); denied != nil {
		return nil, denied
	}
	if !poll.IsActive {
		return nil, RuleViolation(CodePollInactive, "poll is not active")
	}
	if err := s.validate.OptionText(text); err != nil {
		return nil, err
	}

	count, err := s.polls.CountOptions(ctx, poll.ID)
	if err != nil {
		return nil, Internal(err)
	}
	if count >= int64(s.limits.MaxPollOptions) {
		return nil, RuleViolation(CodePollLimitExceeded, "maximum number of options reached")
	}

	text = strings.TrimSpace(text)
	dup, err := s.polls.OptionTextExists(ctx, poll.ID, text)
	if err != nil {
		return nil, Internal(err)
	}
	if dup {
		return nil, Conflict(CodeDuplicateOption, "an option with this text already exists")
	}

	option := &models.PollOption{PollID: poll.ID, Text: text}
	if err := s.polls.AddOption(ctx, option); err != nil {
		return nil, Internal(err)
	}
	return option, nil
}

// CastVote authorizes through the gate, then hands off to the ledger. The
// ledger re-verifies the uniqueness constraint; when a concurrent vote wins
// the race the resulting conflict is returned as-is.
func (s *Service) CastVote(ctx context.Context, pollID, optionID int, callerID *int) (*models.Vote, error) {
	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return nil, Internal(err)
	}
	if poll == nil {
		return nil, NotFound("poll not found")
	}

	option, err := s.polls.FindOption(ctx, optionID)
	if err != nil {
		return nil, Internal(err)
	}

	if denied := s.gate.CanVote(ctx, poll, option, callerID); denied != nil {
		return nil, denied
	}

	vote, err := s.votes.Cast(ctx, poll.ID, option.ID, *callerID)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			return nil, ce
		}
		return nil, Internal(err)
	}
	return vote, nil
}
