package core

import (
	"context"
	"time"

	"pollsapi/internal/config"
	"pollsapi/internal/models"
)

// VoteReads is the read-only slice of the vote ledger the access gate needs:
// one existence lookup and one windowed count. The gate never writes.
type VoteReads interface {
	HasVoted(ctx context.Context, pollID, userID int) (bool, error)
	CountSince(ctx context.Context, userID int, since time.Time) (int64, error)
}

// Gate decides whether a caller may read, vote on, or mutate a poll.
// Decisions are evaluated in a fixed order and the first failing rule wins,
// so every deny carries the most specific reason code.
type Gate struct {
	votes  VoteReads
	limits config.Limits
	now    func() time.Time
}

func NewGate(votes VoteReads, limits config.Limits) *Gate {
	return &Gate{votes: votes, limits: limits, now: time.Now}
}

// CanMutate allows update, delete and option-adding: owner only.
func (g *Gate) CanMutate(poll *models.Poll, callerID *int) *Error {
	if callerID == nil {
		return AuthRequired()
	}
	if *callerID != poll.OwnerID {
		return Denied(CodeNotOwner, "only the poll owner may modify this poll")
	}
	return nil
}

// CanRead allows anyone on public polls; private polls are owner-only.
func (g *Gate) CanRead(poll *models.Poll, callerID *int) *Error {
	if poll.IsPublic {
		return nil
	}
	if callerID == nil {
		return AuthRequired()
	}
	if *callerID != poll.OwnerID {
		return Denied(CodeAccessDenied, "this poll is private")
	}
	return nil
}

// CanVote checks, in order: poll active, caller authenticated, visibility,
// option membership, no prior vote, rolling vote cap. The duplicate-vote
// answer here is advisory; the unique constraint in the ledger is the
// guarantee under concurrency.
func (g *Gate) CanVote(ctx context.Context, poll *models.Poll, option *models.PollOption, callerID *int) *Error {
	if !poll.IsActive {
		return RuleViolation(CodePollInactive, "poll is not active")
	}
	if callerID == nil {
		return AuthRequired()
	}
	if !poll.IsPublic && *callerID != poll.OwnerID {
		return Denied(CodeAccessDenied, "this poll is private")
	}
	if option == nil || option.PollID != poll.ID {
		return &Error{Kind: KindNotFound, Code: CodeOptionNotInPoll, Message: "option does not belong to this poll"}
	}

	voted, err := g.votes.HasVoted(ctx, poll.ID, *callerID)
	if err != nil {
		return Internal(err)
	}
	if voted {
		return RuleViolation(CodeAlreadyVoted, "user has already voted on this poll")
	}

	since := g.now().Add(-g.limits.VoteWindow)
	recent, err := g.votes.CountSince(ctx, *callerID, since)
	if err != nil {
		return Internal(err)
	}
	if recent >= int64(g.limits.MaxVotesPerUserPerDay) {
		return RuleViolation(CodeVoteLimitExceeded, "daily vote limit exceeded")
	}
	return nil
}
