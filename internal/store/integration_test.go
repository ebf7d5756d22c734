package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pollsapi/internal/core"
	"pollsapi/internal/models"
)

// startPostgres spins up a throwaway Postgres and returns a migrated gorm
// handle. Skipped in short mode and whenever Docker is not available.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("polls_test"),
		tcpostgres.WithUsername("polls"),
		tcpostgres.WithPassword("polls"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Poll{}, &models.PollOption{}, &models.Vote{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPollWithOption(t *testing.T, db *gorm.DB) (*models.Poll, *models.PollOption, *models.User) {
	t.Helper()
	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	poll := &models.Poll{Title: "Favorite language", IsActive: true, IsPublic: true, OwnerID: user.ID}
	if err := db.Create(poll).Error; err != nil {
		t.Fatalf("create poll: %v", err)
	}
	option := &models.PollOption{PollID: poll.ID, Text: "Go"}
	if err := db.Create(option).Error; err != nil {
		t.Fatalf("create option: %v", err)
	}
	return poll, option, user
}

// The unique index is the final arbiter when the same user races against
// themselves: exactly one insert commits and the counter ends at one.
func TestCastConcurrentDoubleVote(t *testing.T) {
	db := startPostgres(t)
	poll, option, user := seedPollWithOption(t, db)
	s := NewVoteStore(db)

	const attempts = 8
	results := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Cast(context.Background(), poll.ID, option.ID, user.ID)
			results[i] = err
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case core.HasCode(err, core.CodeAlreadyVoted):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
	if conflicts != attempts-1 {
		t.Fatalf("conflicts = %d, want %d", conflicts, attempts-1)
	}

	var stored models.PollOption
	if err := db.First(&stored, option.ID).Error; err != nil {
		t.Fatalf("reload option: %v", err)
	}
	if stored.VoteCount != 1 {
		t.Fatalf("vote_count = %d, want 1", stored.VoteCount)
	}

	var voteRows int64
	if err := db.Model(&models.Vote{}).Where("poll_id = ?", poll.ID).Count(&voteRows).Error; err != nil {
		t.Fatalf("count votes: %v", err)
	}
	if voteRows != 1 {
		t.Fatalf("vote rows = %d, want 1", voteRows)
	}
}

func TestCastSequentialSecondVote(t *testing.T) {
	db := startPostgres(t)
	poll, option, user := seedPollWithOption(t, db)
	s := NewVoteStore(db)
	ctx := context.Background()

	if _, err := s.Cast(ctx, poll.ID, option.ID, user.ID); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if _, err := s.Cast(ctx, poll.ID, option.ID, user.ID); !core.HasCode(err, core.CodeAlreadyVoted) {
		t.Fatalf("expected ALREADY_VOTED, got %v", err)
	}

	voted, err := s.HasVoted(ctx, poll.ID, user.ID)
	if err != nil {
		t.Fatalf("HasVoted: %v", err)
	}
	if !voted {
		t.Fatal("vote not visible")
	}

	count, err := s.CountSince(ctx, user.ID, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountSince: %v", err)
	}
	if count != 1 {
		t.Fatalf("recent votes = %d, want 1", count)
	}
}

func TestDeletePollRemovesDependents(t *testing.T) {
	db := startPostgres(t)
	poll, option, user := seedPollWithOption(t, db)
	votes := NewVoteStore(db)
	polls := NewPollStore(db)
	ctx := context.Background()

	if _, err := votes.Cast(ctx, poll.ID, option.ID, user.ID); err != nil {
		t.Fatalf("cast: %v", err)
	}
	if err := polls.Delete(ctx, poll); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, check := range []struct {
		name  string
		model interface{}
	}{
		{"votes", &models.Vote{}},
		{"options", &models.PollOption{}},
		{"polls", &models.Poll{}},
	} {
		var count int64
		if err := db.Model(check.model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", check.name, err)
		}
		if count != 0 {
			t.Fatalf("%s left behind: %d", check.name, count)
		}
	}
}
