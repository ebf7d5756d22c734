package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pollsapi/internal/core"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByIDMissing(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPollStore(db)

	mock.ExpectQuery(`SELECT .* FROM "polls" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	poll, err := s.FindByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if poll != nil {
		t.Fatalf("missing poll returned %+v", poll)
	}
	expectationsMet(t, mock)
}

func TestFindByIDPreloadsOptions(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPollStore(db)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM "polls" WHERE`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "title", "description", "is_active", "is_public", "owner_id", "created_at"}).
			AddRow(1, "Favorite language", "", true, true, 7, created))
	mock.ExpectQuery(`SELECT .* FROM "poll_options" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "poll_id", "text", "vote_count"}).
			AddRow(10, 1, "Go", 3).
			AddRow(11, 1, "Rust", 1))

	poll, err := s.FindByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if poll == nil {
		t.Fatal("poll not found")
	}
	if len(poll.Options) != 2 {
		t.Fatalf("options = %d, want 2", len(poll.Options))
	}
	if poll.Options[0].VoteCount != 3 {
		t.Fatalf("vote_count = %d, want 3", poll.Options[0].VoteCount)
	}
	expectationsMet(t, mock)
}

func TestTitleExistsExcludesSelf(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPollStore(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "polls" WHERE .*LOWER\(title\).*id <> `).
		WithArgs(7, "favorite language", 3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := s.TitleExists(context.Background(), 7, "Favorite Language", 3)
	if err != nil {
		t.Fatalf("TitleExists: %v", err)
	}
	if exists {
		t.Fatal("own title reported as duplicate")
	}
	expectationsMet(t, mock)
}

func TestListCountsFilteredSetBeforePaging(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPollStore(db)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// The count runs against the filtered set; the page query joins the
	// option counters in afterwards.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "polls" WHERE polls\.is_public = `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(`(?s)SELECT polls\.id.*COALESCE\(SUM\(poll_options\.vote_count\), 0\) AS total_votes.*LEFT JOIN poll_options`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "title", "description", "is_active", "is_public", "owner_id", "created_at", "total_votes"}).
			AddRow(21, "Question u", "", true, true, 7, created, 4).
			AddRow(22, "Question v", "", true, true, 7, created, 0))

	params := core.ListParams{Page: 3, Size: 10, Sort: core.SortCreatedDesc}
	items, total, err := s.List(context.Background(), core.ListScope{Params: params})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 25 {
		t.Fatalf("total = %d, want 25", total)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].TotalVotes != 4 || items[1].TotalVotes != 0 {
		t.Fatalf("aggregates = %d/%d, want 4/0", items[0].TotalVotes, items[1].TotalVotes)
	}
	expectationsMet(t, mock)
}

func TestListVisibilityScope(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPollStore(db)
	caller := 7

	// Authenticated callers widen the scope to include their own private
	// polls.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "polls" WHERE \(polls\.is_public = \$1 OR polls\.owner_id = \$2\)`).
		WithArgs(true, caller).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`(?s)SELECT polls\.id.*LEFT JOIN poll_options`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	params := core.ListParams{Page: 1, Size: 10, Sort: core.SortCreatedDesc}
	_, _, err := s.List(context.Background(), core.ListScope{Params: params, CallerID: &caller})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	expectationsMet(t, mock)
}

func TestCastCommitsVoteAndCounter(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewVoteStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "votes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(99))
	mock.ExpectExec(`UPDATE "poll_options" SET "vote_count"=vote_count \+ `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	vote, err := s.Cast(context.Background(), 1, 10, 7)
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if vote.ID != 99 {
		t.Fatalf("vote id = %d, want 99", vote.ID)
	}
	expectationsMet(t, mock)
}

func TestCastUniqueViolationIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewVoteStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "votes"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_votes_poll_user"})
	mock.ExpectRollback()

	_, err := s.Cast(context.Background(), 1, 10, 7)
	if !core.HasCode(err, core.CodeAlreadyVoted) {
		t.Fatalf("expected ALREADY_VOTED, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestHasVoted(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewVoteStore(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "votes" WHERE poll_id = `).
		WithArgs(1, 7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	voted, err := s.HasVoted(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("HasVoted: %v", err)
	}
	if !voted {
		t.Fatal("existing vote not reported")
	}
	expectationsMet(t, mock)
}

func TestCountSince(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewVoteStore(db)
	since := time.Now().Add(-24 * time.Hour)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "votes" WHERE user_id = .* created_at >= `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := s.CountSince(context.Background(), 7, since)
	if err != nil {
		t.Fatalf("CountSince: %v", err)
	}
	if count != 12 {
		t.Fatalf("count = %d, want 12", count)
	}
	expectationsMet(t, mock)
}
