package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
	"github.com/vytor/lingoflash/internal/repository/sqlite"
	"github.com/vytor/lingoflash/internal/testutil"
)

type ReviewLogRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.ReviewLogRepository
	base time.Time
}

func (s *ReviewLogRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewReviewLogRepository(s.db)
	s.base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *ReviewLogRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ReviewLogRepositorySuite) seed() {
	ctx := context.Background()
	entries := []models.ReviewLogEntry{
		{CardID: "a", AudioPath: "/one.mp3", Response: "good", Interval: 1, Ease: 2.5, ReviewedAt: s.base},
		{CardID: "a", AudioPath: "/one.mp3", Response: "easy", Interval: 3.25, Ease: 2.5, ReviewedAt: s.base.Add(24 * time.Hour)},
		{CardID: "b", AudioPath: "/one.mp3", Response: "again", Interval: 1, Ease: 2.3, ReviewedAt: s.base.Add(time.Hour)},
		{CardID: "c", AudioPath: "/two.mp3", Response: "good", Interval: 1, Ease: 2.5, ReviewedAt: s.base.Add(2 * time.Hour)},
	}
	for _, e := range entries {
		_, err := s.repo.Append(ctx, e)
		s.Require().NoError(err)
	}
}

func (s *ReviewLogRepositorySuite) TestAppendAndList() {
	ctx := context.Background()

	id, err := s.repo.Append(ctx, models.ReviewLogEntry{
		CardID:     "card-1",
		AudioPath:  "/audio/lesson.mp3",
		Response:   "hard",
		Interval:   2.4,
		Ease:       2.35,
		ReviewedAt: s.base,
	})
	s.Require().NoError(err)
	s.Assert().Greater(id, int64(0))

	entries, err := s.repo.List(ctx, models.ReviewLogFilter{CardID: "card-1"})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Assert().Equal(id, entries[0].ID)
	s.Assert().Equal("hard", entries[0].Response)
	s.Assert().Equal("/audio/lesson.mp3", entries[0].AudioPath)
	s.Assert().InDelta(2.4, entries[0].Interval, 1e-9)
	s.Assert().InDelta(2.35, entries[0].Ease, 1e-9)
	s.Assert().True(s.base.Equal(entries[0].ReviewedAt))
}

func (s *ReviewLogRepositorySuite) TestAppend_RejectsUnknownResponse() {
	_, err := s.repo.Append(context.Background(), models.ReviewLogEntry{
		CardID: "x", AudioPath: "/x.mp3", Response: "meh", ReviewedAt: s.base,
	})
	s.Assert().Error(err)
}

func (s *ReviewLogRepositorySuite) TestList_NewestFirst() {
	s.seed()

	entries, err := s.repo.List(context.Background(), models.ReviewLogFilter{})
	s.Require().NoError(err)
	s.Require().Len(entries, 4)
	s.Assert().Equal("easy", entries[0].Response)
	s.Assert().Equal("good", entries[3].Response)
	s.Assert().Equal("a", entries[3].CardID)
}

func (s *ReviewLogRepositorySuite) TestList_Filters() {
	s.seed()
	ctx := context.Background()

	bySource, err := s.repo.List(ctx, models.ReviewLogFilter{AudioPath: "/one.mp3"})
	s.Require().NoError(err)
	s.Assert().Len(bySource, 3)

	since := s.base.Add(30 * time.Minute)
	until := s.base.Add(3 * time.Hour)
	window, err := s.repo.List(ctx, models.ReviewLogFilter{Since: &since, Until: &until})
	s.Require().NoError(err)
	s.Require().Len(window, 2)
	s.Assert().Equal("c", window[0].CardID)
	s.Assert().Equal("b", window[1].CardID)

	limited, err := s.repo.List(ctx, models.ReviewLogFilter{Limit: 1})
	s.Require().NoError(err)
	s.Assert().Len(limited, 1)
}

func (s *ReviewLogRepositorySuite) TestCount() {
	s.seed()
	ctx := context.Background()

	total, err := s.repo.Count(ctx, models.ReviewLogFilter{})
	s.Require().NoError(err)
	s.Assert().Equal(4, total)

	forCard, err := s.repo.Count(ctx, models.ReviewLogFilter{CardID: "a"})
	s.Require().NoError(err)
	s.Assert().Equal(2, forCard)
}

func (s *ReviewLogRepositorySuite) TestCountByResponse() {
	s.seed()

	counts, err := s.repo.CountByResponse(context.Background(), models.ReviewLogFilter{})
	s.Require().NoError(err)
	s.Assert().Equal([]models.ResponseCount{
		{Response: "again", Count: 1},
		{Response: "easy", Count: 1},
		{Response: "good", Count: 2},
	}, counts)
}

func (s *ReviewLogRepositorySuite) TestDeleteBySource() {
	s.seed()
	ctx := context.Background()

	n, err := s.repo.DeleteBySource(ctx, "/one.mp3")
	s.Require().NoError(err)
	s.Assert().Equal(int64(3), n)

	remaining, err := s.repo.Count(ctx, models.ReviewLogFilter{})
	s.Require().NoError(err)
	s.Assert().Equal(1, remaining)
}

func (s *ReviewLogRepositorySuite) TestDeleteAll() {
	s.seed()
	ctx := context.Background()

	s.Require().NoError(s.repo.DeleteAll(ctx))

	total, err := s.repo.Count(ctx, models.ReviewLogFilter{})
	s.Require().NoError(err)
	s.Assert().Zero(total)

	id, err := s.repo.Append(ctx, models.ReviewLogEntry{CardID: "z", AudioPath: "/z.mp3", Response: "good", ReviewedAt: s.base})
	s.Require().NoError(err)
	s.Assert().Equal(int64(1), id)
}

func TestReviewLogRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReviewLogRepositorySuite))
}
