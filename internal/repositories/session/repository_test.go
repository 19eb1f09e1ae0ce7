package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-saga/internal/repositories/session"
	"github.com/KirkDiggler/rpg-saga/internal/testutils"
)

var testStart = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testSnapshot(at time.Time) *entities.SessionSnapshot {
	ts := at.UnixMilli()
	profile := testutils.CreateTestProfile()
	return &entities.SessionSnapshot{
		Quiz: &entities.QuizSnapshot{
			CurrentQuestionIndex: 11,
			Answers:              testutils.CreateTestAnswers(),
			IsComplete:           true,
			Progress:             100,
		},
		Player: &entities.PlayerSnapshot{Profile: profile, IsProfileComplete: true},
		UI:     &entities.UISnapshot{CurrentPage: entities.PageStory},
		Story: &entities.StorySnapshot{
			GeneratedStory:        testutils.CreateTestNarrative("Aria"),
			LastGenerationRequest: entities.NewGenerationRequest("req_1", profile, at),
			GenerationTimestamp:   &ts,
		},
		Timestamp: ts,
	}
}

// repositorySuite runs the behavior both backends share
type repositorySuite struct {
	suite.Suite
	repo session.Repository
	ctx  context.Context
}

func (s *repositorySuite) TestSaveAndGet() {
	want := testSnapshot(testStart)

	_, err := s.repo.Save(s.ctx, session.SaveInput{Name: session.DefaultName, Snapshot: want})
	s.Require().NoError(err)

	out, err := s.repo.Get(s.ctx, session.GetInput{Name: session.DefaultName})
	s.Require().NoError(err)
	s.Empty(cmp.Diff(want, out.Snapshot))
}

func (s *repositorySuite) TestSaveReplaces() {
	first := testSnapshot(testStart)
	second := testSnapshot(testStart.Add(time.Minute))
	second.UI.CurrentPage = entities.PageQuiz

	for _, snap := range []*entities.SessionSnapshot{first, second} {
		_, err := s.repo.Save(s.ctx, session.SaveInput{Name: "alice", Snapshot: snap})
		s.Require().NoError(err)
	}

	out, err := s.repo.Get(s.ctx, session.GetInput{Name: "alice"})
	s.Require().NoError(err)
	s.Equal(entities.PageQuiz, out.Snapshot.UI.CurrentPage)
	s.Equal(second.Timestamp, out.Snapshot.Timestamp)
}

func (s *repositorySuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, session.GetInput{Name: "nobody"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *repositorySuite) TestDeleteAndExists() {
	_, err := s.repo.Save(s.ctx, session.SaveInput{Name: "alice", Snapshot: testSnapshot(testStart)})
	s.Require().NoError(err)

	exists, err := s.repo.Exists(s.ctx, session.ExistsInput{Name: "alice"})
	s.Require().NoError(err)
	s.True(exists.Exists)

	del, err := s.repo.Delete(s.ctx, session.DeleteInput{Name: "alice"})
	s.Require().NoError(err)
	s.True(del.Deleted)

	del, err = s.repo.Delete(s.ctx, session.DeleteInput{Name: "alice"})
	s.Require().NoError(err)
	s.False(del.Deleted)

	exists, err = s.repo.Exists(s.ctx, session.ExistsInput{Name: "alice"})
	s.Require().NoError(err)
	s.False(exists.Exists)
}

func (s *repositorySuite) TestInvalidInput() {
	_, err := s.repo.Save(s.ctx, session.SaveInput{Name: "", Snapshot: testSnapshot(testStart)})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Save(s.ctx, session.SaveInput{Name: "alice"})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Get(s.ctx, session.GetInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *repositorySuite) TestPurgeStale() {
	_, err := s.repo.Save(s.ctx, session.SaveInput{Name: "old", Snapshot: testSnapshot(testStart.Add(-48 * time.Hour))})
	s.Require().NoError(err)
	_, err = s.repo.Save(s.ctx, session.SaveInput{Name: "new", Snapshot: testSnapshot(testStart)})
	s.Require().NoError(err)

	dry, err := s.repo.Purge(s.ctx, session.PurgeInput{MaxAge: session.DefaultTTL, Now: testStart, DryRun: true})
	s.Require().NoError(err)
	s.Equal(2, dry.Checked)
	s.Equal([]string{"old"}, dry.Removed)

	_, err = s.repo.Purge(s.ctx, session.PurgeInput{MaxAge: session.DefaultTTL, Now: testStart})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, session.GetInput{Name: "old"})
	s.True(errors.IsNotFound(err))
	_, err = s.repo.Get(s.ctx, session.GetInput{Name: "new"})
	s.NoError(err)
}

type RedisRepositoryTestSuite struct {
	repositorySuite
	mr *miniredis.Miniredis
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, mr := testutils.CreateTestRedisClient(s.T())
	s.mr = mr
	s.ctx = context.Background()

	var err error
	s.repo, err = session.NewRedisRepository(&session.RedisConfig{Client: client})
	s.Require().NoError(err)
}

func (s *RedisRepositoryTestSuite) TestConfigValidation() {
	_, err := session.NewRedisRepository(&session.RedisConfig{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestKeyAndTTL() {
	_, err := s.repo.Save(s.ctx, session.SaveInput{Name: session.DefaultName, Snapshot: testSnapshot(testStart)})
	s.Require().NoError(err)

	s.True(s.mr.Exists("fantasy-quiz-session"))
	s.Equal(24*time.Hour, s.mr.TTL("fantasy-quiz-session"))

	_, err = s.repo.Save(s.ctx, session.SaveInput{Name: "alice", Snapshot: testSnapshot(testStart)})
	s.Require().NoError(err)
	s.True(s.mr.Exists("fantasy-quiz-session:alice"))

	s.mr.FastForward(24*time.Hour + time.Second)
	_, err = s.repo.Get(s.ctx, session.GetInput{Name: "alice"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestCorruptRecord() {
	s.Require().NoError(s.mr.Set(session.RecordKey("broken"), "{not json"))

	_, err := s.repo.Get(s.ctx, session.GetInput{Name: "broken"})
	s.Require().Error(err)
	s.True(errors.IsDataLoss(err))

	out, err := s.repo.Purge(s.ctx, session.PurgeInput{})
	s.Require().NoError(err)
	s.Equal([]string{"broken"}, out.Removed)
	s.False(s.mr.Exists(session.RecordKey("broken")))
}

type SQLiteRepositoryTestSuite struct {
	repositorySuite
	clock  *clock.Manual
	sqlite *session.SQLiteRepository
}

func TestSQLiteRepositorySuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepositoryTestSuite))
}

func (s *SQLiteRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewManual(testStart)

	var err error
	s.sqlite, err = session.NewSQLiteRepository(s.ctx, &session.SQLiteConfig{
		Path:  session.MemoryPath,
		Clock: s.clock,
	})
	s.Require().NoError(err)
	s.repo = s.sqlite
}

func (s *SQLiteRepositoryTestSuite) TearDownTest() {
	s.NoError(s.sqlite.Close())
}

func (s *SQLiteRepositoryTestSuite) TestConfigValidation() {
	_, err := session.NewSQLiteRepository(s.ctx, &session.SQLiteConfig{})
	s.Require().Error(err)
	s.Contains(err.Error(), "invalid config")
}

func (s *SQLiteRepositoryTestSuite) TestExpiry() {
	_, err := s.repo.Save(s.ctx, session.SaveInput{Name: "alice", Snapshot: testSnapshot(testStart)})
	s.Require().NoError(err)

	s.clock.Advance(24 * time.Hour)
	_, err = s.repo.Get(s.ctx, session.GetInput{Name: "alice"})
	s.NoError(err)

	s.clock.Advance(time.Millisecond)
	exists, err := s.repo.Exists(s.ctx, session.ExistsInput{Name: "alice"})
	s.Require().NoError(err)
	s.False(exists.Exists)

	_, err = s.repo.Get(s.ctx, session.GetInput{Name: "alice"})
	s.True(errors.IsNotFound(err))
}

func (s *SQLiteRepositoryTestSuite) TestFileBacked() {
	path := s.T().TempDir() + "/nested/sessions.db"

	repo, err := session.NewSQLiteRepository(s.ctx, &session.SQLiteConfig{Path: path, Clock: s.clock})
	s.Require().NoError(err)
	_, err = repo.Save(s.ctx, session.SaveInput{Name: "alice", Snapshot: testSnapshot(testStart)})
	s.Require().NoError(err)
	s.Require().NoError(repo.Close())

	reopened, err := session.NewSQLiteRepository(s.ctx, &session.SQLiteConfig{Path: path, Clock: s.clock})
	s.Require().NoError(err)
	defer func() { _ = reopened.Close() }()

	out, err := reopened.Get(s.ctx, session.GetInput{Name: "alice"})
	s.Require().NoError(err)
	s.Equal(entities.PageStory, out.Snapshot.UI.CurrentPage)
}
