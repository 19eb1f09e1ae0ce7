package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/orchestrators/session"
	"github.com/KirkDiggler/rpg-saga/internal/pkg/clock"
	sessionrepo "github.com/KirkDiggler/rpg-saga/internal/repositories/session"
	sessionrepomock "github.com/KirkDiggler/rpg-saga/internal/repositories/session/mock"
	"github.com/KirkDiggler/rpg-saga/internal/state"
	"github.com/KirkDiggler/rpg-saga/internal/testutils/mocks"
)

type RepositoryFailureTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	mockRepo *sessionrepomock.MockRepository
	clock    *clock.Manual
	ctx      context.Context
	service  session.Service
}

func TestRepositoryFailureSuite(t *testing.T) {
	suite.Run(t, new(RepositoryFailureTestSuite))
}

func (s *RepositoryFailureTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = sessionrepomock.NewMockRepository(s.ctrl)
	s.clock = clock.NewManual(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s.ctx = context.Background()

	var err error
	s.service, err = session.New(&session.Config{
		Repository: s.mockRepo,
		Name:       "player-1",
		Quiz:       state.NewQuizStore(nil),
		Player:     state.NewPlayerStore(),
		UI:         state.NewUIStore(),
		Generation: state.NewGenerationStore(s.clock),
		Clock:      s.clock,
	})
	s.Require().NoError(err)
}

func (s *RepositoryFailureTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *RepositoryFailureTestSuite) TestSaveError() {
	s.mockRepo.EXPECT().
		Save(s.ctx, gomock.Any()).
		Return(nil, errors.Internal("connection refused"))

	err := s.service.Save(s.ctx)
	s.Require().Error(err)
	s.Contains(err.Error(), "failed to save session")
	s.True(errors.IsInternal(err))
}

func (s *RepositoryFailureTestSuite) TestSaveUsesNameAndClock() {
	s.mockRepo.EXPECT().
		Save(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in sessionrepo.SaveInput) (*sessionrepo.SaveOutput, error) {
			s.Equal("player-1", in.Name)
			s.Equal(s.clock.Now().UnixMilli(), in.Snapshot.Timestamp)
			s.NotNil(in.Snapshot.Quiz)
			s.NotNil(in.Snapshot.Player)
			s.NotNil(in.Snapshot.UI)
			s.NotNil(in.Snapshot.Story)
			return &sessionrepo.SaveOutput{}, nil
		})

	s.NoError(s.service.Save(s.ctx))
}

func (s *RepositoryFailureTestSuite) TestLoadUnexpectedError() {
	mocks.ExpectSessionGet(s.ctx, s.mockRepo, "player-1", nil, errors.Internal("connection refused"))

	ok, err := s.service.Load(s.ctx)
	s.Require().Error(err)
	s.False(ok)
	s.Contains(err.Error(), "failed to load session")
}

func (s *RepositoryFailureTestSuite) TestLoadDiscardsCorruptedRecord() {
	gomock.InOrder(
		mocks.ExpectSessionGet(s.ctx, s.mockRepo, "player-1", nil, errors.DataLoss("session record is corrupted")),
		mocks.ExpectSessionDelete(s.ctx, s.mockRepo, "player-1", true, nil),
	)

	ok, err := s.service.Load(s.ctx)
	s.NoError(err)
	s.False(ok)
}

func (s *RepositoryFailureTestSuite) TestLoadDiscardsExpiredRecord() {
	old := &entities.SessionSnapshot{
		Timestamp: s.clock.Now().Add(-session.DefaultMaxAge - time.Millisecond).UnixMilli(),
	}
	gomock.InOrder(
		mocks.ExpectSessionGet(s.ctx, s.mockRepo, "player-1", old, nil),
		mocks.ExpectSessionDelete(s.ctx, s.mockRepo, "player-1", true, nil),
	)

	ok, err := s.service.Load(s.ctx)
	s.NoError(err)
	s.False(ok)
}

func (s *RepositoryFailureTestSuite) TestClearError() {
	mocks.ExpectSessionDelete(s.ctx, s.mockRepo, "player-1", false, errors.Internal("connection refused"))

	err := s.service.Clear(s.ctx)
	s.Require().Error(err)
	s.Contains(err.Error(), "failed to clear session")
}

func (s *RepositoryFailureTestSuite) TestHasSessionError() {
	s.mockRepo.EXPECT().
		Exists(s.ctx, sessionrepo.ExistsInput{Name: "player-1"}).
		Return(nil, errors.Internal("connection refused"))

	has, err := s.service.HasSession(s.ctx)
	s.Error(err)
	s.False(has)
}

func (s *RepositoryFailureTestSuite) TestAutosaveKeepsRunningAfterFailure() {
	var saved []*entities.SessionSnapshot
	gomock.InOrder(
		s.mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil, errors.Internal("connection refused")),
		mocks.ExpectSessionSave(s.mockRepo, "player-1", &saved).Times(2),
	)

	s.service.StartAutosave()
	s.clock.Advance(session.DefaultAutosaveInterval)
	s.clock.Advance(session.DefaultAutosaveInterval)
	s.Equal(1, s.clock.Pending())

	// final save on stop
	s.NoError(s.service.Stop(s.ctx))
	s.Equal(0, s.clock.Pending())
	s.Len(saved, 2)
}
