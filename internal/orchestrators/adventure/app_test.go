package adventure_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/orchestrators/adventure"
	sessionmock "github.com/KirkDiggler/rpg-saga/internal/orchestrators/session/mock"
	"github.com/KirkDiggler/rpg-saga/internal/orchestrators/storesync"
	"github.com/KirkDiggler/rpg-saga/internal/orchestrators/storygen"
	"github.com/KirkDiggler/rpg-saga/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-saga/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-saga/internal/services/story"
	storymock "github.com/KirkDiggler/rpg-saga/internal/services/story/mock"
	"github.com/KirkDiggler/rpg-saga/internal/state"
	"github.com/KirkDiggler/rpg-saga/internal/testutils"
	"github.com/KirkDiggler/rpg-saga/internal/testutils/mocks"
)

type AppTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockStory   *storymock.MockService
	mockSession *sessionmock.MockService
	ctx         context.Context

	quiz       *state.QuizStore
	player     *state.PlayerStore
	ui         *state.UIStore
	generation *state.GenerationStore
	app        *adventure.App
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppTestSuite))
}

func (s *AppTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStory = storymock.NewMockService(s.ctrl)
	s.mockSession = sessionmock.NewMockService(s.ctrl)
	s.ctx = context.Background()

	clk := clock.NewManual(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s.quiz = state.NewQuizStore(nil)
	s.player = state.NewPlayerStore()
	s.ui = state.NewUIStore()
	s.generation = state.NewGenerationStore(clk)

	sync, err := storesync.New(&storesync.Config{
		Quiz:       s.quiz,
		Player:     s.player,
		UI:         s.ui,
		Generation: s.generation,
	})
	s.Require().NoError(err)

	gen, err := storygen.New(&storygen.Config{
		StoryService: s.mockStory,
		Store:        s.generation,
		IDGenerator:  idgen.NewSequential("req"),
		Clock:        clk,
	})
	s.Require().NoError(err)

	s.app, err = adventure.New(&adventure.Config{
		Quiz:       s.quiz,
		Player:     s.player,
		UI:         s.ui,
		Generation: s.generation,
		Sync:       sync,
		Generator:  gen,
		Session:    s.mockSession,
	})
	s.Require().NoError(err)

	s.mockSession.EXPECT().Load(gomock.Any()).Return(false, nil)
	s.mockSession.EXPECT().StartAutosave()
	resumed, err := s.app.Open(s.ctx)
	s.Require().NoError(err)
	s.False(resumed)
}

func (s *AppTestSuite) TearDownTest() {
	s.mockSession.EXPECT().Stop(gomock.Any()).Return(nil)
	s.NoError(s.app.Close(s.ctx))
	s.ctrl.Finish()
}

func (s *AppTestSuite) answerAll() {
	for id, answer := range testutils.CreateTestAnswers() {
		s.Require().NoError(s.app.SetAnswer(id, answer))
	}
}

func (s *AppTestSuite) state(hasSession bool) adventure.State {
	s.mockSession.EXPECT().HasSession(gomock.Any()).Return(hasSession, nil)
	return s.app.State(s.ctx)
}

func (s *AppTestSuite) TestConfigValidation() {
	_, err := adventure.New(nil)
	s.Error(err)

	_, err = adventure.New(&adventure.Config{Quiz: s.quiz})
	s.Require().Error(err)
	s.Contains(err.Error(), "invalid config")
}

func (s *AppTestSuite) TestQuizToStoryFlow() {
	s.app.StartQuiz()
	s.Equal(entities.PageQuiz, s.ui.CurrentPage())

	s.answerAll()

	s.mockStory.EXPECT().
		GenerateStory(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *story.GenerateStoryInput) (*story.GenerateStoryOutput, error) {
			s.Equal(testutils.CreateTestProfile(), *in.Profile)
			s.True(s.ui.HasAnyLoading(), "generation shows as loading")
			return &story.GenerateStoryOutput{Narrative: testutils.CreateTestNarrative("Aria"), Path: story.PathRelay}, nil
		})

	started, err := s.app.CompleteQuiz(s.ctx)
	s.Require().NoError(err)
	s.True(started)

	st := s.state(true)
	s.Equal(entities.PageStory, st.CurrentPage)
	s.True(st.IsQuizComplete)
	s.Equal(100, st.QuizProgress)
	s.Equal(100, st.ProfileCompletion)
	s.True(st.IsProfileComplete)
	s.Empty(st.MissingFields)
	s.True(st.HasStory)
	s.False(st.IsLoading)
	s.False(st.IsGeneratingStory)
	s.Equal("Aria", st.StoryMetadata.CharacterName)
	s.True(st.HasSession)
	s.False(st.CanResumeSession)
}

func (s *AppTestSuite) TestCompleteQuizWithIncompleteProfile() {
	s.Require().NoError(s.app.SetAnswer(entities.QuestionName, "Aria"))

	started, err := s.app.CompleteQuiz(s.ctx)
	s.Require().NoError(err)
	s.False(started)
}

func (s *AppTestSuite) TestRejectedAnswerShowsError() {
	err := s.app.SetAnswer(entities.QuestionName, "R2D2")
	s.Require().Error(err)

	st := s.state(false)
	s.True(st.HasErrors)
	s.Len(st.Errors, 1)

	s.Require().NoError(s.app.SetAnswer(entities.QuestionName, "Aria"))
	s.False(s.ui.HasAnyError())
}

func (s *AppTestSuite) TestGenerateWithIncompleteProfile() {
	err := s.app.GenerateStory(s.ctx)
	s.Require().Error(err)
	s.True(errors.IsValidation(err))
	s.Equal([]string{adventure.IncompleteProfileMessage}, s.ui.ActiveErrors())
}

func (s *AppTestSuite) TestFailureIsShownAndFallbackRecovers() {
	s.answerAll()
	s.app.NavigateTo(entities.PageStory)

	mocks.ExpectStoryFailed(s.mockStory, errors.API("API quota exceeded", false))

	s.Require().Error(s.app.GenerateStory(s.ctx))

	st := s.state(false)
	s.Equal("API quota exceeded", st.StoryError)
	s.Contains(st.Errors, "API quota exceeded")
	s.False(st.IsLoading)

	n, err := s.app.UseFallbackStory()
	s.Require().NoError(err)
	s.Equal(story.FallbackNarrative(testutils.CreateTestProfile()), n)

	gen := s.generation.State()
	s.Equal(state.PhaseSucceeded, gen.Phase)
	s.True(gen.Fallback)
	s.False(s.ui.HasAnyError())
	s.Equal(entities.PageStory, s.ui.CurrentPage())
}

func (s *AppTestSuite) TestRetryStory() {
	s.Require().Error(s.app.RetryStory(s.ctx))

	s.answerAll()
	gomock.InOrder(
		mocks.ExpectStoryFailed(s.mockStory, errors.Timeout("Request timeout")),
		mocks.ExpectStoryGenerated(s.mockStory, testutils.TestCharacterName, testutils.CreateTestNarrative("Aria")),
	)

	s.Require().Error(s.app.GenerateStory(s.ctx))
	s.Require().NoError(s.app.RetryStory(s.ctx))
	s.True(s.generation.HasNarrative())
}

func (s *AppTestSuite) TestStartNewAdventure() {
	s.answerAll()
	s.app.StartQuiz()
	_, err := s.app.UseFallbackStory()
	s.Require().NoError(err)

	s.mockSession.EXPECT().Clear(gomock.Any()).Return(nil)
	s.Require().NoError(s.app.StartNewAdventure(s.ctx))

	s.Equal(entities.PageLanding, s.ui.CurrentPage())
	s.Empty(s.quiz.Answers())
	s.False(s.player.IsProfileComplete())
	s.Equal(state.PhaseIdle, s.generation.State().Phase)
}

func (s *AppTestSuite) TestResumableSession() {
	s.Require().NoError(s.app.SetAnswer(entities.QuestionName, "Aria"))

	st := s.state(true)
	s.True(st.CanResumeSession)
	s.Require().NotNil(st.CurrentQuestion)
	s.Equal(entities.QuestionName, st.CurrentQuestion.ID)
	s.True(st.CanProceed)
	s.False(st.CanGoBack)
}
