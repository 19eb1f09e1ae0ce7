package narrative_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-saga/internal/clients/narrative"
	narrativemock "github.com/KirkDiggler/rpg-saga/internal/clients/narrative/mock"
	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/testutils"
)

type ClientTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockGenerator *narrativemock.MockContentGenerator
	profile       entities.Profile
	storyJSON     string
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockGenerator = narrativemock.NewMockContentGenerator(s.ctrl)
	s.profile = testutils.CreateTestProfile()

	raw, err := json.Marshal(testutils.CreateTestNarrative(s.profile.Name))
	s.Require().NoError(err)
	s.storyJSON = string(raw)
}

func (s *ClientTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ClientTestSuite) newClient(cfg narrative.Config) narrative.Client {
	cfg.Generator = s.mockGenerator
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Millisecond
	}
	c, err := narrative.NewClient(&cfg)
	s.Require().NoError(err)
	return c
}

func (s *ClientTestSuite) TestNewClientRequiresGenerator() {
	_, err := narrative.NewClient(&narrative.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	_, err = narrative.NewClient(nil)
	s.Require().Error(err)
}

func (s *ClientTestSuite) TestConfigDefaults() {
	cfg := &narrative.Config{Generator: s.mockGenerator}
	s.Require().NoError(cfg.Validate())
	s.Equal(narrative.DefaultModel, cfg.Model)
	s.Equal(30*time.Second, cfg.Timeout)
	s.Equal(time.Second, cfg.RetryDelay)
	s.NotNil(cfg.Clock)
}

func (s *ClientTestSuite) TestGenerateSuccess() {
	c := s.newClient(narrative.Config{})

	s.mockGenerator.EXPECT().
		GenerateText(gomock.Any(), narrative.DefaultModel, narrative.BuildPrompt(s.profile)).
		Return(s.storyJSON, nil)

	n, err := c.Generate(context.Background(), &s.profile)
	s.Require().NoError(err)
	s.Equal(testutils.CreateTestNarrative(s.profile.Name), n)
}

func (s *ClientTestSuite) TestGenerateStripsFences() {
	c := s.newClient(narrative.Config{})

	s.mockGenerator.EXPECT().
		GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("```json\n"+s.storyJSON+"\n```", nil)

	n, err := c.Generate(context.Background(), &s.profile)
	s.Require().NoError(err)
	s.NoError(n.Validate())
}

func (s *ClientTestSuite) TestGenerateUnparseableText() {
	c := s.newClient(narrative.Config{})

	s.mockGenerator.EXPECT().
		GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("Once upon a time...", nil)

	_, err := c.Generate(context.Background(), &s.profile)
	s.Require().Error(err)
	s.True(errors.IsValidation(err))
	s.False(errors.IsRetryable(err))
	s.Contains(errors.GetMessage(err), "Failed to parse API response as JSON")
}

func (s *ClientTestSuite) TestGenerateMissingSection() {
	c := s.newClient(narrative.Config{MaxRetries: 2})

	// validation errors are not retried even when retries are configured
	s.mockGenerator.EXPECT().
		GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(`{"characterIntroduction":"a","worldDescription":"b","plotSetup":"c","narrative":"d"}`, nil).
		Times(1)

	_, err := c.Generate(context.Background(), &s.profile)
	s.Require().Error(err)
	s.True(errors.IsValidation(err))
}

func (s *ClientTestSuite) TestGenerateEmptyText() {
	c := s.newClient(narrative.Config{})

	s.mockGenerator.EXPECT().
		GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("  ", nil)

	_, err := c.Generate(context.Background(), &s.profile)
	s.Require().Error(err)
	s.Equal(errors.CodeAPI, errors.GetCode(err))
	s.Equal("Empty response from API", errors.GetMessage(err))
}

func (s *ClientTestSuite) TestGenerateTimeout() {
	c := s.newClient(narrative.Config{Timeout: 20 * time.Millisecond})

	s.mockGenerator.EXPECT().
		GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})

	_, err := c.Generate(context.Background(), &s.profile)
	s.Require().Error(err)
	s.True(errors.IsTimeout(err))
	s.True(errors.IsRetryable(err))
}

func (s *ClientTestSuite) TestGenerateCallerCancelled() {
	c := s.newClient(narrative.Config{})
	ctx, cancel := context.WithCancel(context.Background())

	s.mockGenerator.EXPECT().
		GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string) (string, error) {
			cancel()
			<-ctx.Done()
			return "", ctx.Err()
		})

	_, err := c.Generate(ctx, &s.profile)
	s.Require().Error(err)
	s.True(errors.IsAborted(err))
}

func (s *ClientTestSuite) TestGenerateRetriesRetryableErrors() {
	c := s.newClient(narrative.Config{MaxRetries: 2})

	gomock.InOrder(
		s.mockGenerator.EXPECT().
			GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", fmt.Errorf("429 RATE_LIMIT hit")),
		s.mockGenerator.EXPECT().
			GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(s.storyJSON, nil),
	)

	n, err := c.Generate(context.Background(), &s.profile)
	s.Require().NoError(err)
	s.NotNil(n)
}

func (s *ClientTestSuite) TestGenerateExhaustsRetries() {
	c := s.newClient(narrative.Config{MaxRetries: 2})

	s.mockGenerator.EXPECT().
		GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", fmt.Errorf("upstream hiccup")).
		Times(3)

	_, err := c.Generate(context.Background(), &s.profile)
	s.Require().Error(err)
	s.Equal(errors.CodeAPI, errors.GetCode(err))
	s.True(errors.IsRetryable(err))
	s.Equal("Failed after 3 attempts: API error: upstream hiccup", errors.GetMessage(err))
}

func (s *ClientTestSuite) TestGenerateDoesNotRetryQuota() {
	c := s.newClient(narrative.Config{MaxRetries: 2})

	s.mockGenerator.EXPECT().
		GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", fmt.Errorf("QUOTA_EXCEEDED for project")).
		Times(1)

	_, err := c.Generate(context.Background(), &s.profile)
	s.Require().Error(err)
	s.Equal("API quota exceeded", errors.GetMessage(err))
	s.False(errors.IsRetryable(err))
}

func (s *ClientTestSuite) TestGenerateNoResponse() {
	c := s.newClient(narrative.Config{})

	s.mockGenerator.EXPECT().
		GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", narrative.NewNoResponseError().WithMeta("model", "gemini-1.5-flash"))

	_, err := c.Generate(context.Background(), &s.profile)
	s.Require().Error(err)
	s.Equal(narrative.NoResponseMessage, errors.GetMessage(err))
	s.True(errors.IsRetryable(err))

	// every call builds its own error
	fresh := narrative.NewNoResponseError()
	s.Nil(fresh.Meta)
	s.Nil(fresh.Cause)
}

func (s *ClientTestSuite) TestGenerateNilProfile() {
	c := s.newClient(narrative.Config{})

	_, err := c.Generate(context.Background(), nil)
	s.Require().Error(err)
	s.True(errors.IsValidation(err))
}

func (s *ClientTestSuite) TestConnection() {
	c := s.newClient(narrative.Config{})

	s.mockGenerator.EXPECT().
		GenerateText(gomock.Any(), gomock.Any(), narrative.ConnectionTestPrompt).
		Return("```json\n{\"test\": \"success\"}\n```", nil)
	s.True(c.TestConnection(context.Background()))

	s.mockGenerator.EXPECT().
		GenerateText(gomock.Any(), gomock.Any(), narrative.ConnectionTestPrompt).
		Return("", fmt.Errorf("API_KEY_INVALID"))
	s.False(c.TestConnection(context.Background()))

	s.mockGenerator.EXPECT().
		GenerateText(gomock.Any(), gomock.Any(), narrative.ConnectionTestPrompt).
		Return("hello", nil)
	s.False(c.TestConnection(context.Background()))
}
