// Package mocks provides mock expectation helpers for common testing patterns
package mocks

import (
	"context"

	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	sessionrepo "github.com/KirkDiggler/rpg-saga/internal/repositories/session"
	sessionrepomock "github.com/KirkDiggler/rpg-saga/internal/repositories/session/mock"
	"github.com/KirkDiggler/rpg-saga/internal/services/story"
	storymock "github.com/KirkDiggler/rpg-saga/internal/services/story/mock"
)

// ExpectStoryGenerated sets up one successful generation for the profile's
// character name through the relay path
func ExpectStoryGenerated(
	mockStory *storymock.MockService, name string, narrative *entities.Narrative,
) *gomock.Call {
	return mockStory.EXPECT().
		GenerateStory(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *story.GenerateStoryInput) (*story.GenerateStoryOutput, error) {
			if input.Profile == nil || input.Profile.Name != name {
				return nil, errors.InvalidArgumentf("unexpected profile for %q", name)
			}
			return &story.GenerateStoryOutput{Narrative: narrative, Path: story.PathRelay}, nil
		})
}

// ExpectStoryFailed sets up one failed generation
func ExpectStoryFailed(mockStory *storymock.MockService, err error) *gomock.Call {
	return mockStory.EXPECT().
		GenerateStory(gomock.Any(), gomock.Any()).
		Return(nil, err)
}

// ExpectSessionGet sets up a mock expectation for loading a session record
func ExpectSessionGet(
	ctx context.Context, mockRepo *sessionrepomock.MockRepository,
	name string, snapshot *entities.SessionSnapshot, err error,
) *gomock.Call {
	var out *sessionrepo.GetOutput
	if err == nil {
		out = &sessionrepo.GetOutput{Snapshot: snapshot}
	}
	return mockRepo.EXPECT().
		Get(ctx, sessionrepo.GetInput{Name: name}).
		Return(out, err)
}

// ExpectSessionSave captures every saved snapshot into saved
func ExpectSessionSave(
	mockRepo *sessionrepomock.MockRepository, name string, saved *[]*entities.SessionSnapshot,
) *gomock.Call {
	return mockRepo.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input sessionrepo.SaveInput) (*sessionrepo.SaveOutput, error) {
			if input.Name != name {
				return nil, errors.InvalidArgumentf("unexpected session name %q", input.Name)
			}
			*saved = append(*saved, input.Snapshot)
			return &sessionrepo.SaveOutput{}, nil
		})
}

// ExpectSessionDelete sets up a mock expectation for clearing a session record
func ExpectSessionDelete(
	ctx context.Context, mockRepo *sessionrepomock.MockRepository, name string, deleted bool, err error,
) *gomock.Call {
	var out *sessionrepo.DeleteOutput
	if err == nil {
		out = &sessionrepo.DeleteOutput{Deleted: deleted}
	}
	return mockRepo.EXPECT().
		Delete(ctx, sessionrepo.DeleteInput{Name: name}).
		Return(out, err)
}
