package client

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/orchestrators/adventure"
	"github.com/KirkDiggler/rpg-saga/internal/orchestrators/session"
	"github.com/KirkDiggler/rpg-saga/internal/orchestrators/storesync"
	"github.com/KirkDiggler/rpg-saga/internal/orchestrators/storygen"
	"github.com/KirkDiggler/rpg-saga/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-saga/internal/services/story"
	"github.com/KirkDiggler/rpg-saga/internal/state"
)

// outcome is the final result of a generation run, after any retries
type outcome struct {
	narrative *entities.Narrative
	message   string
}

// adventureRun holds a wired adventure and the handles the commands need
type adventureRun struct {
	app        *adventure.App
	quiz       *state.QuizStore
	player     *state.PlayerStore
	generation *state.GenerationStore
	done       chan outcome
	closeRepo  func()
}

func openAdventure(ctx context.Context, svc story.Service, autoRetry bool) (*adventureRun, bool, error) {
	run := &adventureRun{
		quiz:       state.NewQuizStore(nil),
		player:     state.NewPlayerStore(),
		generation: state.NewGenerationStore(nil),
		done:       make(chan outcome, 1),
	}
	ui := state.NewUIStore()

	sync, err := storesync.New(&storesync.Config{
		Quiz:       run.quiz,
		Player:     run.player,
		UI:         ui,
		Generation: run.generation,
	})
	if err != nil {
		return nil, false, err
	}

	gen, err := storygen.New(&storygen.Config{
		StoryService: svc,
		Store:        run.generation,
		IDGenerator:  idgen.NewUUID("req"),
		AutoRetry:    autoRetry,
		OnSuccess: func(n *entities.Narrative) {
			run.finish(outcome{narrative: n})
		},
		OnError: func(msg string) {
			run.finish(outcome{message: msg})
		},
	})
	if err != nil {
		return nil, false, err
	}

	repo, closeRepo, err := openRepository(ctx)
	if err != nil {
		return nil, false, err
	}
	run.closeRepo = closeRepo

	sess, err := session.New(&session.Config{
		Repository: repo,
		Name:       sessionName,
		Quiz:       run.quiz,
		Player:     run.player,
		UI:         ui,
		Generation: run.generation,
		Sync:       sync,
	})
	if err != nil {
		closeRepo()
		return nil, false, err
	}

	run.app, err = adventure.New(&adventure.Config{
		Quiz:       run.quiz,
		Player:     run.player,
		UI:         ui,
		Generation: run.generation,
		Sync:       sync,
		Generator:  gen,
		Session:    sess,
	})
	if err != nil {
		closeRepo()
		return nil, false, err
	}

	resumed, err := run.app.Open(ctx)
	if err != nil {
		closeRepo()
		return nil, false, err
	}
	return run, resumed, nil
}

func (r *adventureRun) finish(o outcome) {
	select {
	case r.done <- o:
	default:
	}
}

// wait blocks until the generator reports a final result
func (r *adventureRun) wait(ctx context.Context) (outcome, error) {
	select {
	case o := <-r.done:
		return o, nil
	case <-ctx.Done():
		return outcome{}, ctx.Err()
	}
}

func (r *adventureRun) close(ctx context.Context) {
	if err := r.app.Close(ctx); err != nil {
		slog.Warn("Failed to save session", "error", err)
	}
	r.closeRepo()
}
