package delivery

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/courseforge/adaptivity/internal/attempt"
	"github.com/courseforge/adaptivity/internal/bus"
	"github.com/courseforge/adaptivity/internal/ctxlog"
	"github.com/courseforge/adaptivity/internal/diagnostics"
	"github.com/courseforge/adaptivity/internal/history"
	"github.com/courseforge/adaptivity/internal/model"
	"github.com/courseforge/adaptivity/internal/scripting"
)

// SessionConfig carries the collaborators of one delivery session.
// History and Writer are both optional; without a writer the session
// can only save in preview mode.
type SessionConfig struct {
	History     *history.Store
	Writer      attempt.StateWriter
	Events      *bus.Bus
	SectionSlug string
	Preview     bool
	Session     scripting.SessionInfo
}

// Session is one learner's run over a lesson: a fresh scripting
// environment, seeded attempt records, the save pipeline, and a
// navigator, wired together.
type Session struct {
	lesson *model.Lesson
	env    *scripting.Env
	nav    *Navigator
	store  *attempt.Store
	saver  *attempt.Saver
}

// NewSession builds a session positioned before the first screen. Every
// activity gets a fresh attempt record with one part attempt per
// authored part.
func NewSession(l *model.Lesson, cfg SessionConfig) *Session {
	env := scripting.NewEnv()
	env.Bootstrap(cfg.Session)

	store := attempt.NewStore()
	for i := range l.Activities {
		activity := &l.Activities[i]
		record := &attempt.ActivityAttempt{
			AttemptGuid: uuid.NewString(),
			ActivityID:  activity.ID,
		}
		for _, partID := range activity.PartIDs() {
			record.Parts = append(record.Parts, attempt.PartAttempt{
				AttemptGuid: uuid.NewString(),
				PartID:      partID,
			})
		}
		store.Upsert(record)
	}

	return &Session{
		lesson: l,
		env:    env,
		nav:    NewNavigator(l, env, cfg.History, cfg.Events),
		store:  store,
		saver:  attempt.NewSaver(store, env, cfg.Writer, cfg.Events, cfg.SectionSlug, cfg.Preview),
	}
}

// Env returns the session's scripting environment.
func (s *Session) Env() *scripting.Env { return s.env }

// Navigator returns the session's navigator.
func (s *Session) Navigator() *Navigator { return s.nav }

// Store returns the session's attempt records.
func (s *Session) Store() *attempt.Store { return s.store }

// Saver returns the session's save pipeline.
func (s *Session) Saver() *attempt.Saver { return s.saver }

// Replay walks every deliverable screen in navigation order, applying
// each screen's init facts through the save pipeline on entry. Lesson
// variables are evaluated first; a failing variable is logged, not
// fatal. Returns the number of screens visited.
func (s *Session) Replay(ctx context.Context) (int, error) {
	logger := ctxlog.FromContext(ctx)

	for _, problem := range diagnostics.ValidateLessonVariables(ctx, &s.lesson.Page, s.env) {
		logger.Warn("Lesson variable failed to evaluate.", "name", problem.Name, "error", problem.Message)
	}

	visited := 0
	_, err := s.nav.Start(ctx)
	for err == nil {
		visited++
		if ferr := s.applyInitFacts(ctx); ferr != nil {
			return visited, ferr
		}
		_, err = s.nav.NavigateTo(ctx, NextTarget)
	}
	if errors.Is(err, ErrEndOfLesson) {
		return visited, nil
	}
	return visited, err
}

// applyInitFacts pushes the current screen's init facts through the
// save pipeline so the attempt record, the environment, and (when
// live) the state service observe the same entry state.
func (s *Session) applyInitFacts(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	tree := s.nav.CurrentTree()
	if len(tree) == 0 {
		return nil
	}
	anchor := tree[len(tree)-1]
	if anchor.Content == nil || len(anchor.Content.Custom.Facts) == 0 {
		return nil
	}

	responses := make(scripting.ResponseMap, len(anchor.Content.Custom.Facts))
	for _, fact := range anchor.Content.Custom.Facts {
		if fact.Target == "" {
			continue
		}
		var value any
		if fact.Value != nil {
			if err := json.Unmarshal(fact.Value, &value); err != nil {
				value = string(fact.Value)
			}
		}
		responses[fact.Target] = scripting.ResponseItem{Key: fact.Target, Path: fact.Target, Value: value}
	}
	if len(responses) == 0 {
		return nil
	}

	record, ok := s.store.ByActivity(anchor.ID)
	if !ok || len(record.Parts) == 0 {
		// A screen without parts has no attempt carrier; the facts
		// still land in the environment.
		for _, msg := range s.env.EvalAll(scripting.GetAssignStatements(responses)) {
			logger.Warn("Init fact failed to evaluate.", "error", msg)
		}
		return nil
	}

	result, err := s.saver.SavePart(ctx, attempt.SaveRequest{
		AttemptGuid:     record.AttemptGuid,
		PartAttemptGuid: record.Parts[0].AttemptGuid,
		ActivityID:      anchor.ID,
		Response:        responses,
	}, tree)
	if err != nil {
		return err
	}
	for _, msg := range result.ScriptErrors {
		logger.Warn("Init fact failed to evaluate.", "error", msg)
	}
	return nil
}
