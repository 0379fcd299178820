package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/courseforge/adaptivity/internal/attempt"
	"github.com/courseforge/adaptivity/internal/bus"
	"github.com/courseforge/adaptivity/internal/ctxlog"
	"github.com/courseforge/adaptivity/internal/delivery"
	"github.com/courseforge/adaptivity/internal/diagnostics"
	"github.com/courseforge/adaptivity/internal/history"
	"github.com/courseforge/adaptivity/internal/intrinsic"
	"github.com/courseforge/adaptivity/internal/lesson"
	"github.com/courseforge/adaptivity/internal/scripting"
)

// LessonReport is the diagnostics output for one lesson file.
type LessonReport struct {
	Path             string                        `json:"path"`
	Title            string                        `json:"title"`
	VariableProblems []diagnostics.VariableProblem `json:"variableProblems,omitempty"`
	Activities       []diagnostics.Report          `json:"activities,omitempty"`
}

// Run executes a diagnostics pass over every lesson file reachable from
// the configured lesson path and writes the collected reports as JSON.
// When preview mode or a state URL is configured, each lesson is also
// replayed in a delivery session after its diagnostics pass.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
	}

	loaded, err := lesson.Discover(ctx, a.config.LessonPath)
	if err != nil {
		return err
	}
	if len(loaded) == 0 {
		return nil
	}
	a.logger.Info("Lessons discovered.", "count", len(loaded))

	replay := a.config.Preview || a.config.StateURL != ""
	reports := make([]LessonReport, 0, len(loaded))
	for _, lf := range loaded {
		report, err := a.diagnoseLesson(ctx, lf)
		if err != nil {
			return err
		}
		reports = append(reports, *report)

		if replay {
			if err := a.replayLesson(ctx, lf); err != nil {
				return err
			}
		}
	}

	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("failed to write diagnostics report: %w", err)
	}

	a.events.Publish(bus.Event{Name: bus.EventDiagnosticsCompleted, Payload: len(reports)})
	a.logger.Debug("App.Run method finished.")
	return nil
}

// diagnoseLesson evaluates one lesson's page variables against a fresh
// scripting environment and runs the full validator battery.
func (a *App) diagnoseLesson(ctx context.Context, lf lesson.Loaded) (*LessonReport, error) {
	ctx = ctxlog.With(ctx, "lesson", lf.Path)
	a.logger.Debug("Diagnosing lesson file.", "path", lf.Path)

	env := scripting.NewEnv()
	env.Bootstrap(scripting.SessionInfo{UserID: "diagnostics", UserName: "diagnostics"})
	variableProblems := diagnostics.ValidateLessonVariables(ctx, &lf.Lesson.Page, env)

	activityReports, err := diagnostics.DiagnosePage(ctx, lf.Lesson, a.registry)
	if err != nil {
		return nil, fmt.Errorf("diagnose lesson %s: %w", lf.Path, err)
	}

	a.logger.Info("Lesson diagnosed.",
		"path", lf.Path,
		"variableProblems", len(variableProblems),
		"activitiesWithProblems", len(activityReports))

	return &LessonReport{
		Path:             lf.Path,
		Title:            lf.Lesson.Page.Title,
		VariableProblems: variableProblems,
		Activities:       activityReports,
	}, nil
}

// replayLesson runs one lesson through a delivery session: visits every
// screen in order, applies init facts, and records visit history under
// the configured data dir. With a state URL configured and preview off,
// part saves are written through to the state service for the
// configured section.
func (a *App) replayLesson(ctx context.Context, lf lesson.Loaded) error {
	ctx = ctxlog.With(ctx, "lesson", lf.Path)

	var hist *history.Store
	if a.config.DataDir != "" {
		h, err := history.NewStore(a.config.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open history store in %s: %w", a.config.DataDir, err)
		}
		defer h.Close()
		hist = h
	}

	var writer attempt.StateWriter
	if a.config.StateURL != "" {
		writer = intrinsic.NewClient(a.config.StateURL)
	}

	session := delivery.NewSession(lf.Lesson, delivery.SessionConfig{
		History:     hist,
		Writer:      writer,
		Events:      a.events,
		SectionSlug: a.config.SectionSlug,
		Preview:     a.config.Preview,
		Session:     scripting.SessionInfo{UserID: "replay", UserName: "replay"},
	})
	visited, err := session.Replay(ctx)
	if err != nil {
		return fmt.Errorf("replay lesson %s: %w", lf.Path, err)
	}

	a.logger.Info("Lesson replayed.", "path", lf.Path, "screens", visited)
	return nil
}
