package attempt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/courseforge/adaptivity/internal/bus"
	"github.com/courseforge/adaptivity/internal/ctxlog"
	"github.com/courseforge/adaptivity/internal/intrinsic"
	"github.com/courseforge/adaptivity/internal/model"
	"github.com/courseforge/adaptivity/internal/scripting"
)

// StateWriter is the persistence call the saver fans into. Satisfied by
// *intrinsic.Client.
type StateWriter interface {
	WritePartAttemptState(ctx context.Context, sectionSlug, attemptGuid, partAttemptGuid string, response any, finalize bool) (*intrinsic.Result, error)
}

// Saver drives part-state saves for one delivery session.
type Saver struct {
	store       *Store
	env         *scripting.Env
	writer      StateWriter
	events      *bus.Bus
	sectionSlug string
	preview     bool
}

// NewSaver wires a saver. In preview mode writer may be nil: the
// network write is skipped and a local-only result returned.
func NewSaver(store *Store, env *scripting.Env, writer StateWriter, events *bus.Bus, sectionSlug string, preview bool) *Saver {
	return &Saver{
		store:       store,
		env:         env,
		writer:      writer,
		events:      events,
		sectionSlug: sectionSlug,
		preview:     preview,
	}
}

// SaveRequest is one part-save: the attempt/part being written and the
// activity that owns the part.
type SaveRequest struct {
	AttemptGuid     string
	PartAttemptGuid string
	ActivityID      int
	Response        scripting.ResponseMap
}

// SaveResult reports a completed save. ScriptErrors holds the failure
// message of each assignment statement that did not evaluate; a
// non-empty list does not mean the save failed. Written is nil in
// preview mode.
type SaveResult struct {
	ScriptErrors []string
	Written      *intrinsic.Result
}

// SavePart saves one part's response. The activity tree is the lineage
// of the screen being delivered, anchor activity last. When the part's
// owner is not the anchor (the part lives on an ancestor layer), its
// response paths are additionally synced into the anchor's scope so
// scripts evaluated against the anchor context observe the state.
//
// Assignment statements are executed strictly one at a time so a
// failing expression never blocks the unrelated successful ones.
func (s *Saver) SavePart(ctx context.Context, req SaveRequest, tree []*model.Activity) (*SaveResult, error) {
	logger := ctxlog.FromContext(ctx)
	if len(tree) == 0 {
		return nil, fmt.Errorf("save part: empty activity tree")
	}
	anchor := tree[len(tree)-1]
	anchorScope := strconv.Itoa(anchor.ID)
	crossActivity := anchor.ID != req.ActivityID

	// Update the attempt record to match, optimistically.
	if record, ok := s.store.ByGuid(req.AttemptGuid); ok {
		if part := record.Part(req.PartAttemptGuid); part != nil {
			if crossActivity {
				part.Response = scripting.RePrefixResponses(req.Response, anchorScope)
			} else {
				part.Response = req.Response
			}
			s.store.Upsert(record)
		}
	}

	stmts := scripting.GetAssignStatements(req.Response)
	if crossActivity {
		synced := scripting.RePrefixResponses(req.Response, anchorScope)
		stmts = append(stmts, scripting.GetAssignStatements(synced)...)
	}
	scriptErrors := s.env.EvalAll(stmts)
	for _, msg := range scriptErrors {
		logger.Warn("Assignment statement failed.", "error", msg)
	}

	if s.events != nil {
		s.events.Publish(bus.Event{Name: bus.EventPartSaved, Payload: req})
	}

	if s.preview {
		return &SaveResult{ScriptErrors: scriptErrors}, nil
	}

	written, err := s.writer.WritePartAttemptState(ctx, s.sectionSlug, req.AttemptGuid, req.PartAttemptGuid, req.Response, false)
	if err != nil {
		return nil, err
	}
	return &SaveResult{ScriptErrors: scriptErrors, Written: written}, nil
}

// TreeSaveRequest is one response destined for every activity in the
// current tree that owns or inherits the part.
type TreeSaveRequest struct {
	AttemptGuid     string
	PartAttemptGuid string
	Input           []scripting.ResponseItem
}

// SaveToTree fans the response out to every activity in the tree,
// scoping each copy's paths to that activity. Saves run independently;
// all must resolve before SaveToTree returns, but no ordering between
// them is guaranteed. Activities that do not own the part are skipped.
func (s *Saver) SaveToTree(ctx context.Context, req TreeSaveRequest, tree []*model.Activity) error {
	if len(tree) == 0 {
		return fmt.Errorf("save to tree: empty activity tree")
	}
	anchor := tree[len(tree)-1]

	record, ok := s.store.ByGuid(req.AttemptGuid)
	if !ok {
		return fmt.Errorf("save to tree: unknown attempt %q", req.AttemptGuid)
	}
	part := record.Part(req.PartAttemptGuid)
	if part == nil {
		return fmt.Errorf("save to tree: cannot find the part to update")
	}
	partID := part.PartID

	// Resolve every activity's attempt record up front so a missing one
	// aborts before any save has been launched.
	var saves []SaveRequest
	for _, activity := range tree {
		attemptRecord, ok := s.store.ByActivity(activity.ID)
		if !ok {
			return fmt.Errorf("save to tree: no attempt for activity %d", activity.ID)
		}
		owned := attemptRecord.PartByID(partID)
		if owned == nil {
			// In the tree but does not own or inherit this part, which
			// is fine for a grandparent layer.
			continue
		}

		scope := strconv.Itoa(activity.ID)
		responses := make(scripting.ResponseMap, len(req.Input))
		for _, item := range req.Input {
			item.Path = scope + "|stage." + item.Path
			responses[item.Key] = item
		}
		saves = append(saves, SaveRequest{
			AttemptGuid:     attemptRecord.AttemptGuid,
			PartAttemptGuid: owned.AttemptGuid,
			ActivityID:      anchor.ID,
			Response:        responses,
		})
	}

	var wg sync.WaitGroup
	errs := make([]error, len(saves))
	for i, save := range saves {
		wg.Add(1)
		go func(i int, save SaveRequest) {
			defer wg.Done()
			_, err := s.SavePart(ctx, save, tree)
			errs[i] = err
		}(i, save)
	}
	wg.Wait()
	return errors.Join(errs...)
}
