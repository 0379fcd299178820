package diagnostics

import (
	"context"
	"fmt"

	"github.com/courseforge/adaptivity/internal/ctxlog"
	"github.com/courseforge/adaptivity/internal/hierarchy"
	"github.com/courseforge/adaptivity/internal/model"
	"github.com/courseforge/adaptivity/internal/partreg"
)

// DiagnosePage runs every validator against every activity of a lesson
// and assembles per-activity reports. Only activities with at least one
// problem appear in the result.
//
// A validator error (a completely missing required collaborator) aborts
// the whole pass; per the current product contract it is not converted
// into a report entry.
func DiagnosePage(ctx context.Context, lesson *model.Lesson, reg *partreg.Registry) ([]Report, error) {
	logger := ctxlog.FromContext(ctx)
	sequence := lesson.Sequence()
	tree := hierarchy.Build(sequence)
	pool := KnownIDPool(lesson)
	validators := Validators(reg)

	logger.Debug("Diagnosing page.", "activities", len(lesson.Activities), "knownIds", len(pool))

	var reports []Report
	for i := range lesson.Activities {
		activity := &lesson.Activities[i]

		byType := make(map[Type][]Finding, len(validators))
		total := 0
		for _, v := range validators {
			findings, err := v.Validate(activity, sequence, pool)
			if err != nil {
				return nil, fmt.Errorf("diagnose activity %d: %w", activity.ID, err)
			}
			byType[v.Type] = findings
			total += len(findings)
		}
		if total == 0 {
			continue
		}

		owner := lesson.EntryByResourceID(activity.ID)
		if owner == nil {
			return nil, fmt.Errorf("diagnose activity %d: no sequence entry references it", activity.ID)
		}

		blacklist := visibilityBlacklist(lesson, tree, owner.Custom.SequenceID)
		problems := make([]Problem, 0, total)
		for _, v := range validators {
			for _, f := range byType[v.Type] {
				fix := ""
				if f.SuggestedFix != nil {
					fix = *f.SuggestedFix
				} else {
					fix = GenerateSuggestion(f.ID, blacklist)
				}
				problems = append(problems, Problem{
					Owner:        owner,
					Type:         v.Type,
					Item:         f.Item,
					SuggestedFix: fix,
				})
			}
		}

		logger.Debug("Activity has problems.", "activity", activity.ID, "count", len(problems))
		reports = append(reports, Report{Activity: owner, Problems: problems})
	}
	return reports, nil
}

// KnownIDPool builds the deduplicated known-ids pool: every part id
// across all activities, then ever-app ids, then lesson variable names.
// First occurrence wins, preserving order.
func KnownIDPool(lesson *model.Lesson) []KnownPart {
	seen := make(map[string]bool)
	var pool []KnownPart
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		pool = append(pool, KnownPart{ID: id})
	}

	for i := range lesson.Activities {
		for _, id := range lesson.Activities[i].PartIDs() {
			add(id)
		}
	}
	for _, app := range lesson.Page.Custom.EverApps {
		add(app.ID)
	}
	for _, v := range lesson.Page.Custom.Variables {
		add(v.Name)
	}
	return pool
}

// visibilityBlacklist collects every part id visible to or from the
// given activity: the parts of its full ancestor lineage plus the parts
// of its full descendant subtree. Used to keep generated id suggestions
// from colliding with anything the activity can see.
func visibilityBlacklist(lesson *model.Lesson, tree []*hierarchy.Item, sequenceID string) []string {
	seen := make(map[string]bool)
	var ids []string
	collect := func(entries []model.SequenceEntry) {
		for _, entry := range entries {
			activity := lesson.ActivityByResourceID(entry.ResourceID)
			if activity == nil {
				continue
			}
			for _, id := range activity.PartIDs() {
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
	}
	collect(hierarchy.Lineage(lesson.Sequence(), sequenceID))
	collect(hierarchy.Descendants(tree, sequenceID))
	return ids
}
