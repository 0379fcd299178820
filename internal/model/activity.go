// SPDX-License-Identifier: MIT
//
// This file defines the Activity structure: one authored screen with
// its parts layout, init facts, and adaptivity rules.
package model

// Part is one interactive widget instance placed on a screen. Custom
// carries the part-type specific configuration verbatim; only the
// engine-relevant fields are lifted into the struct.
type Part struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Inherited bool           `json:"inherited,omitempty"`
	Custom    map[string]any `json:"custom,omitempty"`
}

// ActivityCustom holds the per-screen adaptivity settings, most notably
// the init facts applied when the screen is entered.
type ActivityCustom struct {
	Facts []InitFact `json:"facts"`
}

// ActivityContent is the delivery-facing content of an activity.
type ActivityContent struct {
	PartsLayout []Part         `json:"partsLayout"`
	Custom      ActivityCustom `json:"custom"`
}

// ActivityAuthoring is the authoring-only content of an activity.
type ActivityAuthoring struct {
	Rules []Rule `json:"rules"`
}

// Activity is one authored screen. ID equals the ResourceID of the
// sequence entry that references it.
type Activity struct {
	ID           int                `json:"id"`
	ResourceID   int                `json:"resourceId"`
	ActivitySlug string             `json:"activitySlug"`
	Title        string             `json:"title"`
	Content      *ActivityContent   `json:"content"`
	Authoring    *ActivityAuthoring `json:"authoring"`
	Tags         []string           `json:"tags,omitempty"`
}

// PartIDs returns the ids of all parts placed on the activity, in
// layout order. Returns nil when the activity has no content.
func (a *Activity) PartIDs() []string {
	if a.Content == nil {
		return nil
	}
	ids := make([]string, 0, len(a.Content.PartsLayout))
	for _, p := range a.Content.PartsLayout {
		ids = append(ids, p.ID)
	}
	return ids
}
