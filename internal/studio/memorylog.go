package studio

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/alexmorgen/vibeforge/internal/models"
	"github.com/alexmorgen/vibeforge/internal/prompts"
)

// driftCadence: a drift check fires when the appended event brings the list
// to a positive multiple of this (the 3rd, 6th, 9th, ... event).
const driftCadence = 3

// recordInteraction appends an optimistic pending event tagged with the
// current stage, persists the full list, and on every third event launches
// an asynchronous drift check over the list including the new event.
// Returns the event id so callers can confirm it on success.
func (o *Orchestrator) recordInteraction(t models.InteractionType, detail string) string {
	o.mu.Lock()
	event := models.MemoryEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Type:      t,
		Detail:    detail,
		Context:   string(o.stage),
		Status:    models.EventPending,
	}
	o.events = append(o.events, event)
	events := slices.Clone(o.events)
	var profile models.UserProfile
	if o.profile != nil {
		profile = *o.profile
	}
	o.mu.Unlock()

	o.persist(events)

	if len(events)%driftCadence == 0 {
		o.driftWG.Add(1)
		go func() {
			defer o.driftWG.Done()
			o.checkDrift(context.Background(), profile, events)
		}()
	}
	return event.ID
}

// checkDrift asks the model whether the observed behavior contradicts the
// declared profile. Needs at least two events to say anything; sends only
// the most recent window. On drift, the patch is shallow-merged onto the
// live profile and a transient alert surfaced. Failures are logged and
// otherwise silent.
func (o *Orchestrator) checkDrift(ctx context.Context, profile models.UserProfile, history []models.MemoryEvent) {
	if len(history) < 2 {
		return
	}
	window := history
	if len(window) > prompts.HistoryWindow {
		window = window[len(window)-prompts.HistoryWindow:]
	}
	drift, err := o.svc.DetectDrift(ctx, profile, window)
	if err != nil {
		o.log.Warn("drift check failed", "error", err)
		return
	}
	if !drift.HasDrifted || drift.NewProfile == nil {
		return
	}
	o.mu.Lock()
	if o.profile != nil {
		drift.NewProfile.Apply(o.profile)
	}
	o.driftAlert = &DriftAlert{Reasoning: drift.Reasoning, Pattern: drift.Pattern}
	o.mu.Unlock()
	o.log.Info("preference drift applied", "pattern", drift.Pattern)
}

// confirmEvent flips a pending event to confirmed once its triggering action
// succeeded.
func (o *Orchestrator) confirmEvent(id string) {
	o.mu.Lock()
	for i := range o.events {
		if o.events[i].ID == id {
			o.events[i].Status = models.EventConfirmed
			break
		}
	}
	events := slices.Clone(o.events)
	o.mu.Unlock()
	o.persist(events)
}

// WipeMemory bulk-clears the user's interaction log, in memory and durably.
func (o *Orchestrator) WipeMemory() error {
	o.mu.Lock()
	o.events = nil
	o.mu.Unlock()
	return o.store.Wipe(o.userName)
}

// persist is fire-and-forget: the in-memory list is authoritative for the
// session and a write failure only costs durability.
func (o *Orchestrator) persist(events []models.MemoryEvent) {
	if err := o.store.Save(o.userName, events); err != nil {
		o.log.Warn("failed to persist memory", "error", err)
	}
}
