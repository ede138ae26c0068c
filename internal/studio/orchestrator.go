// Package studio holds the orchestration core: a per-user state machine that
// sequences calibration, planning, drafting, asset generation, verification
// and conditional refinement, plus the interaction memory and preference
// drift subsystem that adapts the profile over repeated sessions.
package studio

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/alexmorgen/vibeforge/internal/gemini"
	"github.com/alexmorgen/vibeforge/internal/logging"
	"github.com/alexmorgen/vibeforge/internal/models"
	"github.com/alexmorgen/vibeforge/internal/prompts"
)

var (
	ErrNoProfile     = errors.New("no profile: calibrate first")
	ErrNoDraft       = errors.New("no draft exists")
	ErrCycleInFlight = errors.New("a cycle is already running")
	ErrBadCopyTarget = errors.New("copy target must be headline or subheadline")
)

// CopyTarget names the one content field a polish call may replace.
type CopyTarget string

const (
	TargetHeadline    CopyTarget = "headline"
	TargetSubheadline CopyTarget = "subheadline"
)

// DriftAlert is the transient, dismissible notice surfaced when a drift
// check rewrites the profile. Never persisted.
type DriftAlert struct {
	Reasoning string `json:"reasoning"`
	Pattern   string `json:"pattern"`
}

// Orchestrator owns the live profile, draft and memory list for one user.
// All shared state sits behind mu; service calls happen outside the lock and
// patch against the latest state, never a stale snapshot.
type Orchestrator struct {
	svc   GenerativeService
	store EventStore
	log   *logging.Logger

	mu          sync.Mutex
	userName    string
	profile     *models.UserProfile
	blueprint   *models.Blueprint
	stage       Stage
	running     bool
	draft       *models.ExperienceData
	chatLog     []models.ChatMessage
	events      []models.MemoryEvent
	driftAlert  *DriftAlert
	lastFailure *Failure
	cycleLog    []string

	driftWG sync.WaitGroup
}

// New loads any durable memory for the user and starts at IDLE. A stored
// blob that fails to parse is a hard error.
func New(userName string, svc GenerativeService, store EventStore, log *logging.Logger) (*Orchestrator, error) {
	events, err := store.Load(userName)
	if err != nil {
		return nil, fmt.Errorf("load session memory: %w", err)
	}
	return &Orchestrator{
		svc:      svc,
		store:    store,
		log:      log.With("component", "studio", "user", userName),
		userName: userName,
		stage:    StageIdle,
		events:   events,
	}, nil
}

// Calibrate builds the user profile from the raw bio. A failed calibration
// call falls back to a hardcoded default profile so onboarding never blocks.
func (o *Orchestrator) Calibrate(ctx context.Context, bio, moodBoardURL string) (models.UserProfile, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return models.UserProfile{}, ErrCycleInFlight
	}
	o.setStageLocked(StageCalibrating)
	o.mu.Unlock()

	profile, err := o.svc.Calibrate(ctx, bio, moodBoardURL)
	if err != nil {
		o.log.Warn("calibration failed, using default profile", "kind", gemini.KindOf(err), "error", err)
		profile = defaultProfile(bio, moodBoardURL)
	}
	profile.Name = o.userName

	o.mu.Lock()
	o.profile = &profile
	o.setStageLocked(StageIdle)
	o.mu.Unlock()
	return profile, nil
}

func defaultProfile(bio, moodBoardURL string) models.UserProfile {
	return models.UserProfile{
		Bio:          bio,
		Personality:  models.PersonalityZen,
		Interests:    []string{"design", "slow mornings", "good typography"},
		Tone:         "warm and unhurried",
		Pace:         2,
		MoodBoardURL: moodBoardURL,
	}
}

// RunCycle drives one complete creative cycle. A fresh run resets the cycle
// log, draft, blueprint and chat; a remix keeps the blueprint and hands the
// previous draft to the model so it avoids repeating itself. Any failure
// aborts the run, records a reason code and returns the stage to IDLE,
// keeping whatever was already published.
func (o *Orchestrator) RunCycle(ctx context.Context, isRemix bool) error {
	o.mu.Lock()
	if o.profile == nil {
		o.mu.Unlock()
		return ErrNoProfile
	}
	if o.running {
		o.mu.Unlock()
		return ErrCycleInFlight
	}
	o.running = true
	o.lastFailure = nil
	if !isRemix {
		o.cycleLog = nil
		o.draft = nil
		o.blueprint = nil
		o.chatLog = nil
	}
	profile := *o.profile
	blueprint := o.blueprint
	previous := o.draft
	history := slices.Clone(o.events)
	o.mu.Unlock()

	err := o.runPipeline(ctx, profile, blueprint, previous, history)

	o.mu.Lock()
	o.running = false
	o.mu.Unlock()
	return err
}

func (o *Orchestrator) runPipeline(ctx context.Context, profile models.UserProfile, blueprint *models.Blueprint, previous *models.ExperienceData, history []models.MemoryEvent) error {
	var draft models.ExperienceData
	if blueprint == nil || previous == nil {
		o.enterStage(StagePlanning, "building the creative brief")
		bp, err := o.svc.Plan(ctx, profile, history)
		if err != nil {
			return o.fail(StagePlanning, err)
		}
		o.mu.Lock()
		o.blueprint = &bp
		o.mu.Unlock()

		o.enterStage(StageDrafting, "generating the experience")
		draft, err = o.svc.Draft(ctx, profile, bp)
		if err != nil {
			return o.fail(StageDrafting, err)
		}
	} else {
		o.enterStage(StageDrafting, "remixing against the previous draft")
		var err error
		draft, err = o.svc.Remix(ctx, profile, *blueprint, *previous)
		if err != nil {
			return o.fail(StageDrafting, err)
		}
	}

	// Publish immediately with empty image fields; assets reveal
	// progressively as they arrive.
	draft.Content.HeroURL = ""
	for i := range draft.Content.Concepts {
		draft.Content.Concepts[i].ImageURL = ""
	}
	draft.Verification = nil
	o.mu.Lock()
	published := cloneExperience(draft)
	o.draft = &published
	o.mu.Unlock()

	o.enterStage(StageGeneratingAssets, "illustrating hero and concepts")
	if err := o.generateAssets(ctx, draft); err != nil {
		return o.fail(StageGeneratingAssets, err)
	}

	o.mu.Lock()
	illustrated := cloneExperience(*o.draft)
	o.mu.Unlock()

	o.enterStage(StageVerifying, "critiquing fit against the profile")
	verification, err := o.svc.Verify(ctx, illustrated, profile)
	if err != nil {
		return o.fail(StageVerifying, err)
	}

	if verification.Aligned {
		o.mu.Lock()
		o.draft.Verification = &verification
		o.setStageLocked(StageComplete)
		o.appendLogLocked(StageComplete, fmt.Sprintf("aligned at %d", verification.Score))
		o.mu.Unlock()
		return nil
	}

	o.enterStage(StageRefining, "reworking per critique")
	refined, err := o.svc.Refine(ctx, illustrated, verification, profile)
	if err != nil {
		return o.fail(StageRefining, err)
	}

	// Images are not regenerated on refinement: splice the originals back
	// even when the refined copy changed hero prompt semantics.
	refined.Content.HeroURL = illustrated.Content.HeroURL
	for i := range refined.Content.Concepts {
		if i < len(illustrated.Content.Concepts) {
			refined.Content.Concepts[i].ImageURL = illustrated.Content.Concepts[i].ImageURL
		}
	}

	// One-shot trust: no re-verification loop. Aligned is forced and the
	// score bumped by 15, capped at 99.
	verification.Aligned = true
	verification.Score = min(verification.Score+15, 99)
	refined.Verification = &verification

	o.mu.Lock()
	final := cloneExperience(refined)
	o.draft = &final
	o.setStageLocked(StageComplete)
	o.appendLogLocked(StageComplete, fmt.Sprintf("refined to %d", verification.Score))
	o.mu.Unlock()
	return nil
}

// generateAssets fills the hero image first, then fans out one request per
// concept. Each completion patches only its own slot, keyed by the original
// index, so out-of-order arrival never touches a sibling entry. An empty
// image response leaves the slot unset; a hard failure aborts the cycle.
func (o *Orchestrator) generateAssets(ctx context.Context, draft models.ExperienceData) error {
	if draft.Content.HeroPrompt != "" {
		url, err := o.svc.GenerateImage(ctx, prompts.HeroImage(draft.Content.HeroPrompt, draft.Design))
		if err != nil {
			return err
		}
		if url != "" {
			o.mu.Lock()
			if o.draft != nil {
				o.draft.Content.HeroURL = url
			}
			o.mu.Unlock()
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, concept := range draft.Content.Concepts {
		g.Go(func() error {
			url, err := o.svc.GenerateImage(ctx, prompts.ConceptImage(concept, draft.Design))
			if err != nil {
				return err
			}
			if url == "" {
				return nil
			}
			o.mu.Lock()
			if o.draft != nil && i < len(o.draft.Content.Concepts) {
				o.draft.Content.Concepts[i].ImageURL = url
			}
			o.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// Remix re-enters the cycle. Permitted only when the current stage is
// exactly COMPLETE and a draft exists; anything else is a no-op. The
// returned bool says whether a remix actually started.
func (o *Orchestrator) Remix(ctx context.Context) (bool, error) {
	o.mu.Lock()
	if o.stage != StageComplete || o.draft == nil || o.running {
		o.mu.Unlock()
		return false, nil
	}
	o.mu.Unlock()

	id := o.recordInteraction(models.InteractionRemix, "asked for a full remix")
	err := o.RunCycle(ctx, true)
	if err == nil {
		o.confirmEvent(id)
	}
	return true, err
}

// Chat sends a message to the page persona. Failures are swallowed: the
// reply is empty, prior state is untouched, and the optimistic memory event
// stays pending.
func (o *Orchestrator) Chat(ctx context.Context, message string) (string, error) {
	o.mu.Lock()
	if o.draft == nil {
		o.mu.Unlock()
		return "", ErrNoDraft
	}
	profile := *o.profile
	headline := o.draft.Content.Headline
	o.mu.Unlock()

	id := o.recordInteraction(models.InteractionChat, message)
	o.appendChat("user", message)

	reply, err := o.svc.Chat(ctx, profile, message, headline)
	if err != nil {
		o.log.Warn("chat call failed", "kind", gemini.KindOf(err), "error", err)
		return "", nil
	}
	o.appendChat("persona", reply)
	o.confirmEvent(id)
	return reply, nil
}

// MutateVisual replaces the design system wholesale on success. The memory
// event is recorded before the call completes, so a failed call leaves a
// pending event behind.
func (o *Orchestrator) MutateVisual(ctx context.Context, instruction string) error {
	o.mu.Lock()
	if o.draft == nil {
		o.mu.Unlock()
		return ErrNoDraft
	}
	profile := *o.profile
	design := o.draft.Design
	o.mu.Unlock()

	id := o.recordInteraction(models.InteractionVisualEdit, instruction)

	mutated, err := o.svc.MutateDesign(ctx, profile, design, instruction)
	if err != nil {
		o.log.Warn("visual mutation failed", "kind", gemini.KindOf(err), "error", err)
		return nil
	}
	o.mu.Lock()
	if o.draft != nil {
		o.draft.Design = mutated
	}
	o.mu.Unlock()
	o.confirmEvent(id)
	return nil
}

// PolishCopy rewrites exactly one of headline or subheadline in the given
// tone. Same optimistic-event semantics as MutateVisual.
func (o *Orchestrator) PolishCopy(ctx context.Context, target CopyTarget, tone string) error {
	if target != TargetHeadline && target != TargetSubheadline {
		return ErrBadCopyTarget
	}
	o.mu.Lock()
	if o.draft == nil {
		o.mu.Unlock()
		return ErrNoDraft
	}
	text := o.draft.Content.Headline
	if target == TargetSubheadline {
		text = o.draft.Content.Subheadline
	}
	o.mu.Unlock()

	id := o.recordInteraction(models.InteractionCopyEdit, fmt.Sprintf("polish %s toward %s", target, tone))

	polished, err := o.svc.PolishCopy(ctx, text, tone)
	if err != nil {
		o.log.Warn("copy polish failed", "kind", gemini.KindOf(err), "error", err)
		return nil
	}
	o.mu.Lock()
	if o.draft != nil {
		switch target {
		case TargetHeadline:
			o.draft.Content.Headline = polished
		case TargetSubheadline:
			o.draft.Content.Subheadline = polished
		}
	}
	o.mu.Unlock()
	o.confirmEvent(id)
	return nil
}

// VaryHero asks the image service for a variation of the current hero and
// swaps it in. Per the edit contract the original survives any failure.
func (o *Orchestrator) VaryHero(ctx context.Context, instruction string) error {
	o.mu.Lock()
	if o.draft == nil {
		o.mu.Unlock()
		return ErrNoDraft
	}
	hero := o.draft.Content.HeroURL
	o.mu.Unlock()
	if hero == "" {
		return ErrNoDraft
	}

	id := o.recordInteraction(models.InteractionVisualEdit, fmt.Sprintf("hero variation: %s", instruction))

	edited, err := o.svc.EditImage(ctx, hero, instruction)
	if err != nil {
		o.log.Warn("hero variation failed", "kind", gemini.KindOf(err), "error", err)
		return nil
	}
	o.mu.Lock()
	if o.draft != nil {
		o.draft.Content.HeroURL = edited
	}
	o.mu.Unlock()
	o.confirmEvent(id)
	return nil
}

// Reset abandons the current experience and returns to IDLE. The profile and
// the durable memory log survive; a REJECT event is recorded when there was
// a draft to abandon.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	hadDraft := o.draft != nil
	o.mu.Unlock()
	if hadDraft {
		o.recordInteraction(models.InteractionReject, "abandoned the experience")
	}

	o.mu.Lock()
	o.draft = nil
	o.blueprint = nil
	o.chatLog = nil
	o.cycleLog = nil
	o.driftAlert = nil
	o.lastFailure = nil
	o.stage = StageIdle
	o.mu.Unlock()
}

// DismissDriftAlert clears the transient drift notice.
func (o *Orchestrator) DismissDriftAlert() {
	o.mu.Lock()
	o.driftAlert = nil
	o.mu.Unlock()
}

// Wait blocks until background drift checks have finished. Used by tests and
// by graceful shutdown.
func (o *Orchestrator) Wait() {
	o.driftWG.Wait()
}

func (o *Orchestrator) fail(stage Stage, err error) error {
	kind := string(gemini.KindOf(err))
	o.log.Error("cycle aborted", "stage", stage, "kind", kind, "error", err)
	o.mu.Lock()
	o.lastFailure = &Failure{Stage: stage, Kind: kind, Message: err.Error()}
	o.stage = StageIdle
	o.cycleLog = append(o.cycleLog, fmt.Sprintf("%s: aborted (%s)", stage, kind))
	o.mu.Unlock()
	return err
}

func (o *Orchestrator) enterStage(stage Stage, note string) {
	o.mu.Lock()
	o.setStageLocked(stage)
	o.appendLogLocked(stage, note)
	o.mu.Unlock()
}

func (o *Orchestrator) setStageLocked(to Stage) {
	if err := ValidateTransition(o.stage, to); err != nil {
		// Transition table drift is a programming error; keep the pipeline
		// moving but make it loud.
		o.log.Error("unexpected stage transition", "from", o.stage, "to", to, "error", err)
	}
	o.stage = to
}

func (o *Orchestrator) appendLogLocked(stage Stage, note string) {
	o.cycleLog = append(o.cycleLog, fmt.Sprintf("%s: %s", stage, note))
}

func (o *Orchestrator) appendChat(role, text string) {
	o.mu.Lock()
	o.chatLog = append(o.chatLog, models.ChatMessage{Role: role, Text: text})
	o.mu.Unlock()
}

func cloneExperience(e models.ExperienceData) models.ExperienceData {
	out := e
	out.Content.Features = slices.Clone(e.Content.Features)
	out.Content.Concepts = slices.Clone(e.Content.Concepts)
	if e.Verification != nil {
		v := *e.Verification
		out.Verification = &v
	}
	return out
}

// Snapshot is a race-free copy of everything the presentation layer renders.
type Snapshot struct {
	User        string                 `json:"user"`
	Stage       Stage                  `json:"stage"`
	Running     bool                   `json:"running"`
	Profile     *models.UserProfile    `json:"profile,omitempty"`
	Blueprint   *models.Blueprint      `json:"blueprint,omitempty"`
	Draft       *models.ExperienceData `json:"draft,omitempty"`
	ChatLog     []models.ChatMessage   `json:"chatLog,omitempty"`
	Events      []models.MemoryEvent   `json:"events,omitempty"`
	DriftAlert  *DriftAlert            `json:"driftAlert,omitempty"`
	LastFailure *Failure               `json:"lastFailure,omitempty"`
	CycleLog    []string               `json:"cycleLog,omitempty"`
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	snap := Snapshot{
		User:     o.userName,
		Stage:    o.stage,
		Running:  o.running,
		ChatLog:  slices.Clone(o.chatLog),
		Events:   slices.Clone(o.events),
		CycleLog: slices.Clone(o.cycleLog),
	}
	if o.profile != nil {
		p := *o.profile
		p.Interests = slices.Clone(p.Interests)
		snap.Profile = &p
	}
	if o.blueprint != nil {
		b := *o.blueprint
		snap.Blueprint = &b
	}
	if o.draft != nil {
		d := cloneExperience(*o.draft)
		snap.Draft = &d
	}
	if o.driftAlert != nil {
		a := *o.driftAlert
		snap.DriftAlert = &a
	}
	if o.lastFailure != nil {
		f := *o.lastFailure
		snap.LastFailure = &f
	}
	return snap
}
