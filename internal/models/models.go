package models

import "time"

// Personality is the fixed set of aesthetic archetypes a profile can carry.
type Personality string

const (
	PersonalityZen     Personality = "ZEN"
	PersonalityBold    Personality = "BOLD"
	PersonalityPlayful Personality = "PLAYFUL"
	PersonalityLuxe    Personality = "LUXE"
	PersonalityTechy   Personality = "TECHY"
	PersonalityEarthy  Personality = "EARTHY"
	PersonalityRetro   Personality = "RETRO"
)

var personalities = map[Personality]struct{}{
	PersonalityZen:     {},
	PersonalityBold:    {},
	PersonalityPlayful: {},
	PersonalityLuxe:    {},
	PersonalityTechy:   {},
	PersonalityEarthy:  {},
	PersonalityRetro:   {},
}

func ValidPersonality(p Personality) bool {
	_, ok := personalities[p]
	return ok
}

type FontFamily string

const (
	FontSans  FontFamily = "sans"
	FontSerif FontFamily = "serif"
	FontMono  FontFamily = "mono"
)

type Spacing string

const (
	SpacingCompact     Spacing = "compact"
	SpacingComfortable Spacing = "comfortable"
	SpacingSpacious    Spacing = "spacious"
)

// UserProfile is created at onboarding from a calibration call and mutated in
// place by drift detection. Pace runs 1 (slow, contemplative) to 5 (frantic).
type UserProfile struct {
	Name         string      `json:"name"`
	Bio          string      `json:"bio"`
	Personality  Personality `json:"personality"`
	Interests    []string    `json:"interests"`
	Tone         string      `json:"tone"`
	Pace         int         `json:"pace"`
	MoodBoardURL string      `json:"moodBoardUrl,omitempty"`
}

// ClampPace forces pace back into its valid range.
func (p *UserProfile) ClampPace() {
	if p.Pace < 1 {
		p.Pace = 1
	}
	if p.Pace > 5 {
		p.Pace = 5
	}
}

// Blueprint is the creative brief that conditions every later generation
// call. Replaced wholesale on a full remix.
type Blueprint struct {
	Strategy       string `json:"strategy"`
	VisualMetaphor string `json:"visualMetaphor"`
	CopyAngle      string `json:"copyAngle"`
}

func (b Blueprint) Complete() bool {
	return b.Strategy != "" && b.VisualMetaphor != "" && b.CopyAngle != ""
}

// DesignSystem carries the token set applied to the rendered page.
type DesignSystem struct {
	PrimaryColor    string     `json:"primaryColor"`
	SecondaryColor  string     `json:"secondaryColor"`
	AccentColor     string     `json:"accentColor"`
	BackgroundColor string     `json:"backgroundColor"`
	FontFamily      FontFamily `json:"fontFamily"`
	BorderRadius    string     `json:"borderRadius"`
	Spacing         Spacing    `json:"spacing"`
}

type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ProductConcept is one invented product on the page. ImageURL is attached
// asynchronously after the concept itself exists.
type ProductConcept struct {
	Name      string `json:"name"`
	Function  string `json:"function"`
	Aesthetic string `json:"aesthetic"`
	USP       string `json:"usp"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// GeneratedContent preserves generation order for features and concepts.
type GeneratedContent struct {
	Headline    string           `json:"headline"`
	Subheadline string           `json:"subheadline"`
	CTAText     string           `json:"ctaText"`
	Features    []Feature        `json:"features"`
	Concepts    []ProductConcept `json:"concepts"`
	HeroPrompt  string           `json:"heroPrompt,omitempty"`
	HeroURL     string           `json:"heroUrl,omitempty"`
}

// VerificationResult is the critique pass over a finished draft. Score and
// Aligned are not enforced to agree; refinement force-sets Aligned.
type VerificationResult struct {
	Score        int    `json:"score"`
	Aligned      bool   `json:"aligned"`
	Critique     string `json:"critique"`
	Suggestions  string `json:"suggestions"`
	ToneMismatch bool   `json:"toneMismatch"`
	VisualClash  bool   `json:"visualClash"`
	PaceFriction bool   `json:"paceFriction"`
}

// ExperienceData is one complete personalized page: the design tokens, the
// copy/concepts, and (after verification) the critique.
type ExperienceData struct {
	Design       DesignSystem        `json:"design"`
	Content      GeneratedContent    `json:"content"`
	Verification *VerificationResult `json:"verification,omitempty"`
}

// InteractionType tags a memory event with the action that produced it.
type InteractionType string

const (
	InteractionRemix      InteractionType = "REMIX"
	InteractionChat       InteractionType = "CHAT"
	InteractionVisualEdit InteractionType = "VISUAL_EDIT"
	InteractionCopyEdit   InteractionType = "COPY_EDIT"
	InteractionReject     InteractionType = "REJECT"
)

// EventStatus marks whether the action that produced an event was confirmed.
// Events are recorded optimistically before the triggering call completes.
type EventStatus string

const (
	EventPending   EventStatus = "pending"
	EventConfirmed EventStatus = "confirmed"
)

// MemoryEvent is one durably logged user interaction. The per-user list is
// append-only; ids are unique.
type MemoryEvent struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Type      InteractionType `json:"type"`
	Detail    string          `json:"detail"`
	Context   string          `json:"context"`
	Status    EventStatus     `json:"status"`
}

// ProfilePatch is the partial profile a drift check may return. Nil fields
// are left untouched by Apply.
type ProfilePatch struct {
	Personality *Personality `json:"personality,omitempty"`
	Interests   []string     `json:"interests,omitempty"`
	Tone        *string      `json:"tone,omitempty"`
	Pace        *int         `json:"pace,omitempty"`
}

// Apply shallow-merges the patch onto the live profile.
func (p ProfilePatch) Apply(profile *UserProfile) {
	if p.Personality != nil && ValidPersonality(*p.Personality) {
		profile.Personality = *p.Personality
	}
	if len(p.Interests) > 0 {
		profile.Interests = p.Interests
	}
	if p.Tone != nil && *p.Tone != "" {
		profile.Tone = *p.Tone
	}
	if p.Pace != nil {
		profile.Pace = *p.Pace
		profile.ClampPace()
	}
}

// PreferenceDrift is computed transiently and never stored. NewProfile must
// not be applied when HasDrifted is false.
type PreferenceDrift struct {
	HasDrifted bool          `json:"hasDrifted"`
	NewProfile *ProfilePatch `json:"newProfile,omitempty"`
	Reasoning  string        `json:"reasoning"`
	Pattern    string        `json:"pattern"`
}

// ChatMessage is one turn in the persona chat history.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
