// Package prompts assembles the text sent to the generative service. Every
// function is pure: profile, blueprint, drafts and critique in, prompt out.
package prompts

import (
	"fmt"
	"strings"

	"github.com/alexmorgen/vibeforge/internal/models"
)

// HistoryWindow caps how many recent memory events condition a prompt.
const HistoryWindow = 10

func Calibrate(bio, moodBoardURL string) string {
	var sb strings.Builder
	sb.WriteString("You are a brand psychologist onboarding a new user for a personalized product experience.\n")
	sb.WriteString("Read the bio below and classify the user.\n\n")
	sb.WriteString("Personality must be exactly one of: ZEN, BOLD, PLAYFUL, LUXE, TECHY, EARTHY, RETRO.\n")
	sb.WriteString("Pace is an integer 1 (slow, contemplative browsing) to 5 (frantic, skim-everything).\n")
	sb.WriteString("Tone is a short free-text descriptor of the voice that would land with them.\n")
	sb.WriteString("Interests are 3-6 short tags inferred from the bio.\n\n")
	sb.WriteString(fmt.Sprintf("Bio: %q\n", bio))
	if moodBoardURL != "" {
		sb.WriteString(fmt.Sprintf("The user also shared a mood board at %s; let its implied aesthetic color your read.\n", moodBoardURL))
	}
	return sb.String()
}

func Plan(profile models.UserProfile, history []models.MemoryEvent) string {
	var sb strings.Builder
	sb.WriteString("You are a creative director planning a one-page synthetic product experience.\n")
	sb.WriteString("Produce a creative brief with three parts:\n")
	sb.WriteString("- strategy: how the page should win this specific user over\n")
	sb.WriteString("- visualMetaphor: a single governing visual idea\n")
	sb.WriteString("- copyAngle: the voice and angle all copy should take\n\n")
	writeProfile(&sb, profile)
	writeHistory(&sb, history)
	return sb.String()
}

func Draft(profile models.UserProfile, blueprint models.Blueprint) string {
	var sb strings.Builder
	sb.WriteString("You are the lead designer and copywriter for a synthetic product landing page.\n")
	sb.WriteString("Following the creative brief, produce a complete experience: a design system, page copy, three features, and three invented product concepts.\n")
	sb.WriteString("Colors are CSS hex values. heroPrompt is an image-generation prompt for the page hero; leave image URLs empty.\n\n")
	writeProfile(&sb, profile)
	writeBlueprint(&sb, blueprint)
	return sb.String()
}

func Remix(profile models.UserProfile, blueprint models.Blueprint, previous models.ExperienceData) string {
	var sb strings.Builder
	sb.WriteString("You are remixing an existing synthetic product landing page. Keep the creative brief, but take a genuinely different execution.\n")
	sb.WriteString("Do NOT repeat any of the previous product concepts or headline framing.\n\n")
	writeProfile(&sb, profile)
	writeBlueprint(&sb, blueprint)
	sb.WriteString("Previous concepts to avoid repeating:\n")
	for _, c := range previous.Content.Concepts {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", c.Name, c.Function))
	}
	sb.WriteString(fmt.Sprintf("Previous headline: %q\n", previous.Content.Headline))
	return sb.String()
}

func Verify(experience models.ExperienceData, profile models.UserProfile) string {
	var sb strings.Builder
	sb.WriteString("You are a ruthless brand critic. Score how well this generated experience fits the user, 0-100, and say whether it is aligned.\n")
	sb.WriteString("Flag toneMismatch when the copy voice fights the user's tone, visualClash when the design density or palette fights their personality, paceFriction when the page demands a different browsing pace than theirs.\n\n")
	writeProfile(&sb, profile)
	sb.WriteString(fmt.Sprintf("Headline: %q\nSubheadline: %q\nCTA: %q\n", experience.Content.Headline, experience.Content.Subheadline, experience.Content.CTAText))
	sb.WriteString(fmt.Sprintf("Design: primary %s, accent %s, font %s, spacing %s\n",
		experience.Design.PrimaryColor, experience.Design.AccentColor, experience.Design.FontFamily, experience.Design.Spacing))
	for _, c := range experience.Content.Concepts {
		sb.WriteString(fmt.Sprintf("Concept: %s — %s (%s)\n", c.Name, c.Function, c.Aesthetic))
	}
	return sb.String()
}

func Refine(experience models.ExperienceData, verification models.VerificationResult, profile models.UserProfile) string {
	var sb strings.Builder
	sb.WriteString("A critic rejected the experience below. Rework it so the critique no longer applies, changing as little as necessary.\n\n")
	sb.WriteString(fmt.Sprintf("Critique: %s\n", verification.Critique))
	sb.WriteString(fmt.Sprintf("Suggestions: %s\n", verification.Suggestions))
	if verification.ToneMismatch {
		sb.WriteString("- The copy tone misses the user; rewrite the voice.\n")
	}
	if verification.VisualClash {
		sb.WriteString("- The design system clashes with the user's aesthetic; adjust palette and density.\n")
	}
	if verification.PaceFriction {
		sb.WriteString("- The page pacing fights the user's browsing pace; restructure accordingly.\n")
	}
	sb.WriteString("\n")
	writeProfile(&sb, profile)
	sb.WriteString(fmt.Sprintf("Current headline: %q\nCurrent subheadline: %q\n", experience.Content.Headline, experience.Content.Subheadline))
	return sb.String()
}

func DetectDrift(profile models.UserProfile, history []models.MemoryEvent) string {
	var sb strings.Builder
	sb.WriteString("You watch a user's interaction log for sustained mismatch between their declared profile and their behavior.\n")
	sb.WriteString("Only report drift for a repeated pattern, never a single action. When drift is real, return the minimal profile patch; otherwise hasDrifted is false and newProfile is omitted.\n\n")
	writeProfile(&sb, profile)
	writeHistory(&sb, history)
	return sb.String()
}

func Chat(profile models.UserProfile, message, headline string) string {
	var sb strings.Builder
	sb.WriteString("You are the in-page concierge persona of a personalized product experience. Answer in one or two sentences, in the voice the user's tone calls for.\n\n")
	writeProfile(&sb, profile)
	if headline != "" {
		sb.WriteString(fmt.Sprintf("The page currently leads with: %q\n", headline))
	}
	sb.WriteString(fmt.Sprintf("User says: %s\n", message))
	return sb.String()
}

func MutateDesign(profile models.UserProfile, design models.DesignSystem, instruction string) string {
	var sb strings.Builder
	sb.WriteString("Mutate the design system below per the instruction. Return a complete replacement design system; untouched fields keep their current values.\n\n")
	writeProfile(&sb, profile)
	sb.WriteString(fmt.Sprintf("Current design: primary %s, secondary %s, accent %s, background %s, font %s, radius %s, spacing %s\n",
		design.PrimaryColor, design.SecondaryColor, design.AccentColor, design.BackgroundColor,
		design.FontFamily, design.BorderRadius, design.Spacing))
	sb.WriteString(fmt.Sprintf("Instruction: %s\n", instruction))
	return sb.String()
}

func PolishCopy(text, tone string) string {
	return fmt.Sprintf("Rewrite the line below in a %s tone. Return only the rewritten line, nothing else.\n\nLine: %q\n", tone, text)
}

// HeroImage decorates the model-authored hero prompt with design hints so the
// rendered image sits inside the page palette.
func HeroImage(heroPrompt string, design models.DesignSystem) string {
	return fmt.Sprintf("%s. Wide hero banner composition, palette anchored on %s with %s accents, no text in the image.",
		heroPrompt, design.PrimaryColor, design.AccentColor)
}

func ConceptImage(concept models.ProductConcept, design models.DesignSystem) string {
	return fmt.Sprintf("Studio product shot of %q, a %s. Aesthetic: %s. Clean %s-spaced composition on a %s background, no text in the image.",
		concept.Name, concept.Function, concept.Aesthetic, design.Spacing, design.BackgroundColor)
}

func writeProfile(sb *strings.Builder, profile models.UserProfile) {
	sb.WriteString(fmt.Sprintf("User: %s\nPersonality: %s\nTone: %s\nPace: %d/5\nInterests: %s\n",
		profile.Name, profile.Personality, profile.Tone, profile.Pace, strings.Join(profile.Interests, ", ")))
	if profile.Bio != "" {
		sb.WriteString(fmt.Sprintf("Bio: %s\n", profile.Bio))
	}
	sb.WriteString("\n")
}

func writeBlueprint(sb *strings.Builder, blueprint models.Blueprint) {
	sb.WriteString(fmt.Sprintf("Brief strategy: %s\nVisual metaphor: %s\nCopy angle: %s\n\n",
		blueprint.Strategy, blueprint.VisualMetaphor, blueprint.CopyAngle))
}

func writeHistory(sb *strings.Builder, history []models.MemoryEvent) {
	if len(history) == 0 {
		sb.WriteString("No interaction history yet.\n")
		return
	}
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}
	sb.WriteString("Recent interactions, oldest first:\n")
	for _, ev := range history {
		sb.WriteString(fmt.Sprintf("- [%s] %s (during %s)\n", ev.Type, ev.Detail, ev.Context))
	}
}
