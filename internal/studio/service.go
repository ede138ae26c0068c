package studio

import (
	"context"

	"github.com/alexmorgen/vibeforge/internal/models"
)

// GenerativeService is everything the orchestrator asks of the external
// model. The gemini package provides the real implementation; tests supply a
// deterministic fake.
type GenerativeService interface {
	Calibrate(ctx context.Context, bio, moodBoardURL string) (models.UserProfile, error)
	Plan(ctx context.Context, profile models.UserProfile, history []models.MemoryEvent) (models.Blueprint, error)
	Draft(ctx context.Context, profile models.UserProfile, blueprint models.Blueprint) (models.ExperienceData, error)
	Remix(ctx context.Context, profile models.UserProfile, blueprint models.Blueprint, previous models.ExperienceData) (models.ExperienceData, error)
	Verify(ctx context.Context, experience models.ExperienceData, profile models.UserProfile) (models.VerificationResult, error)
	Refine(ctx context.Context, experience models.ExperienceData, verification models.VerificationResult, profile models.UserProfile) (models.ExperienceData, error)
	DetectDrift(ctx context.Context, profile models.UserProfile, history []models.MemoryEvent) (models.PreferenceDrift, error)
	Chat(ctx context.Context, profile models.UserProfile, message, headline string) (string, error)
	MutateDesign(ctx context.Context, profile models.UserProfile, design models.DesignSystem, instruction string) (models.DesignSystem, error)
	PolishCopy(ctx context.Context, text, tone string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
	EditImage(ctx context.Context, imageDataURL, instruction string) (string, error)
}

// EventStore is the durable backing for the per-user memory log.
type EventStore interface {
	Load(userName string) ([]models.MemoryEvent, error)
	Save(userName string, events []models.MemoryEvent) error
	Wipe(userName string) error
}
