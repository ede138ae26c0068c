// Package gemini wraps every call to the generative service behind firm
// contracts: structured calls declare a response schema and parse strictly
// after cleanup, image calls tolerate empty responses, and all failures come
// back as a CallError with an enumerated kind. No retries, no backoff;
// callers own failure handling.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/alexmorgen/vibeforge/internal/logging"
	"github.com/alexmorgen/vibeforge/internal/models"
	"github.com/alexmorgen/vibeforge/internal/prompts"
)

type Client struct {
	log        *logging.Logger
	client     *genai.Client
	textModel  string
	imageModel string
	timeout    time.Duration
}

// Options configures a Client. A zero APIKey is allowed: the client still
// constructs, and every call fails fast with a missing-credential error
// before touching the network.
type Options struct {
	APIKey     string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
}

func NewClient(ctx context.Context, opts Options, log *logging.Logger) (*Client, error) {
	c := &Client{
		log:        log.With("component", "gemini"),
		textModel:  opts.TextModel,
		imageModel: opts.ImageModel,
		timeout:    opts.Timeout,
	}
	if c.timeout <= 0 {
		c.timeout = 90 * time.Second
	}
	if opts.APIKey == "" {
		return c, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Ready reports whether a credential is configured.
func (c *Client) Ready() bool { return c.client != nil }

func (c *Client) Calibrate(ctx context.Context, bio, moodBoardURL string) (models.UserProfile, error) {
	var fragment struct {
		Personality models.Personality `json:"personality"`
		Interests   []string           `json:"interests"`
		Tone        string             `json:"tone"`
		Pace        int                `json:"pace"`
	}
	if err := c.structured(ctx, "calibrate", prompts.Calibrate(bio, moodBoardURL), profileSchema, &fragment); err != nil {
		return models.UserProfile{}, err
	}
	profile := models.UserProfile{
		Bio:          bio,
		Personality:  fragment.Personality,
		Interests:    fragment.Interests,
		Tone:         fragment.Tone,
		Pace:         fragment.Pace,
		MoodBoardURL: moodBoardURL,
	}
	profile.ClampPace()
	if !models.ValidPersonality(profile.Personality) {
		return models.UserProfile{}, &CallError{
			Op:   "calibrate",
			Kind: KindMalformedResponse,
			Err:  fmt.Errorf("unknown personality %q", fragment.Personality),
		}
	}
	return profile, nil
}

func (c *Client) Plan(ctx context.Context, profile models.UserProfile, history []models.MemoryEvent) (models.Blueprint, error) {
	var blueprint models.Blueprint
	if err := c.structured(ctx, "plan", prompts.Plan(profile, history), blueprintSchema, &blueprint); err != nil {
		return models.Blueprint{}, err
	}
	if !blueprint.Complete() {
		return models.Blueprint{}, &CallError{Op: "plan", Kind: KindMalformedResponse, Err: errors.New("blueprint has empty fields")}
	}
	return blueprint, nil
}

func (c *Client) Draft(ctx context.Context, profile models.UserProfile, blueprint models.Blueprint) (models.ExperienceData, error) {
	var experience models.ExperienceData
	if err := c.structured(ctx, "draft", prompts.Draft(profile, blueprint), experienceSchema, &experience); err != nil {
		return models.ExperienceData{}, err
	}
	return experience, nil
}

func (c *Client) Remix(ctx context.Context, profile models.UserProfile, blueprint models.Blueprint, previous models.ExperienceData) (models.ExperienceData, error) {
	var experience models.ExperienceData
	if err := c.structured(ctx, "remix", prompts.Remix(profile, blueprint, previous), experienceSchema, &experience); err != nil {
		return models.ExperienceData{}, err
	}
	return experience, nil
}

func (c *Client) Verify(ctx context.Context, experience models.ExperienceData, profile models.UserProfile) (models.VerificationResult, error) {
	var verification models.VerificationResult
	if err := c.structured(ctx, "verify", prompts.Verify(experience, profile), verificationSchema, &verification); err != nil {
		return models.VerificationResult{}, err
	}
	return verification, nil
}

func (c *Client) Refine(ctx context.Context, experience models.ExperienceData, verification models.VerificationResult, profile models.UserProfile) (models.ExperienceData, error) {
	var refined models.ExperienceData
	if err := c.structured(ctx, "refine", prompts.Refine(experience, verification, profile), experienceSchema, &refined); err != nil {
		return models.ExperienceData{}, err
	}
	return refined, nil
}

func (c *Client) DetectDrift(ctx context.Context, profile models.UserProfile, history []models.MemoryEvent) (models.PreferenceDrift, error) {
	var drift models.PreferenceDrift
	if err := c.structured(ctx, "detectDrift", prompts.DetectDrift(profile, history), driftSchema, &drift); err != nil {
		return models.PreferenceDrift{}, err
	}
	return drift, nil
}

func (c *Client) Chat(ctx context.Context, profile models.UserProfile, message, headline string) (string, error) {
	return c.text(ctx, "chat", prompts.Chat(profile, message, headline))
}

func (c *Client) MutateDesign(ctx context.Context, profile models.UserProfile, design models.DesignSystem, instruction string) (models.DesignSystem, error) {
	var mutated models.DesignSystem
	if err := c.structured(ctx, "mutateDesign", prompts.MutateDesign(profile, design, instruction), designSchema, &mutated); err != nil {
		return models.DesignSystem{}, err
	}
	return mutated, nil
}

func (c *Client) PolishCopy(ctx context.Context, text, tone string) (string, error) {
	polished, err := c.text(ctx, "polishCopy", prompts.PolishCopy(text, tone))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(polished), `"`)), nil
}

// GenerateImage returns the image as a data URL, or "" when the service
// answered with no image parts (empty-asset, a soft failure).
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if err := c.ready("generateImage"); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.imageModel)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", c.classify("generateImage", err)
	}
	if url := firstImage(resp); url != "" {
		return url, nil
	}
	c.log.Warn("image call returned no image parts", "op", "generateImage", "kind", KindEmptyAsset)
	return "", nil
}

// EditImage applies an instruction to an existing image. On any failure the
// original image is returned so the caller never loses the asset it had.
func (c *Client) EditImage(ctx context.Context, imageDataURL, instruction string) (string, error) {
	if err := c.ready("editImage"); err != nil {
		return imageDataURL, err
	}
	mime, data, err := decodeDataURL(imageDataURL)
	if err != nil {
		c.log.Warn("editImage input is not a data URL, keeping original", "error", err)
		return imageDataURL, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.imageModel)
	resp, err := model.GenerateContent(ctx, genai.Blob{MIMEType: mime, Data: data}, genai.Text(instruction))
	if err != nil {
		c.log.Warn("editImage failed, keeping original", "error", err)
		return imageDataURL, nil
	}
	if url := firstImage(resp); url != "" {
		return url, nil
	}
	c.log.Warn("editImage returned no image parts, keeping original", "kind", KindEmptyAsset)
	return imageDataURL, nil
}

func (c *Client) structured(ctx context.Context, op, prompt string, schema *genai.Schema, out any) error {
	if err := c.ready(op); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.textModel)
	model.SetTemperature(0.8)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return c.classify(op, err)
	}
	raw := firstText(resp)
	if raw == "" {
		return &CallError{Op: op, Kind: KindMalformedResponse, Err: errors.New("no text parts in response")}
	}
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), out); err != nil {
		return &CallError{Op: op, Kind: KindMalformedResponse, Err: err}
	}
	return nil
}

func (c *Client) text(ctx context.Context, op, prompt string) (string, error) {
	if err := c.ready(op); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.textModel)
	model.SetTemperature(0.9)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", c.classify(op, err)
	}
	raw := firstText(resp)
	if raw == "" {
		return "", &CallError{Op: op, Kind: KindMalformedResponse, Err: errors.New("no text parts in response")}
	}
	return raw, nil
}

func (c *Client) ready(op string) error {
	if c.client == nil {
		return &CallError{Op: op, Kind: KindMissingCredential}
	}
	return nil
}

func (c *Client) classify(op string, err error) error {
	kind := KindTransport
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &CallError{Op: op, Kind: kind, Err: err}
}

func firstText(resp *genai.GenerateContentResponse) string {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok && string(text) != "" {
				return string(text)
			}
		}
	}
	return ""
}

func firstImage(resp *genai.GenerateContentResponse) string {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				return encodeDataURL(blob.MIMEType, blob.Data)
			}
		}
	}
	return ""
}

func encodeDataURL(mime string, data []byte) string {
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func decodeDataURL(url string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, errors.New("not a data URL")
	}
	mime, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return "", nil, errors.New("data URL is not base64")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	return mime, data, nil
}
