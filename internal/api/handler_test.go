package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexmorgen/vibeforge/internal/logging"
	"github.com/alexmorgen/vibeforge/internal/models"
	"github.com/alexmorgen/vibeforge/internal/studio"
)

// stubService answers every generative call instantly with fixed content.
type stubService struct{}

func (stubService) Calibrate(ctx context.Context, bio, moodBoardURL string) (models.UserProfile, error) {
	return models.UserProfile{
		Bio:         bio,
		Personality: models.PersonalityTechy,
		Interests:   []string{"gadgets"},
		Tone:        "crisp",
		Pace:        4,
	}, nil
}

func (stubService) Plan(ctx context.Context, profile models.UserProfile, history []models.MemoryEvent) (models.Blueprint, error) {
	return models.Blueprint{Strategy: "s", VisualMetaphor: "v", CopyAngle: "c"}, nil
}

func (stubService) Draft(ctx context.Context, profile models.UserProfile, blueprint models.Blueprint) (models.ExperienceData, error) {
	return models.ExperienceData{
		Design: models.DesignSystem{
			PrimaryColor:    "#111111",
			SecondaryColor:  "#222222",
			AccentColor:     "#333333",
			BackgroundColor: "#FFFFFF",
			FontFamily:      models.FontMono,
			BorderRadius:    "4px",
			Spacing:         models.SpacingCompact,
		},
		Content: models.GeneratedContent{
			Headline:    "Ship it faster",
			Subheadline: "Tools that keep up",
			CTAText:     "Try now",
			Concepts: []models.ProductConcept{
				{Name: "Pulse", Function: "status widget"},
			},
		},
	}, nil
}

func (s stubService) Remix(ctx context.Context, profile models.UserProfile, blueprint models.Blueprint, previous models.ExperienceData) (models.ExperienceData, error) {
	return s.Draft(ctx, profile, blueprint)
}

func (stubService) Verify(ctx context.Context, experience models.ExperienceData, profile models.UserProfile) (models.VerificationResult, error) {
	return models.VerificationResult{Score: 91, Aligned: true}, nil
}

func (s stubService) Refine(ctx context.Context, experience models.ExperienceData, verification models.VerificationResult, profile models.UserProfile) (models.ExperienceData, error) {
	return experience, nil
}

func (stubService) DetectDrift(ctx context.Context, profile models.UserProfile, history []models.MemoryEvent) (models.PreferenceDrift, error) {
	return models.PreferenceDrift{}, nil
}

func (stubService) Chat(ctx context.Context, profile models.UserProfile, message, headline string) (string, error) {
	return "sure thing", nil
}

func (stubService) MutateDesign(ctx context.Context, profile models.UserProfile, design models.DesignSystem, instruction string) (models.DesignSystem, error) {
	design.AccentColor = "#ABCDEF"
	return design, nil
}

func (stubService) PolishCopy(ctx context.Context, text, tone string) (string, error) {
	return "polished", nil
}

func (stubService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return "", nil
}

func (stubService) EditImage(ctx context.Context, imageDataURL, instruction string) (string, error) {
	return imageDataURL, nil
}

type stubStore struct {
	mu     sync.Mutex
	rows   map[string][]models.MemoryEvent
	broken bool
}

func newStubStore() *stubStore { return &stubStore{rows: make(map[string][]models.MemoryEvent)} }

func (s *stubStore) Load(userName string) ([]models.MemoryEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return nil, errors.New("blob is garbage")
	}
	return s.rows[userName], nil
}

func (s *stubStore) Save(userName string, events []models.MemoryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[userName] = events
	return nil
}

func (s *stubStore) Wipe(userName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, userName)
	return nil
}

func newTestRouter(t *testing.T, configured bool, store studio.EventStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(stubService{}, store, configured, "", logging.NewNop())
	h.Register(r)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, w.Body.String())
	}
	return out
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, true, newStubStore())
	w := do(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("health: code=%d body=%q", w.Code, w.Body.String())
	}
}

func TestSetupReportsCredentialState(t *testing.T) {
	for _, configured := range []bool{true, false} {
		r := newTestRouter(t, configured, newStubStore())
		w := do(t, r, http.MethodGet, "/api/setup", "")
		if w.Code != http.StatusOK {
			t.Fatalf("setup: code=%d", w.Code)
		}
		if got := decodeBody(t, w)["configured"]; got != configured {
			t.Fatalf("configured: want=%v got=%v", configured, got)
		}
	}
}

func TestGenerationRoutesGatedWithoutCredential(t *testing.T) {
	r := newTestRouter(t, false, newStubStore())
	routes := []struct{ method, path, body string }{
		{http.MethodPost, "/api/users/ada/calibrate", `{"bio":"hi"}`},
		{http.MethodPost, "/api/users/ada/confirm", ""},
		{http.MethodPost, "/api/users/ada/remix", ""},
		{http.MethodPost, "/api/users/ada/chat", `{"message":"hi"}`},
		{http.MethodPost, "/api/users/ada/visual", `{"instruction":"x"}`},
		{http.MethodPost, "/api/users/ada/copy", `{"target":"headline","tone":"warm"}`},
		{http.MethodPost, "/api/users/ada/hero-variation", `{"instruction":"x"}`},
	}
	for _, rt := range routes {
		w := do(t, r, rt.method, rt.path, rt.body)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: want=503 got=%d", rt.method, rt.path, w.Code)
		}
	}

	// Non-generative routes stay open.
	if w := do(t, r, http.MethodGet, "/api/users/ada/state", ""); w.Code != http.StatusOK {
		t.Errorf("state should not be gated, got %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/users/ada/reset", ""); w.Code != http.StatusOK {
		t.Errorf("reset should not be gated, got %d", w.Code)
	}
}

func TestCalibrateValidation(t *testing.T) {
	r := newTestRouter(t, true, newStubStore())
	if w := do(t, r, http.MethodPost, "/api/users/ada/calibrate", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing bio: want=400 got=%d", w.Code)
	}

	w := do(t, r, http.MethodPost, "/api/users/ada/calibrate", `{"bio":"late-night tinkerer"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("calibrate: code=%d body=%s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["name"] != "ada" {
		t.Fatalf("profile name: want=ada got=%v", body["name"])
	}
	if body["personality"] != string(models.PersonalityTechy) {
		t.Fatalf("personality: got=%v", body["personality"])
	}
}

func TestConfirmRunsCycleToComplete(t *testing.T) {
	r := newTestRouter(t, true, newStubStore())
	if w := do(t, r, http.MethodPost, "/api/users/ada/calibrate", `{"bio":"x"}`); w.Code != http.StatusOK {
		t.Fatalf("calibrate: %d", w.Code)
	}

	w := do(t, r, http.MethodPost, "/api/users/ada/confirm", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("confirm: want=202 got=%d", w.Code)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		sw := do(t, r, http.MethodGet, "/api/users/ada/state", "")
		state := decodeBody(t, sw)
		if state["stage"] == string(studio.StageComplete) {
			if state["draft"] == nil {
				t.Fatal("complete state has no draft")
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("cycle never completed, last state: %v", state)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func runToComplete(t *testing.T, r *gin.Engine, user string) {
	t.Helper()
	if w := do(t, r, http.MethodPost, "/api/users/"+user+"/calibrate", `{"bio":"x"}`); w.Code != http.StatusOK {
		t.Fatalf("calibrate: %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/users/"+user+"/confirm", ""); w.Code != http.StatusAccepted {
		t.Fatalf("confirm: %d", w.Code)
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		sw := do(t, r, http.MethodGet, "/api/users/"+user+"/state", "")
		if decodeBody(t, sw)["stage"] == string(studio.StageComplete) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("cycle never completed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRemixReportsNotStartedBeforeComplete(t *testing.T) {
	r := newTestRouter(t, true, newStubStore())
	w := do(t, r, http.MethodPost, "/api/users/ada/remix", "")
	if w.Code != http.StatusOK {
		t.Fatalf("remix on idle: want=200 got=%d", w.Code)
	}
	if got := decodeBody(t, w)["started"]; got != false {
		t.Fatalf("started: want=false got=%v", got)
	}

	runToComplete(t, r, "ada")
	w = do(t, r, http.MethodPost, "/api/users/ada/remix", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("remix on complete: want=202 got=%d", w.Code)
	}
	if got := decodeBody(t, w)["started"]; got != true {
		t.Fatalf("started: want=true got=%v", got)
	}
}

func TestChatRequiresDraft(t *testing.T) {
	r := newTestRouter(t, true, newStubStore())
	w := do(t, r, http.MethodPost, "/api/users/ada/chat", `{"message":"hello"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("chat without draft: want=409 got=%d", w.Code)
	}

	runToComplete(t, r, "ada")
	w = do(t, r, http.MethodPost, "/api/users/ada/chat", `{"message":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("chat: code=%d body=%s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["reply"]; got != "sure thing" {
		t.Fatalf("reply: got=%v", got)
	}
}

func TestPolishCopyRejectsBadTarget(t *testing.T) {
	r := newTestRouter(t, true, newStubStore())
	runToComplete(t, r, "ada")

	w := do(t, r, http.MethodPost, "/api/users/ada/copy", `{"target":"cta","tone":"warm"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad target: want=400 got=%d", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/users/ada/copy", `{"target":"headline","tone":"warm"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("polish: code=%d body=%s", w.Code, w.Body.String())
	}
}

func TestThumbnailLifecycle(t *testing.T) {
	r := newTestRouter(t, true, newStubStore())

	if w := do(t, r, http.MethodGet, "/api/users/ada/thumbnail", ""); w.Code != http.StatusNotFound {
		t.Fatalf("thumbnail without draft: want=404 got=%d", w.Code)
	}

	runToComplete(t, r, "ada")
	w := do(t, r, http.MethodGet, "/api/users/ada/thumbnail", "")
	if w.Code != http.StatusOK {
		t.Fatalf("thumbnail: code=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type: got=%s", ct)
	}
	if w.Body.Len() == 0 {
		t.Fatal("empty thumbnail body")
	}
}

func TestWipeMemory(t *testing.T) {
	store := newStubStore()
	r := newTestRouter(t, true, store)
	runToComplete(t, r, "ada")
	if w := do(t, r, http.MethodPost, "/api/users/ada/chat", `{"message":"hello"}`); w.Code != http.StatusOK {
		t.Fatalf("chat: %d", w.Code)
	}

	w := do(t, r, http.MethodDelete, "/api/users/ada/memory", "")
	if w.Code != http.StatusOK {
		t.Fatalf("wipe: code=%d", w.Code)
	}
	store.mu.Lock()
	_, ok := store.rows["ada"]
	store.mu.Unlock()
	if ok {
		t.Fatal("store row should be gone")
	}
}

func TestUnreadableMemoryIs500(t *testing.T) {
	store := newStubStore()
	store.broken = true
	r := newTestRouter(t, true, store)
	w := do(t, r, http.MethodGet, "/api/users/ada/state", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want=500 got=%d", w.Code)
	}
}

func TestSessionsAreSticky(t *testing.T) {
	r := newTestRouter(t, true, newStubStore())
	if w := do(t, r, http.MethodPost, "/api/users/ada/calibrate", `{"bio":"x"}`); w.Code != http.StatusOK {
		t.Fatalf("calibrate: %d", w.Code)
	}

	w := do(t, r, http.MethodGet, "/api/users/ada/state", "")
	state := decodeBody(t, w)
	if state["profile"] == nil {
		t.Fatal("profile should persist across requests in the same session")
	}
	// A different user gets a fresh session.
	w = do(t, r, http.MethodGet, "/api/users/bo/state", "")
	if decodeBody(t, w)["profile"] != nil {
		t.Fatal("sessions must not leak across users")
	}
}
