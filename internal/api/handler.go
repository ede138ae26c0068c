// Package api exposes the orchestrator to the browser presentation layer.
// Handlers carry no decision logic: they validate input, pick the user's
// session, and relay commands.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/alexmorgen/vibeforge/internal/logging"
	"github.com/alexmorgen/vibeforge/internal/studio"
	"github.com/alexmorgen/vibeforge/internal/thumbnail"
)

type Handler struct {
	svc        studio.GenerativeService
	store      studio.EventStore
	log        *logging.Logger
	configured bool
	fontPath   string

	mu       sync.Mutex
	sessions map[string]*studio.Orchestrator
}

func NewHandler(svc studio.GenerativeService, store studio.EventStore, configured bool, fontPath string, log *logging.Logger) *Handler {
	return &Handler{
		svc:        svc,
		store:      store,
		log:        log.With("component", "api"),
		configured: configured,
		fontPath:   fontPath,
		sessions:   make(map[string]*studio.Orchestrator),
	}
}

// Register wires all routes onto the router.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	r.GET("/api/setup", h.Setup)

	users := r.Group("/api/users/:name")
	users.POST("/calibrate", h.Calibrate)
	users.POST("/confirm", h.Confirm)
	users.POST("/remix", h.Remix)
	users.POST("/chat", h.Chat)
	users.POST("/visual", h.MutateVisual)
	users.POST("/copy", h.PolishCopy)
	users.POST("/hero-variation", h.VaryHero)
	users.POST("/drift/dismiss", h.DismissDrift)
	users.POST("/reset", h.Reset)
	users.DELETE("/memory", h.WipeMemory)
	users.GET("/state", h.State)
	users.GET("/thumbnail", h.Thumbnail)
}

// Setup tells the client whether generation-dependent features are usable.
func (h *Handler) Setup(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"configured": h.configured})
}

func (h *Handler) session(c *gin.Context) (*studio.Orchestrator, bool) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user name is required"})
		return nil, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if o, ok := h.sessions[name]; ok {
		return o, true
	}
	o, err := studio.New(name, h.svc, h.store, h.log)
	if err != nil {
		h.log.Error("failed to open session", "user", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored session memory is unreadable"})
		return nil, false
	}
	h.sessions[name] = o
	return o, true
}

// requireCredential gates every generation-dependent command with an
// explicit setup prompt instead of letting calls fail one by one.
func (h *Handler) requireCredential(c *gin.Context) bool {
	if h.configured {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": "no generative service credential configured; set GEMINI_API_KEY",
	})
	return false
}

func (h *Handler) Calibrate(c *gin.Context) {
	if !h.requireCredential(c) {
		return
	}
	o, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Bio          string `json:"bio" binding:"required"`
		MoodBoardURL string `json:"moodBoardUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile, err := o.Calibrate(c.Request.Context(), req.Bio, req.MoodBoardURL)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Confirm accepts the calibrated profile and launches the first cycle. The
// cycle runs in the background; clients poll /state for the progressive
// reveal.
func (h *Handler) Confirm(c *gin.Context) {
	if !h.requireCredential(c) {
		return
	}
	o, ok := h.session(c)
	if !ok {
		return
	}
	go func() {
		if err := o.RunCycle(context.Background(), false); err != nil {
			h.log.Warn("cycle ended with failure", "error", err)
		}
	}()
	c.JSON(http.StatusAccepted, o.Snapshot())
}

func (h *Handler) Remix(c *gin.Context) {
	if !h.requireCredential(c) {
		return
	}
	o, ok := h.session(c)
	if !ok {
		return
	}
	// Remix itself no-ops unless the session sits at COMPLETE with a draft;
	// report that up front instead of making the client poll to find out.
	snap := o.Snapshot()
	if snap.Stage != studio.StageComplete || snap.Draft == nil {
		c.JSON(http.StatusOK, gin.H{"started": false})
		return
	}
	go func() {
		started, err := o.Remix(context.Background())
		if err != nil {
			h.log.Warn("remix ended with failure", "error", err)
		}
		_ = started
	}()
	c.JSON(http.StatusAccepted, gin.H{"started": true})
}

func (h *Handler) Chat(c *gin.Context) {
	if !h.requireCredential(c) {
		return
	}
	o, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reply, err := o.Chat(c.Request.Context(), req.Message)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (h *Handler) MutateVisual(c *gin.Context) {
	if !h.requireCredential(c) {
		return
	}
	o, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Instruction string `json:"instruction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := o.MutateVisual(c.Request.Context(), req.Instruction); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, o.Snapshot())
}

func (h *Handler) PolishCopy(c *gin.Context) {
	if !h.requireCredential(c) {
		return
	}
	o, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Target string `json:"target" binding:"required"`
		Tone   string `json:"tone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := o.PolishCopy(c.Request.Context(), studio.CopyTarget(req.Target), req.Tone)
	switch {
	case errors.Is(err, studio.ErrBadCopyTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, o.Snapshot())
	}
}

func (h *Handler) VaryHero(c *gin.Context) {
	if !h.requireCredential(c) {
		return
	}
	o, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Instruction string `json:"instruction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := o.VaryHero(c.Request.Context(), req.Instruction); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, o.Snapshot())
}

func (h *Handler) DismissDrift(c *gin.Context) {
	o, ok := h.session(c)
	if !ok {
		return
	}
	o.DismissDriftAlert()
	c.JSON(http.StatusOK, o.Snapshot())
}

func (h *Handler) Reset(c *gin.Context) {
	o, ok := h.session(c)
	if !ok {
		return
	}
	o.Reset()
	c.JSON(http.StatusOK, o.Snapshot())
}

func (h *Handler) WipeMemory(c *gin.Context) {
	o, ok := h.session(c)
	if !ok {
		return
	}
	if err := o.WipeMemory(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, o.Snapshot())
}

func (h *Handler) State(c *gin.Context) {
	o, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, o.Snapshot())
}

func (h *Handler) Thumbnail(c *gin.Context) {
	o, ok := h.session(c)
	if !ok {
		return
	}
	snap := o.Snapshot()
	if snap.Draft == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no experience to share yet"})
		return
	}
	card := thumbnail.Card{
		User:        snap.User,
		Headline:    snap.Draft.Content.Headline,
		CTA:         snap.Draft.Content.CTAText,
		Design:      snap.Draft.Design,
		HeroDataURL: snap.Draft.Content.HeroURL,
	}
	png, err := thumbnail.Render(card, h.fontPath)
	if err != nil {
		h.log.Error("thumbnail render failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "thumbnail rendering failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="vibeforge-share.png"`)
	c.Data(http.StatusOK, "image/png", png)
}
