package handlers

import (
	"net/http"
	"strings"

	"calmcompanion/internal/ai"
	"calmcompanion/internal/models"
	"calmcompanion/internal/repository"
)

const maxPromptLength = 4000

// AIHandler exposes the assistant. Responses always succeed; the assistant
// substitutes localized fallbacks when the model is unavailable.
type AIHandler struct {
	assistant    *ai.Assistant
	settingsRepo *repository.SettingsRepository
}

// NewAIHandler creates a new AI handler
func NewAIHandler(assistant *ai.Assistant, settingsRepo *repository.SettingsRepository) *AIHandler {
	return &AIHandler{assistant: assistant, settingsRepo: settingsRepo}
}

type textRequest struct {
	Mode     string `json:"mode"` // "simplify" or "story"
	Text     string `json:"text"`
	Language string `json:"language"`
}

type textResponse struct {
	Text string `json:"text"`
}

type taskRequest struct {
	Task     string `json:"task"`
	Language string `json:"language"`
}

type imageRequest struct {
	Subject string `json:"subject"`
}

type imageResponse struct {
	Image string `json:"image,omitempty"` // data URL
}

// language prefers the request's tag and falls back to the profile setting
func (h *AIHandler) language(r *http.Request, requested string) models.Language {
	if requested != "" {
		return models.ParseLanguage(requested)
	}
	return h.settingsRepo.Language(r.Context())
}

func validPrompt(w http.ResponseWriter, s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		respondWithError(w, http.StatusBadRequest, "Text is required", "", nil)
		return "", false
	}
	if len(s) > maxPromptLength {
		respondWithError(w, http.StatusBadRequest, "Text is too long", "", nil)
		return "", false
	}
	return s, true
}

// Text simplifies text or writes a social story
func (h *AIHandler) Text(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	text, ok := validPrompt(w, req.Text)
	if !ok {
		return
	}
	lang := h.language(r, req.Language)

	var out string
	switch req.Mode {
	case "", "simplify":
		out = h.assistant.SimplifyText(r.Context(), text, lang)
	case "story":
		out = h.assistant.SocialStory(r.Context(), text, lang)
	default:
		respondWithError(w, http.StatusBadRequest, "Unknown mode", "", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, textResponse{Text: out})
}

// Task breaks a task into steps
func (h *AIHandler) Task(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, ok := validPrompt(w, req.Task)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, h.assistant.BreakDownTask(r.Context(), task, h.language(r, req.Language)))
}

// Image generates an illustration; the image field is omitted when none could be made
func (h *AIHandler) Image(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	subject, ok := validPrompt(w, req.Subject)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, imageResponse{Image: h.assistant.Illustrate(r.Context(), subject)})
}
