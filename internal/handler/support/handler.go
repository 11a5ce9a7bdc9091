package support

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/erickai/companion/backend/internal/analysis/emotion"
	"github.com/erickai/companion/backend/internal/model/crisis"
	"github.com/erickai/companion/backend/pkg/utils"
)

const maxBodyBytes = 64 << 10

// Handler serves the helpline directory and stateless classification.
type Handler struct {
	analyzer *emotion.Analyzer
}

// New creates a support handler. A nil analyzer uses the default lexicon.
func New(analyzer *emotion.Analyzer) *Handler {
	if analyzer == nil {
		analyzer = emotion.NewAnalyzer(emotion.DefaultLexicon())
	}
	return &Handler{analyzer: analyzer}
}

type helplineView struct {
	crisis.Helpline
	Dial string `json:"dial"`
}

type analyzeResponse struct {
	emotion.Analysis
	Emoji       string `json:"emoji"`
	DisplayName string `json:"displayName"`
	Tone        string `json:"tone"`
}

// RegisterRoutes mounts /helplines and /emotion/analyze.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/helplines", h.handleHelplines)
	r.Post("/emotion/analyze", h.handleAnalyze)
}

func (h *Handler) handleHelplines(w http.ResponseWriter, r *http.Request) {
	directory := crisis.Directory()
	views := make([]helplineView, 0, len(directory))
	for _, line := range directory {
		views = append(views, helplineView{Helpline: line, Dial: line.Dial()})
	}
	utils.RespondJSON(w, http.StatusOK, views)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(w, r, maxBodyBytes, &payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	result := h.analyzer.Classify(payload.Text)
	utils.RespondJSON(w, http.StatusOK, analyzeResponse{
		Analysis:    result,
		Emoji:       emotion.Emoji(result.Primary),
		DisplayName: emotion.DisplayName(result.Primary),
		Tone:        emotion.Tone(result.Primary),
	})
}
