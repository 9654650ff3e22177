package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/logger"
	"github.com/osse101/CropCycle_Go/internal/recommendation"
)

// RecommendationHandler serves generated recommendations
type RecommendationHandler struct {
	service recommendation.Service
}

// NewRecommendationHandler creates a handler over the recommendation engine
func NewRecommendationHandler(service recommendation.Service) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// GenerateRecommendationsRequest selects the data kinds to use; an omitted flag means true
type GenerateRecommendationsRequest struct {
	IncludeWeather *bool `json:"include_weather,omitempty"`
	IncludeMarket  *bool `json:"include_market,omitempty"`
	IncludeSoil    *bool `json:"include_soil,omitempty"`
}

func (r GenerateRecommendationsRequest) options() domain.GenerateOptions {
	flag := func(b *bool) bool { return b == nil || *b }
	return domain.GenerateOptions{
		IncludeWeather: flag(r.IncludeWeather),
		IncludeMarket:  flag(r.IncludeMarket),
		IncludeSoil:    flag(r.IncludeSoil),
	}
}

// HandleGenerate generates, or returns cached, recommendations for a client
// @Summary Generate recommendations
// @Description Returns ranked recommendations; sources that could not be reached are listed in X-Unavailable-Sources
// @Tags recommendations
// @Accept json
// @Produce json
// @Param client_id query string true "Client ID"
// @Param refresh query bool false "Bypass the cache"
// @Param request body GenerateRecommendationsRequest false "Data kinds"
// @Success 200 {array} domain.Recommendation
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /recommendations [post]
func (h *RecommendationHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	clientID, ok := GetQueryParam(r, w, ParamClientID)
	if !ok {
		return
	}
	refresh, ok := GetBoolQueryParam(r, w, ParamRefresh)
	if !ok {
		return
	}

	var req GenerateRecommendationsRequest
	if err := DecodeOptionalRequest(r, w, &req, "Generate recommendations"); err != nil {
		return
	}
	opts := req.options()
	opts.Refresh = refresh

	LogRequestFields(logger.FromContext(r.Context()), "clientID", clientID, "refresh", refresh)

	result, err := h.service.Generate(r.Context(), clientID, opts)
	if err != nil {
		respondServiceError(w, r, ErrMsgGenerateFailed, err)
		return
	}
	respondRecommendations(w, result)
}

// HandleGetCached returns a client's most recent recommendations
// @Summary Get recommendations
// @Description Most recent first; generates with every source when nothing is cached
// @Tags recommendations
// @Produce json
// @Param client_id path string true "Client ID"
// @Param max query int false "Maximum number of recommendations"
// @Success 200 {array} domain.Recommendation
// @Failure 400 {object} ErrorResponse
// @Router /recommendations/{client_id} [get]
func (h *RecommendationHandler) HandleGetCached(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, ParamClientID)

	limit := 0
	if raw := r.URL.Query().Get(ParamMax); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidLimit)
			return
		}
		limit = n
	}

	result, err := h.service.GetCached(r.Context(), clientID, limit)
	if err != nil {
		respondServiceError(w, r, ErrMsgGenerateFailed, err)
		return
	}
	respondRecommendations(w, result)
}

// respondRecommendations writes the bare list and moves the run metadata into headers
func respondRecommendations(w http.ResponseWriter, result *domain.GenerationResult) {
	if len(result.UnavailableSources) > 0 {
		w.Header().Set(HeaderUnavailableSources, strings.Join(result.UnavailableSources, ","))
	}
	if !result.GeneratedAt.IsZero() {
		w.Header().Set(HeaderGeneratedAt, result.GeneratedAt.UTC().Format(time.RFC3339))
	}
	recs := result.Recommendations
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	respondJSON(w, http.StatusOK, recs)
}
