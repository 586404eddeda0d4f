package analysis

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"zipduck-backend/internal/documents"
	"zipduck-backend/internal/extraction"
	"zipduck-backend/internal/shared/server/middleware"
	"zipduck-backend/internal/shared/server/respond"
)

// Handler exposes outcome polling.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/:id/analysis", h.outcome)
}

type criteriaResponse struct {
	OfferName             *string `json:"offerName"`
	Region                *string `json:"region"`
	Address               *string `json:"address"`
	HousingCategory       *string `json:"housingCategory"`
	MinAge                *int    `json:"minAge"`
	MaxAge                *int    `json:"maxAge"`
	MinIncome             *int64  `json:"minIncome"`
	MaxIncome             *int64  `json:"maxIncome"`
	MinHouseholdMembers   *int    `json:"minHouseholdMembers"`
	MaxHouseholdMembers   *int    `json:"maxHouseholdMembers"`
	MaxHousingOwned       *int    `json:"maxHousingOwned"`
	SpecialQualifications *string `json:"specialQualifications"`
	PreferenceCategories  *string `json:"preferenceCategories"`
	MinPrice              *int64  `json:"minPrice"`
	MaxPrice              *int64  `json:"maxPrice"`
	ApplicationPeriod     *string `json:"applicationPeriod"`
}

type outcomeResponse struct {
	DocumentID    string           `json:"documentId"`
	Status        string           `json:"status"`
	Criteria      criteriaResponse `json:"criteria"`
	MatchScore    int              `json:"matchScore"`
	Eligible      bool             `json:"eligible"`
	OCRQuality    string           `json:"ocrQuality"`
	OCRWarning    string           `json:"ocrWarning,omitempty"`
	ExtractedText string           `json:"extractedText,omitempty"`
	Model         string           `json:"model,omitempty"`
	ProcessingMS  int64            `json:"processingMs"`
	AnalyzedAt    time.Time        `json:"analyzedAt"`
}

func toCriteriaResponse(c extraction.Criteria) criteriaResponse {
	return criteriaResponse{
		OfferName:             c.OfferName,
		Region:                c.Region,
		Address:               c.Address,
		HousingCategory:       c.HousingCategory,
		MinAge:                c.MinAge,
		MaxAge:                c.MaxAge,
		MinIncome:             c.MinIncome,
		MaxIncome:             c.MaxIncome,
		MinHouseholdMembers:   c.MinHouseholdMembers,
		MaxHouseholdMembers:   c.MaxHouseholdMembers,
		MaxHousingOwned:       c.MaxHousingOwned,
		SpecialQualifications: c.SpecialQualifications,
		PreferenceCategories:  c.PreferenceCategories,
		MinPrice:              c.MinPrice,
		MaxPrice:              c.MaxPrice,
		ApplicationPeriod:     c.ApplicationPeriod,
	}
}

func (h *Handler) outcome(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "X-User-Id header is required", nil)
		return
	}

	doc, outcome, err := h.Svc.Outcome(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrNotFound):
			// The pipeline has not produced an outcome; report where it is.
			respond.JSON(c, http.StatusOK, gin.H{
				"documentId":    doc.ID,
				"status":        string(doc.Status),
				"failureReason": doc.FailureReason,
			})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, outcomeResponse{
		DocumentID:    doc.ID,
		Status:        string(doc.Status),
		Criteria:      toCriteriaResponse(outcome.Criteria),
		MatchScore:    outcome.MatchScore,
		Eligible:      outcome.Eligible,
		OCRQuality:    string(outcome.OCRQuality),
		OCRWarning:    outcome.OCRWarning,
		ExtractedText: outcome.ExtractedText,
		Model:         outcome.Model,
		ProcessingMS:  outcome.ProcessingMS,
		AnalyzedAt:    outcome.CreatedAt,
	})
}
