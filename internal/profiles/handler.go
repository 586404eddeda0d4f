package profiles

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"zipduck-backend/internal/shared/server/middleware"
	"zipduck-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches profile routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.get)
	rg.PUT("/profile", h.update)
}

type profileRequest struct {
	Age              int    `json:"age"`
	AnnualIncome     int64  `json:"annualIncome"`
	HouseholdMembers int    `json:"householdMembers"`
	HousingOwned     int    `json:"housingOwned"`
	PreferredRegions string `json:"preferredRegions"`
}

type profileResponse struct {
	UserID           string `json:"userId"`
	Age              int    `json:"age"`
	AnnualIncome     int64  `json:"annualIncome"`
	HouseholdMembers int    `json:"householdMembers"`
	HousingOwned     int    `json:"housingOwned"`
	PreferredRegions string `json:"preferredRegions"`
}

func toResponse(p Profile) profileResponse {
	return profileResponse{
		UserID:           p.UserID,
		Age:              p.Age,
		AnnualIncome:     p.AnnualIncome,
		HouseholdMembers: p.HouseholdMembers,
		HousingOwned:     p.HousingOwned,
		PreferredRegions: p.PreferredRegions,
	}
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "X-User-Id header is required", nil)
		return
	}

	profile, err := h.Svc.Get(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "profile not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch profile", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(profile))
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "X-User-Id header is required", nil)
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	profile, err := h.Svc.Update(c.Request.Context(), Profile{
		UserID:           userID,
		Age:              req.Age,
		AnnualIncome:     req.AnnualIncome,
		HouseholdMembers: req.HouseholdMembers,
		HousingOwned:     req.HousingOwned,
		PreferredRegions: req.PreferredRegions,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update profile", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(profile))
}
