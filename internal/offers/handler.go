package offers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

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

// RegisterRoutes attaches offer routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/offers", h.list)
	rg.GET("/offers/:id", h.get)
}

// OfferResponse is the public JSON shape of an offer. It is shared with the
// eligibility endpoints.
type OfferResponse struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Region                string `json:"region"`
	Address               string `json:"address,omitempty"`
	HousingCategory       string `json:"housingCategory"`
	MinAge                *int   `json:"minAge"`
	MaxAge                *int   `json:"maxAge"`
	MinIncome             *int64 `json:"minIncome"`
	MaxIncome             *int64 `json:"maxIncome"`
	MinHouseholdMembers   *int   `json:"minHouseholdMembers"`
	MaxHouseholdMembers   *int   `json:"maxHouseholdMembers"`
	MaxHousingOwned       *int   `json:"maxHousingOwned"`
	SpecialQualifications string `json:"specialQualifications,omitempty"`
	PreferenceCategories  string `json:"preferenceCategories,omitempty"`
	MinPrice              *int64 `json:"minPrice"`
	MaxPrice              *int64 `json:"maxPrice"`
	ApplicationStartDate  string `json:"applicationStartDate,omitempty"`
	ApplicationEndDate    string `json:"applicationEndDate,omitempty"`
	Provenance            string `json:"provenance"`
	Active                bool   `json:"active"`
}

// ToResponse converts an Offer to its public JSON shape.
func ToResponse(o Offer) OfferResponse {
	resp := OfferResponse{
		ID:                    o.ID,
		Name:                  o.Name,
		Region:                o.Region,
		Address:               o.Address,
		HousingCategory:       string(o.HousingCategory),
		MinAge:                o.MinAge,
		MaxAge:                o.MaxAge,
		MinIncome:             o.MinIncome,
		MaxIncome:             o.MaxIncome,
		MinHouseholdMembers:   o.MinHouseholdMembers,
		MaxHouseholdMembers:   o.MaxHouseholdMembers,
		MaxHousingOwned:       o.MaxHousingOwned,
		SpecialQualifications: o.SpecialQualifications,
		PreferenceCategories:  o.PreferenceCategories,
		MinPrice:              o.MinPrice,
		MaxPrice:              o.MaxPrice,
		Provenance:            string(o.Provenance),
		Active:                o.Active,
	}
	if o.ApplicationStartDate != nil {
		resp.ApplicationStartDate = o.ApplicationStartDate.Format(time.DateOnly)
	}
	if o.ApplicationEndDate != nil {
		resp.ApplicationEndDate = o.ApplicationEndDate.Format(time.DateOnly)
	}
	return resp
}

// FilterFromQuery reads listing filters from request query parameters.
func FilterFromQuery(c *gin.Context) SearchFilter {
	filter := SearchFilter{
		Region: c.Query("region"),
		Limit:  20,
	}
	if raw := c.Query("category"); raw != "" {
		filter.Category = HousingCategory(raw)
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			filter.Offset = n
		}
	}
	return filter
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), FilterFromQuery(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list offers", nil)
		return
	}

	out := make([]OfferResponse, 0, len(items))
	for _, offer := range items {
		out = append(out, ToResponse(offer))
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": out})
}

func (h *Handler) get(c *gin.Context) {
	offer, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "offer not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch offer", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, ToResponse(offer))
}
