package eligibility

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"zipduck-backend/internal/offers"
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

// RegisterRoutes attaches eligibility routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/eligibility/offers", h.rankOffers)
	rg.GET("/offers/:id/eligibility", h.evaluateOffer)
}

type breakdownResponse struct {
	Age          bool `json:"age"`
	Income       bool `json:"income"`
	Household    bool `json:"household"`
	OwnedHousing bool `json:"ownedHousing"`
	Overall      bool `json:"overall"`
	Score        int  `json:"score"`
}

type scoreDetailResponse struct {
	Eligible     bool   `json:"eligible"`
	Overall      int    `json:"overall"`
	Age          int    `json:"age"`
	Income       int    `json:"income"`
	Household    int    `json:"household"`
	OwnedHousing int    `json:"ownedHousing"`
	Location     int    `json:"location"`
	Reason       string `json:"reason"`
}

type rankedOfferResponse struct {
	Offer       offers.OfferResponse `json:"offer"`
	Eligibility breakdownResponse    `json:"eligibility"`
}

func toBreakdownResponse(b Breakdown) breakdownResponse {
	return breakdownResponse{
		Age:          b.Age,
		Income:       b.Income,
		Household:    b.Household,
		OwnedHousing: b.OwnedHousing,
		Overall:      b.Overall,
		Score:        b.Score,
	}
}

func toScoreDetailResponse(d ScoreDetail) scoreDetailResponse {
	return scoreDetailResponse{
		Eligible:     d.Eligible,
		Overall:      d.Overall,
		Age:          d.Age,
		Income:       d.Income,
		Household:    d.Household,
		OwnedHousing: d.OwnedHousing,
		Location:     d.Location,
		Reason:       d.Reason,
	}
}

func (h *Handler) rankOffers(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "X-User-Id header is required", nil)
		return
	}

	eligibleOnly := c.Query("eligibleOnly") == "true"
	ranked, err := h.Svc.RankOffers(c.Request.Context(), userID, offers.FilterFromQuery(c), eligibleOnly)
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileRequired):
			respond.Error(c, http.StatusBadRequest, "profile_required", "create a profile before evaluating offers", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to evaluate offers", nil)
		}
		return
	}

	out := make([]rankedOfferResponse, 0, len(ranked))
	for _, item := range ranked {
		out = append(out, rankedOfferResponse{
			Offer:       offers.ToResponse(item.Offer),
			Eligibility: toBreakdownResponse(item.Breakdown),
		})
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": out})
}

func (h *Handler) evaluateOffer(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "X-User-Id header is required", nil)
		return
	}

	breakdown, detail, err := h.Svc.EvaluateOffer(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileRequired):
			respond.Error(c, http.StatusBadRequest, "profile_required", "create a profile before evaluating offers", nil)
		case errors.Is(err, offers.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "offer not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to evaluate offer", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"eligibility": toBreakdownResponse(breakdown),
		"detail":      toScoreDetailResponse(detail),
	})
}
