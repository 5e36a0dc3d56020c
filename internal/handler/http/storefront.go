package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
	"github.com/shubhamchoudhary-2003/fullstack/internal/service"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/httputil"
)

// StorefrontService is the subset of service.StorefrontService used by the handler.
type StorefrontService interface {
	ListRegions(ctx context.Context) ([]domain.Region, error)
	Header(ctx context.Context, path string) (domain.HeaderView, error)
	SelectRegion(ctx context.Context, countryCode, currentPath string) (*service.RegionSelection, error)
}

// StorefrontHandler serves the public storefront routes.
type StorefrontHandler struct {
	service StorefrontService
	logger  *slog.Logger
}

// NewStorefrontHandler creates a new storefront HTTP handler.
func NewStorefrontHandler(svc StorefrontService, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		service: svc,
		logger:  logger,
	}
}

// SelectRegionRequest is the request body of the country selector.
type SelectRegionRequest struct {
	CountryCode string `json:"country_code" validate:"required,len=2,alpha"`
	CurrentPath string `json:"current_path" validate:"max=2048"`
}

type regionListResponse struct {
	Regions []domain.Region `json:"regions"`
}

// ListRegions handles GET /store/regions
func (h *StorefrontHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.ListRegions(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, regionListResponse{Regions: regions})
}

// Header handles GET /store/header?path=
func (h *StorefrontHandler) Header(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Header(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// SelectRegion handles POST /store/region
func (h *StorefrontHandler) SelectRegion(w http.ResponseWriter, r *http.Request) {
	var req SelectRegionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidBody, err)
		return
	}

	selection, err := h.service.SelectRegion(r.Context(), req.CountryCode, req.CurrentPath)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, selection)
}
