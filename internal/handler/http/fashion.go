package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/httputil"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/pagination"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/validator"
)

// FashionService is the subset of service.FashionService used by the handler.
type FashionService interface {
	ListMaterials(ctx context.Context, page pagination.Params, deleted bool) ([]domain.Material, int, error)
	CreateMaterial(ctx context.Context, name string) (*domain.Material, error)
	GetMaterial(ctx context.Context, id string) (*domain.Material, error)
	DeleteMaterial(ctx context.Context, id string) error
	RestoreMaterial(ctx context.Context, id string) (*domain.Material, error)
	ListColors(ctx context.Context, materialID string, page pagination.Params, deleted bool) ([]domain.Color, int, error)
	CreateColor(ctx context.Context, materialID, name, hexCode string) (*domain.Color, error)
	DeleteColor(ctx context.Context, materialID, colorID string) error
}

// FashionHandler handles HTTP requests for materials and colors.
type FashionHandler struct {
	service FashionService
	logger  *slog.Logger
}

// NewFashionHandler creates a new fashion HTTP handler.
func NewFashionHandler(svc FashionService, logger *slog.Logger) *FashionHandler {
	return &FashionHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateMaterialRequest is the request body for creating a material.
type CreateMaterialRequest struct {
	Name string `json:"name" validate:"notblank"`
}

// CreateColorRequest is the request body for creating a color.
type CreateColorRequest struct {
	Name    string `json:"name" validate:"notblank"`
	HexCode string `json:"hex_code" validate:"required,len=7,hexcolor6"`
}

// --- Response DTOs ---

type materialListResponse struct {
	Materials []domain.Material `json:"materials"`
	pagination.Meta
}

type colorListResponse struct {
	Colors []domain.Color `json:"colors"`
	pagination.Meta
	PageSize int `json:"page_size"`
}

type materialResponse struct {
	Material *domain.Material `json:"material"`
}

type colorCreatedResponse struct {
	Message string        `json:"message"`
	Color   *domain.Color `json:"color"`
}

// --- Handlers ---

// ListMaterials handles GET /admin/fashion
func (h *FashionHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidQuery, err)
		return
	}

	materials, count, err := h.service.ListMaterials(r.Context(), q.Page, q.Deleted)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, materialListResponse{
		Materials: materials,
		Meta:      pagination.NewMeta(count, q.Page),
	})
}

// CreateMaterial handles POST /admin/fashion
func (h *FashionHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req CreateMaterialRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidBody, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidBody, err)
		return
	}

	material, err := h.service.CreateMaterial(r.Context(), req.Name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, material)
}

// GetMaterial handles GET /admin/fashion/{id}
func (h *FashionHandler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidParams, err)
		return
	}

	material, err := h.service.GetMaterial(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, materialResponse{Material: material})
}

// DeleteMaterial handles DELETE /admin/fashion/{id}
func (h *FashionHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidParams, err)
		return
	}

	if err := h.service.DeleteMaterial(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, deleteResponse{ID: id, Object: "material", Deleted: true})
}

// RestoreMaterial handles POST /admin/fashion/{id}/restore
func (h *FashionHandler) RestoreMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidParams, err)
		return
	}

	material, err := h.service.RestoreMaterial(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, materialResponse{Material: material})
}

// ListColors handles GET /admin/fashion/{id}/colors
func (h *FashionHandler) ListColors(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidParams, err)
		return
	}
	q, err := parseListQuery(r)
	if err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidParams, err)
		return
	}

	colors, count, err := h.service.ListColors(r.Context(), id, q.Page, q.Deleted)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, colorListResponse{
		Colors:   colors,
		Meta:     pagination.NewMeta(count, q.Page),
		PageSize: q.Page.PerPage,
	})
}

// CreateColor handles POST /admin/fashion/{id}/colors
func (h *FashionHandler) CreateColor(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidData, err)
		return
	}

	var req CreateColorRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidData, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidData, err)
		return
	}

	color, err := h.service.CreateColor(r.Context(), id, req.Name, req.HexCode)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, colorCreatedResponse{
		Message: "Color created successfully",
		Color:   color,
	})
}

// DeleteColor handles DELETE /admin/fashion/{id}/colors/{colorId}
func (h *FashionHandler) DeleteColor(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidParams, err)
		return
	}
	colorID, err := requireParam(chi.URLParam(r, "colorId"), "colorId")
	if err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidParams, err)
		return
	}

	if err := h.service.DeleteColor(r.Context(), id, colorID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, deleteResponse{ID: colorID, Object: "color", Deleted: true})
}
