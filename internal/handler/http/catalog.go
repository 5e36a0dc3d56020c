package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shubhamchoudhary-2003/fullstack/internal/domain"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/httputil"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/validator"
)

// CatalogService is the subset of service.CatalogService used by the handler.
type CatalogService interface {
	GetCollectionDetails(ctx context.Context, id string) (domain.CollectionDetails, error)
	UpdateCollectionMetadata(ctx context.Context, id string, fields domain.CollectionFields) (*domain.ProductCollection, error)
	GetProductTypeDetails(ctx context.Context, id string) (domain.ProductTypeDetails, error)
	UpdateProductTypeMetadata(ctx context.Context, id string, fields domain.ProductTypeFields) (*domain.ProductType, error)
}

// CatalogHandler serves the collection and product type detail routes.
type CatalogHandler struct {
	service CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog details HTTP handler.
func NewCatalogHandler(svc CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

type collectionUpdatedResponse struct {
	Message    string                    `json:"message"`
	Collection *domain.ProductCollection `json:"collection"`
}

type productTypeUpdatedResponse struct {
	Message     string              `json:"message"`
	ProductType *domain.ProductType `json:"product_type"`
}

// GetCollectionDetails handles GET /admin/custom/collections/{collectionId}/details
func (h *CatalogHandler) GetCollectionDetails(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(chi.URLParam(r, "collectionId"), "collectionId")
	if err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidParams, err)
		return
	}

	details, err := h.service.GetCollectionDetails(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, details)
}

// UpdateCollectionDetails handles POST /admin/custom/collections/{collectionId}/details
func (h *CatalogHandler) UpdateCollectionDetails(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(chi.URLParam(r, "collectionId"), "collectionId")
	if err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidParams, err)
		return
	}

	var fields domain.CollectionFields
	if err := decodeAndValidate(r, &fields); err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidBody, err)
		return
	}

	collection, err := h.service.UpdateCollectionMetadata(r.Context(), id, fields)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, collectionUpdatedResponse{
		Message:    "Collection metadata updated successfully",
		Collection: collection,
	})
}

// GetProductTypeDetails handles GET /admin/custom/product-types/{productTypeId}/details
func (h *CatalogHandler) GetProductTypeDetails(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(chi.URLParam(r, "productTypeId"), "productTypeId")
	if err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidParams, err)
		return
	}

	details, err := h.service.GetProductTypeDetails(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, details)
}

// UpdateProductTypeDetails handles POST /admin/custom/product-types/{productTypeId}/details
func (h *CatalogHandler) UpdateProductTypeDetails(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(chi.URLParam(r, "productTypeId"), "productTypeId")
	if err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidParams, err)
		return
	}

	var fields domain.ProductTypeFields
	if err := decodeAndValidate(r, &fields); err != nil {
		httputil.WriteValidationError(w, r, httputil.MsgInvalidBody, err)
		return
	}

	productType, err := h.service.UpdateProductTypeMetadata(r.Context(), id, fields)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productTypeUpdatedResponse{
		Message:     "Product type metadata updated successfully",
		ProductType: productType,
	})
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := httputil.DecodeBody(r, dst); err != nil {
		return err
	}
	return validator.Validate(dst)
}
