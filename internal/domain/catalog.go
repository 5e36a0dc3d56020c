package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shubhamchoudhary-2003/fullstack/pkg/validator"
)

// ProductCollection groups products for merchandising. Page content for the
// storefront lives in Metadata.
type ProductCollection struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Handle    string         `json:"handle"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt *time.Time     `json:"deleted_at"`
}

// ProductType classifies products (for example "Sofa" or "Armchair").
type ProductType struct {
	ID        string         `json:"id"`
	Value     string         `json:"value"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt *time.Time     `json:"deleted_at"`
}

// ImageRef points to an uploaded file.
type ImageRef struct {
	ID  string `json:"id"`
	URL string `json:"url" validate:"url"`
}

// ProductTypeImage is the image attached to a product type. Unlike collection
// images its id must not be empty.
type ProductTypeImage struct {
	ID  string `json:"id" validate:"min=1"`
	URL string `json:"url" validate:"url"`
}

// CollectionFields is the typed view of the collection metadata keys the
// storefront reads. Nil fields are absent from the metadata.
type CollectionFields struct {
	Image                 *ImageRef `json:"image,omitempty" validate:"omitnil"`
	Description           *string   `json:"description,omitempty"`
	CollectionPageImage   *ImageRef `json:"collection_page_image,omitempty" validate:"omitnil"`
	CollectionPageHeading *string   `json:"collection_page_heading,omitempty"`
	CollectionPageContent *string   `json:"collection_page_content,omitempty"`
	ProductPageHeading    *string   `json:"product_page_heading,omitempty"`
	ProductPageImage      *ImageRef `json:"product_page_image,omitempty" validate:"omitnil"`
	ProductPageWideImage  *ImageRef `json:"product_page_wide_image,omitempty" validate:"omitnil"`
	ProductPageCTAImage   *ImageRef `json:"product_page_cta_image,omitempty" validate:"omitnil"`
	ProductPageCTAHeading *string   `json:"product_page_cta_heading,omitempty"`
	ProductPageCTALink    *string   `json:"product_page_cta_link,omitempty"`
}

// CollectionDetails is the response shape of the collection details endpoint:
// missing images are null and missing strings are empty.
type CollectionDetails struct {
	Image                 *ImageRef `json:"image"`
	Description           string    `json:"description"`
	CollectionPageImage   *ImageRef `json:"collection_page_image"`
	CollectionPageHeading string    `json:"collection_page_heading"`
	CollectionPageContent string    `json:"collection_page_content"`
	ProductPageHeading    string    `json:"product_page_heading"`
	ProductPageImage      *ImageRef `json:"product_page_image"`
	ProductPageWideImage  *ImageRef `json:"product_page_wide_image"`
	ProductPageCTAImage   *ImageRef `json:"product_page_cta_image"`
	ProductPageCTAHeading string    `json:"product_page_cta_heading"`
	ProductPageCTALink    string    `json:"product_page_cta_link"`
}

// Details fills the defaults for absent fields.
func (f CollectionFields) Details() CollectionDetails {
	return CollectionDetails{
		Image:                 f.Image,
		Description:           deref(f.Description),
		CollectionPageImage:   f.CollectionPageImage,
		CollectionPageHeading: deref(f.CollectionPageHeading),
		CollectionPageContent: deref(f.CollectionPageContent),
		ProductPageHeading:    deref(f.ProductPageHeading),
		ProductPageImage:      f.ProductPageImage,
		ProductPageWideImage:  f.ProductPageWideImage,
		ProductPageCTAImage:   f.ProductPageCTAImage,
		ProductPageCTAHeading: deref(f.ProductPageCTAHeading),
		ProductPageCTALink:    deref(f.ProductPageCTALink),
	}
}

// ProductTypeFields is the typed view of the product type metadata.
type ProductTypeFields struct {
	Image *ProductTypeImage `json:"image,omitempty" validate:"omitnil"`
}

// ProductTypeDetails is the response shape of the product type details endpoint.
type ProductTypeDetails struct {
	Image   *ProductTypeImage `json:"image"`
	Success bool              `json:"success"`
}

// ParseCollectionFields reads the typed fields out of stored metadata. Unknown
// keys are ignored. Any type or format mismatch fails the whole parse.
func ParseCollectionFields(metadata map[string]any) (CollectionFields, error) {
	var f CollectionFields
	if err := parseMetadata(metadata, &f); err != nil {
		return CollectionFields{}, err
	}
	return f, nil
}

// ParseProductTypeFields reads the typed fields out of stored metadata.
func ParseProductTypeFields(metadata map[string]any) (ProductTypeFields, error) {
	var f ProductTypeFields
	if err := parseMetadata(metadata, &f); err != nil {
		return ProductTypeFields{}, err
	}
	return f, nil
}

// AsMetadata returns the set fields as a metadata patch.
func AsMetadata(fields any) (map[string]any, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata fields: %w", err)
	}
	patch := make(map[string]any)
	if err := json.Unmarshal(raw, &patch); err != nil {
		return nil, fmt.Errorf("unmarshal metadata fields: %w", err)
	}
	return patch, nil
}

func parseMetadata(metadata map[string]any, dst any) error {
	if len(metadata) == 0 {
		return nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}
	return validator.Validate(dst)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
