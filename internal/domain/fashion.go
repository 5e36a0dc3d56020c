package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID prefixes for generated identifiers.
const (
	MaterialIDPrefix    = "mat"
	ColorIDPrefix       = "col"
	CollectionIDPrefix  = "pcol"
	ProductTypeIDPrefix = "ptyp"
	RegionIDPrefix      = "reg"
)

// Material is a fabric or base material offered by the shop. Each material
// owns zero or more colors.
type Material struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Colors    []Color    `json:"colors"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// Color is a named color variant of a material.
type Color struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	HexCode    string     `json:"hex_code"`
	MaterialID string     `json:"material_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at"`
}

// NewMaterial returns a material ready to be persisted.
func NewMaterial(name string, now time.Time) *Material {
	return &Material{
		ID:        NewID(MaterialIDPrefix),
		Name:      strings.TrimSpace(name),
		Colors:    []Color{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewColor returns a color of the given material ready to be persisted. The
// hex code is normalized to upper case.
func NewColor(materialID, name, hexCode string, now time.Time) *Color {
	return &Color{
		ID:         NewID(ColorIDPrefix),
		Name:       strings.TrimSpace(name),
		HexCode:    strings.ToUpper(hexCode),
		MaterialID: materialID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsDeleted reports whether the material has been soft-deleted.
func (m *Material) IsDeleted() bool {
	return m.DeletedAt != nil
}

// IsDeleted reports whether the color has been soft-deleted.
func (c *Color) IsDeleted() bool {
	return c.DeletedAt != nil
}

// NewID returns a prefixed identifier such as "mat_3f2c...".
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
