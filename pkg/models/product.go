package models

import "time"

// MetalType identifies the base material of a product.
type MetalType string

const (
	MetalBrass      MetalType = "Brass"
	MetalCopper     MetalType = "Copper"
	MetalPanchdhatu MetalType = "Panchdhatu"
	MetalCustom     MetalType = "Custom"
)

// MetalTypes lists every metal type in display order.
var MetalTypes = []MetalType{MetalBrass, MetalCopper, MetalPanchdhatu, MetalCustom}

// Valid reports whether m is a member of the closed metal enumeration.
func (m MetalType) Valid() bool {
	for _, v := range MetalTypes {
		if m == v {
			return true
		}
	}
	return false
}

// FinishType identifies the surface finish of a product.
type FinishType string

const (
	FinishAntique    FinishType = "Antique"
	FinishGlossy     FinishType = "Glossy"
	FinishMatte      FinishType = "Matte"
	FinishGoldPlated FinishType = "Gold-plated"
)

// FinishTypes lists every finish type in display order.
var FinishTypes = []FinishType{FinishAntique, FinishGlossy, FinishMatte, FinishGoldPlated}

// Valid reports whether f is a member of the closed finish enumeration.
func (f FinishType) Valid() bool {
	for _, v := range FinishTypes {
		if f == v {
			return true
		}
	}
	return false
}

// CategoryType classifies a product by deity or item kind.
type CategoryType string

const (
	CategoryGanesh      CategoryType = "Ganesh"
	CategoryLaxmi       CategoryType = "Laxmi"
	CategoryHanuman     CategoryType = "Hanuman"
	CategoryBuddha      CategoryType = "Buddha"
	CategoryYantra      CategoryType = "Yantra"
	CategoryDiyas       CategoryType = "Diyas"
	CategoryBrackets    CategoryType = "Brackets"
	CategoryTempleItems CategoryType = "Temple Items"
)

// CategoryTypes lists every category in display order.
var CategoryTypes = []CategoryType{
	CategoryGanesh, CategoryLaxmi, CategoryHanuman, CategoryBuddha,
	CategoryYantra, CategoryDiyas, CategoryBrackets, CategoryTempleItems,
}

// Valid reports whether c is a member of the closed category enumeration.
func (c CategoryType) Valid() bool {
	for _, v := range CategoryTypes {
		if c == v {
			return true
		}
	}
	return false
}

// Product is a catalogue item. Records are owned by the persistence layer;
// the filtering code treats them as immutable values.
type Product struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Metal       MetalType    `json:"metal"`
	Category    CategoryType `json:"category"`
	Price       float64      `json:"price"`
	WeightKg    float64      `json:"weight_kg"`
	HeightInch  float64      `json:"height_inch"`
	FinishType  FinishType   `json:"finish_type"`
	Stock       int          `json:"stock"`
	Images      []string     `json:"images,omitempty"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
