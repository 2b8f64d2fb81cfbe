package model

// Source identifies which signal bundle supplied a resolved field.
type Source string

const (
	SourceOCR     Source = "ocr"
	SourceVision  Source = "vision"
	SourceCatalog Source = "catalog"
)

// Identity field keys used in FieldConfidence and Sources maps.
const (
	FieldPlayer     = "player"
	FieldYear       = "year"
	FieldBrand      = "brand"
	FieldSetName    = "setName"
	FieldSubset     = "subset"
	FieldSport      = "sport"
	FieldLeague     = "league"
	FieldCardNumber = "cardNumber"
	FieldRookie     = "rookie"
	FieldParallel   = "parallel"
)
