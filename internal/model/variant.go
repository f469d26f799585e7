package model

// Column is a zero-based cell offset within a listing row.
// NoColumn marks a field the variant does not carry.
type Column int

// NoColumn marks a field that is absent from a variant.
const NoColumn Column = -1

// Present reports whether the column exists in the variant.
func (c Column) Present() bool {
	return c >= 0
}

// Columns holds the cell offset of every extracted field.
// Offset 0 is the hidden control column the listing renders in front of the code.
type Columns struct {
	Code            Column
	University      Column
	Program         Column
	City            Column
	UniversityType  Column
	ScholarshipType Column
	EducationType   Column
	TotalQuota      Column
	QuotaStatus     Column
	FilledQuota     Column
	MaxRank         Column
	MinScore        Column
}

// Variant describes one of the two table layouts used by the listing.
// Everything that differs between the layouts lives here so extraction code
// never branches on the score type itself.
type Variant struct {
	// Name identifies the variant in logs.
	Name string

	// Columns maps fields to cell offsets.
	Columns Columns

	// MinColumns is the number of cells a row needs to be parsed at all.
	MinColumns int

	// SlotColors lists the color keys of the admission categories in slot order.
	// The length is the number of quota slots.
	SlotColors []string

	// AttributeColor is the color of the span carrying qualifier text.
	AttributeColor string

	// AttributeColorFold makes the attribute color match case-insensitive.
	AttributeColorFold bool

	// ProgramLinked means the program name sits in a link inside the emphasized element.
	ProgramLinked bool
}

// Slots returns the number of quota slots of the variant.
func (v Variant) Slots() int {
	return len(v.SlotColors)
}

// GeneralVariant is the detailed layout used by the say, ea, soz and dil listings.
var GeneralVariant = Variant{
	Name: "general",
	Columns: Columns{
		Code:            1,
		University:      2,
		Program:         3,
		City:            4,
		UniversityType:  5,
		ScholarshipType: 6,
		EducationType:   7,
		TotalQuota:      8,
		QuotaStatus:     9,
		FilledQuota:     10,
		MaxRank:         11,
		MinScore:        12,
	},
	MinColumns:     13,
	SlotColors:     []string{"red", "purple", "blue", "green"},
	AttributeColor: "#CC0000",
	ProgramLinked:  true,
}

// ReducedVariant is the layout of the tyt listing. It has no quota status
// column and reports only two admission categories.
var ReducedVariant = Variant{
	Name: "reduced",
	Columns: Columns{
		Code:            1,
		University:      2,
		Program:         3,
		City:            4,
		UniversityType:  5,
		ScholarshipType: 6,
		EducationType:   7,
		TotalQuota:      8,
		QuotaStatus:     NoColumn,
		FilledQuota:     9,
		MinScore:        10,
		MaxRank:         11,
	},
	MinColumns:         12,
	SlotColors:         []string{"red", "blue"},
	AttributeColor:     "#cc0000",
	AttributeColorFold: true,
}
