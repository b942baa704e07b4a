package cell

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind is the closed set of shapes a spreadsheet cell can hold.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindBool
)
