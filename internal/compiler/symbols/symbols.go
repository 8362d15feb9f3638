package symbols

// Kind classifies what a declared name refers to.
type Kind string

const (
	KindVariable    Kind = "variable"
	KindParam       Kind = "param"
	KindStruct      Kind = "struct"
	KindEnum        Kind = "enum"
	KindEnumVariant Kind = "variant"
)

type SymbolInfo struct {
	Kind    Kind
	Mutable bool

	// Index is the parameter position for params and the ordinal for enum
	// variants; zero otherwise.
	Index int
}
