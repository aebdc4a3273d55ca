package counter

// Describes basic types and constants that are used in the counter.

// A Lit is a signed DIMACS literal: positive values denote a variable,
// negative values its negation. Variable indices start at 1.
type Lit int64

// Var returns the variable of l.
func (l Lit) Var() int64 {
	if l < 0 {
		return int64(-l)
	}
	return int64(l)
}

// IsPositive is true iff l is > 0.
func (l Lit) IsPositive() bool {
	return l > 0
}

// A Clause is a disjunction of literals, kept sorted by variable.
type Clause []Lit

// A Formula is a CNF formula together with an optional weight table.
// Weights has 2*(NbVars+1) entries when present: entry 2*v is the weight of
// the positive literal of variable v, entry 2*v+1 the weight of its negation.
// A nil Weights slice means unweighted counting (all weights are 1).
type Formula struct {
	NbVars  int
	Clauses []Clause
	Weights []float64
}

// Weighted reports whether the formula carries a weight table.
func (f *Formula) Weighted() bool {
	return f.Weights != nil
}

// DataStructure selects the layout used for solution tables.
type DataStructure byte

const (
	// ArrayStructure stores one double per assignment in a dense vector.
	ArrayStructure = DataStructure(iota)
	// TreeStructure stores only positive counts, in a flat bit-trie.
	TreeStructure
)

func (d DataStructure) String() string {
	switch d {
	case ArrayStructure:
		return "array"
	case TreeStructure:
		return "tree"
	default:
		panic("invalid data structure")
	}
}

// SolveMode is a set of flags altering which kernel variant is run.
type SolveMode uint32

const (
	// ModeDefault tracks the maximum binary exponent of every table so the
	// next level can renormalise.
	ModeDefault = SolveMode(0)
	// ModeNoExp skips exponent bookkeeping. Only safe when all intermediate
	// magnitudes provably fit in a double.
	ModeNoExp = SolveMode(1 << 0)
)

// NoExp reports whether exponent bookkeeping is disabled.
func (m SolveMode) NoExp() bool {
	return m&ModeNoExp != 0
}

// Stats collects counters about a solve run.
type Stats struct {
	NumJoin            int64 // number of join passes
	NumIntroduceForget int64 // number of introduce-forget passes
	MaxTableSize       int64 // largest number of table entries held by one bag
}
