package counter

import (
	"sync/atomic"
)

// A posLit is a clause literal resolved to a bit position within an
// assignment id, so kernels test satisfaction with a shift and a mask.
type posLit struct {
	pos      int
	positive bool
}

// An ifTask holds the precomputed inputs of one introduce-forget launch. The
// launch enumerates the assignments of the introduce bag (the union of the
// node's variables and the child's variables), checks the clauses living in
// that bag, pulls the matching child counts, and projects the sum down onto
// the node's own variables.
//
// Launch contract: each output id is handled by exactly one lane, so the
// read-modify-write on out needs no locking. The child fragment may cover
// only part of the child's id space; ids outside it contribute nothing and
// are picked up by the launches for the remaining fragments.
type ifTask struct {
	out   Solution
	child Solution // nil at leaf nodes

	uni           []int64 // introduce bag, sorted
	varPos        []int   // position in uni of each output variable
	childPos      []int   // position in uni of each child variable
	otherPos      []int   // positions in uni forgotten by the output bag
	introducedPos []int   // positions in uni absent from the child bag

	clauses [][]posLit
	weights []float64

	value    float64 // correction factor of the child table
	exponent *int64
	numSols  *int64
	mode     SolveMode
}

// newIFTask resolves the variable geometry of an introduce-forget step. vars
// and childVars are the sorted variable lists of the node and its child (the
// child list is empty at leaves). Clauses whose variables all lie inside the
// introduce bag are compiled to positional form; the others are checked
// elsewhere in the decomposition.
func newIFTask(out, child Solution, vars, childVars []int64, f *Formula, value float64, exponent, numSols *int64, mode SolveMode) *ifTask {
	uni := mergeVars(vars, childVars)
	t := &ifTask{
		out:           out,
		child:         child,
		uni:           uni,
		varPos:        positionsOf(vars, uni),
		childPos:      positionsOf(childVars, uni),
		otherPos:      complementPositions(vars, uni),
		introducedPos: complementPositions(childVars, uni),
		value:         value,
		exponent:      exponent,
		numSols:       numSols,
		mode:          mode,
	}
	if f.Weighted() {
		t.weights = f.Weights
	}
	for _, cl := range f.Clauses {
		pls := make([]posLit, 0, len(cl))
		ok := true
		j := 0
		for _, l := range cl {
			v := l.Var()
			for j < len(uni) && uni[j] < v {
				j++
			}
			if j == len(uni) || uni[j] != v {
				ok = false
				break
			}
			pls = append(pls, posLit{pos: j, positive: l.IsPositive()})
		}
		if ok {
			t.clauses = append(t.clauses, pls)
		}
	}
	return t
}

// run computes the count of one output assignment id: it lifts id onto the
// introduce bag, sums the counts of all extensions over the forgotten
// variables, rescales by the child's correction factor and accumulates into
// the output table.
func (t *ifTask) run(id int64) {
	template := int64(0)
	for i, p := range t.varPos {
		template |= ((id >> uint(i)) & 1) << uint(p)
	}
	combinations := int64(1) << uint(len(t.otherPos))
	tmp := 0.0
	for c := int64(0); c < combinations; c++ {
		other := template
		for j, p := range t.otherPos {
			other |= ((c >> uint(j)) & 1) << uint(p)
		}
		tmp += t.solveIntroduce(other)
	}
	if tmp <= 0 {
		return
	}
	old := t.out.Count(id)
	nv := tmp/t.value + old
	t.out.SetCount(id, nv)
	if old == 0 {
		atomic.AddInt64(t.numSols, 1)
	}
	if !t.mode.NoExp() {
		recordExponent(t.exponent, nv)
	}
}

// solveIntroduce evaluates one assignment of the introduce bag: zero if a
// clause of the bag is falsified or the child assignment lies outside the
// current fragment, otherwise the child count times the weights of the
// introduced literals.
func (t *ifTask) solveIntroduce(id int64) float64 {
	for _, cl := range t.clauses {
		sat := false
		for _, l := range cl {
			if (id>>uint(l.pos))&1 == 1 == l.positive {
				sat = true
				break
			}
		}
		if !sat {
			return 0
		}
	}
	counts := 1.0
	if t.child != nil {
		childID := int64(0)
		for j, p := range t.childPos {
			childID |= ((id >> uint(p)) & 1) << uint(j)
		}
		if childID < t.child.MinID() || childID >= t.child.MaxID() {
			return 0
		}
		counts = t.child.Count(childID)
		if counts <= 0 {
			return 0
		}
	}
	if t.weights != nil {
		for _, p := range t.introducedPos {
			v := t.uni[p]
			if (id>>uint(p))&1 == 1 {
				counts *= t.weights[2*v]
			} else {
				counts *= t.weights[2*v+1]
			}
		}
	}
	return counts
}
