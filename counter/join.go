package counter

import (
	"sync/atomic"
)

// A joinTask holds the inputs of one join launch. The join bag's variables
// are the union of the two children's, so each output assignment projects to
// exactly one assignment per child; the output count is the product of the
// two child counts, rescaled by both correction factors and divided by the
// weights counted twice.
//
// Child tables arrive as fragments. Launch b of a join carries fragment b of
// each child (or nil once one side runs out of fragments), so a given output
// id may receive its two factors in different launches. The output table is
// initialised to -1, the untouched sentinel: the first launch to touch an id
// stores its factor with the rescaling applied, later launches multiply the
// stored value by their raw factor.
type joinTask struct {
	out    Solution
	f1, f2 Solution // child fragments, either may be nil

	pos1, pos2 []int // position in the join bag of each child variable
	sharedVars []int64
	sharedPos  []int // positions in the join bag of the shared variables

	weights  []float64
	value    float64 // combined correction factor of both children
	exponent *int64
	numSols  *int64
	mode     SolveMode
}

// newJoinTask resolves the variable geometry of a join of two children with
// sorted variable lists vars1 and vars2. The output bag is their union.
func newJoinTask(out, f1, f2 Solution, vars1, vars2 []int64, f *Formula, value float64, exponent, numSols *int64, mode SolveMode) *joinTask {
	vars := mergeVars(vars1, vars2)
	shared := intersectVars(vars1, vars2)
	t := &joinTask{
		out:        out,
		f1:         f1,
		f2:         f2,
		pos1:       positionsOf(vars1, vars),
		pos2:       positionsOf(vars2, vars),
		sharedVars: shared,
		sharedPos:  positionsOf(shared, vars),
		value:      value,
		exponent:   exponent,
		numSols:    numSols,
		mode:       mode,
	}
	if f.Weighted() {
		t.weights = f.Weights
	}
	return t
}

// factor projects id onto a child fragment and returns that child's count,
// clamped at zero. ok is false when the fragment is nil or does not cover the
// projected id, in which case the factor belongs to another launch.
func factor(frag Solution, id int64, pos []int) (v float64, ok bool) {
	if frag == nil {
		return 0, false
	}
	childID := int64(0)
	for j, p := range pos {
		childID |= ((id >> uint(p)) & 1) << uint(j)
	}
	if childID < frag.MinID() || childID >= frag.MaxID() {
		return 0, false
	}
	v = frag.Count(childID)
	if v < 0 {
		v = 0
	}
	return v, true
}

// run folds this launch's factors for one output assignment id into the
// output table and keeps the satisfying-assignment counter in step with the
// sign transitions of the stored value.
func (t *joinTask) run(id int64) {
	tmp := 1.0
	touched := false
	if v, ok := factor(t.f1, id, t.pos1); ok {
		tmp *= v
		touched = true
	}
	if v, ok := factor(t.f2, id, t.pos2); ok {
		tmp *= v
		touched = true
	}
	if !touched {
		return
	}
	old := t.out.Count(id)
	var nv float64
	if old < 0 {
		nv = tmp / t.value
		if t.weights != nil {
			nv /= t.sharedWeight(id)
		}
	} else {
		nv = old * tmp
	}
	t.out.SetCount(id, nv)
	if old < 0 && nv > 0 {
		atomic.AddInt64(t.numSols, 1)
	} else if old > 0 && nv == 0 {
		atomic.AddInt64(t.numSols, -1)
	}
	if !t.mode.NoExp() && nv > 0 {
		recordExponent(t.exponent, nv)
	}
}

// sharedWeight is the product of the literal weights of the variables present
// in both children's bags. Each child has already multiplied these weights in
// once, so the join divides one copy back out.
func (t *joinTask) sharedWeight(id int64) float64 {
	w := 1.0
	for i, p := range t.sharedPos {
		v := t.sharedVars[i]
		if (id>>uint(p))&1 == 1 {
			w *= t.weights[2*v]
		} else {
			w *= t.weights[2*v+1]
		}
	}
	return w
}
