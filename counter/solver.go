package counter

import (
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/vroland/gpusat/decomp"
)

// ErrTreeCapacity is returned when a trie fragment keeps running out of
// nodes after repeated reallocation.
var ErrTreeCapacity = errors.New("tree table capacity exhausted")

// ErrBagTooLarge is returned when a bag's assignment space cannot be indexed
// within the configured limit.
var ErrBagTooLarge = errors.New("bag exceeds maximum width")

const (
	defaultMaxMemoryBuffer = int64(64) << 20
	defaultMaxBag          = 60
	maxTreeRetries         = 16

	// Below this decomposition width all intermediate counts fit in a
	// double, so the exponent bookkeeping can be skipped.
	noExpWidthLimit = 40
)

// A SolveConfig carries the tunables of a solve run.
type SolveConfig struct {
	// DataStructure selects the layout of introduce-forget tables. Join
	// tables are always dense.
	DataStructure DataStructure
	// Weighted enables weighted counting when the formula carries weights.
	Weighted bool
	// Trace enables per-bag progress logging at debug level.
	Trace bool
	// MaxBag caps the number of variables a bag may hold, 62 at most.
	// Defaults to 60.
	MaxBag int
	// MaxMemoryBuffer is the size in bytes of one table fragment. Bags whose
	// assignment space exceeds it are solved in chunks. Defaults to 64 MiB.
	MaxMemoryBuffer int64
}

// A Result is the outcome of a solve: the model count is Count * 2^Exponent.
type Result struct {
	Sat      bool
	Count    float64
	Exponent int64
}

// Value returns the model count as a double. It may overflow to +Inf when
// the exponent is large; Count and Exponent stay exact.
func (r *Result) Value() float64 {
	return math.Ldexp(r.Count, int(r.Exponent))
}

// A Solver runs the dynamic program over a tree decomposition of a formula.
// A Solver is not safe for concurrent use; the parallelism lives inside the
// kernel launches it issues.
type Solver struct {
	f     *Formula
	cfg   SolveConfig
	mode  SolveMode
	stats Stats
	isSat bool
}

// New returns a solver for f. The formula's weight table is only consulted
// when cfg.Weighted is set.
func New(f *Formula, cfg SolveConfig) *Solver {
	if cfg.MaxMemoryBuffer <= 0 {
		cfg.MaxMemoryBuffer = defaultMaxMemoryBuffer
	}
	if cfg.MaxBag <= 0 {
		cfg.MaxBag = defaultMaxBag
	}
	if cfg.MaxBag > 62 {
		cfg.MaxBag = 62
	}
	ff := *f
	if !cfg.Weighted {
		ff.Weights = nil
	}
	return &Solver{f: &ff, cfg: cfg}
}

// Stats returns the counters of the last solve.
func (s *Solver) Stats() Stats {
	return s.stats
}

// Solve walks the decomposition bottom-up and returns the model count of the
// formula.
func (s *Solver) Solve(root *decomp.Node) (*Result, error) {
	s.mode = ModeDefault
	if root.Width() < noExpWidthLimit {
		s.mode |= ModeNoExp
	}
	return s.solve(root)
}

func (s *Solver) solve(root *decomp.Node) (*Result, error) {
	s.isSat = true
	s.stats = Stats{}
	bs, err := s.solveNode(root)
	if err != nil {
		return nil, err
	}
	if !s.isSat {
		return &Result{Sat: false}, nil
	}
	count := 0.0
	for _, frag := range bs.fragments {
		for id := frag.MinID(); id < frag.MaxID(); id++ {
			if v := frag.Count(id); v > 0 {
				count += v
			}
		}
	}
	res := &Result{Sat: true, Count: count, Exponent: bs.correction}
	s.applyFreeVars(root, res)
	return res, nil
}

// applyFreeVars accounts for the variables that occur in no bag: each one
// doubles the unweighted count, or contributes the sum of its two literal
// weights.
func (s *Solver) applyFreeVars(root *decomp.Node, res *Result) {
	seen := make(map[int64]bool)
	collectVars(root, seen)
	for v := int64(1); v <= int64(s.f.NbVars); v++ {
		if seen[v] {
			continue
		}
		if s.f.Weighted() {
			res.Count *= s.f.Weights[2*v] + s.f.Weights[2*v+1]
		} else {
			res.Exponent++
		}
	}
}

func collectVars(n *decomp.Node, seen map[int64]bool) {
	for _, v := range n.Vars {
		seen[v] = true
	}
	for _, c := range n.Children {
		collectVars(c, seen)
	}
}

// A bagSolution is a solved bag: its table fragments, the number of
// assignments with positive count, the maximum exponent recorded during its
// launches, and the accumulated correction. The true count of an assignment
// is its stored count times 2^correction.
type bagSolution struct {
	vars       []int64
	fragments  []Solution
	numSols    int64
	exponent   int64
	correction int64
}

func (b *bagSolution) entries() int64 {
	var n int64
	for _, f := range b.fragments {
		n += f.Entries()
	}
	return n
}

// recordedExponent is the bag's exponent, or 0 when no launch wrote one.
func (b *bagSolution) recordedExponent() int64 {
	if b.exponent == exponentUninit {
		return 0
	}
	return b.exponent
}

// solveNode produces the solution of the subtree rooted at n: children
// first, joined pairwise when there are several, then one introduce-forget
// pass onto n's own variables. The satisfiability flag is cleared as soon as
// any bag finishes without a single satisfying assignment.
func (s *Solver) solveNode(n *decomp.Node) (*bagSolution, error) {
	var children []*bagSolution
	for _, c := range n.Children {
		cb, err := s.solveNode(c)
		if err != nil {
			return nil, err
		}
		if !s.isSat {
			return cb, nil
		}
		children = append(children, cb)
	}
	var cur *bagSolution
	if len(children) > 0 {
		cur = children[0]
		for _, next := range children[1:] {
			joined, err := s.solveJoin(cur, next)
			if err != nil {
				return nil, err
			}
			cur = joined
			if cur.numSols == 0 {
				s.isSat = false
				return cur, nil
			}
		}
	}
	bs, err := s.solveIF(n, cur)
	if err != nil {
		return nil, err
	}
	if bs.numSols == 0 {
		s.isSat = false
	}
	if s.cfg.Trace {
		log.WithFields(log.Fields{
			"bag":       n.ID,
			"vars":      len(n.Vars),
			"entries":   bs.entries(),
			"solutions": bs.numSols,
		}).Debug("bag solved")
	}
	return bs, nil
}

func (s *Solver) chunkLen() int64 {
	n := s.cfg.MaxMemoryBuffer / 8
	if n < 1 {
		n = 1
	}
	return n
}

func (s *Solver) recordTableSize(bs *bagSolution) {
	if n := bs.entries(); n > s.stats.MaxTableSize {
		s.stats.MaxTableSize = n
	}
}

// solveJoin multiplies two solved bags into a temporary bag over the union
// of their variables. The output is always dense; fragment b of each child
// feeds launch b, so an output assignment whose projections live in
// different fragments is folded together across launches.
func (s *Solver) solveJoin(left, right *bagSolution) (*bagSolution, error) {
	vars := mergeVars(left.vars, right.vars)
	if len(vars) > s.cfg.MaxBag {
		return nil, errors.Wrapf(ErrBagTooLarge, "join over %d variables, limit is %d", len(vars), s.cfg.MaxBag)
	}
	size := int64(1) << uint(len(vars))
	chunkLen := s.chunkLen()
	value := correctionValue(left.exponent) * correctionValue(right.exponent)
	bs := &bagSolution{
		vars:     vars,
		exponent: exponentUninit,
		correction: left.correction + left.recordedExponent() +
			right.correction + right.recordedExponent(),
	}
	launches := len(left.fragments)
	if len(right.fragments) > launches {
		launches = len(right.fragments)
	}
	for minID := int64(0); minID < size; minID += chunkLen {
		maxID := minID + chunkLen
		if maxID > size {
			maxID = size
		}
		frag := NewArraySolution(minID, maxID, -1)
		var numSols int64
		for b := 0; b < launches; b++ {
			var f1, f2 Solution
			if b < len(left.fragments) {
				f1 = left.fragments[b]
			}
			if b < len(right.fragments) {
				f2 = right.fragments[b]
			}
			t := newJoinTask(frag, f1, f2, left.vars, right.vars, s.f, value, &bs.exponent, &numSols, s.mode)
			launch(minID, maxID, t.run)
		}
		bs.numSols += numSols
		bs.fragments = append(bs.fragments, frag)
	}
	s.recordTableSize(bs)
	s.stats.NumJoin++
	return bs, nil
}

// solveIF runs the introduce-forget pass producing n's own table from the
// solution below it (nil at leaves). The bag's assignment space is chunked
// to the memory budget; each chunk accumulates one launch per child
// fragment.
func (s *Solver) solveIF(n *decomp.Node, child *bagSolution) (*bagSolution, error) {
	var (
		childVars  []int64
		value      = 1.0
		correction int64
		childFrags = []Solution{nil}
	)
	if child != nil {
		childVars = child.vars
		value = correctionValue(child.exponent)
		correction = child.correction + child.recordedExponent()
		childFrags = child.fragments
	}
	if uni := mergeVars(n.Vars, childVars); len(uni) > s.cfg.MaxBag {
		return nil, errors.Wrapf(ErrBagTooLarge, "bag %d spans %d variables, limit is %d", n.ID, len(uni), s.cfg.MaxBag)
	}
	size := int64(1) << uint(len(n.Vars))
	chunkLen := s.chunkLen()
	bs := &bagSolution{vars: n.Vars, exponent: exponentUninit, correction: correction}
	for minID := int64(0); minID < size; minID += chunkLen {
		maxID := minID + chunkLen
		if maxID > size {
			maxID = size
		}
		frag, numSols, err := s.runIFChunk(n, childVars, childFrags, minID, maxID, value, &bs.exponent)
		if err != nil {
			return nil, err
		}
		bs.numSols += numSols
		bs.fragments = append(bs.fragments, frag)
	}
	if s.cfg.DataStructure == TreeStructure && len(bs.fragments) > 1 {
		merged, err := s.mergeTreeFragments(n, bs.fragments)
		if err != nil {
			return nil, err
		}
		bs.fragments = []Solution{merged}
	}
	s.recordTableSize(bs)
	s.stats.NumIntroduceForget++
	return bs, nil
}

// runIFChunk fills one fragment of n's table. Trie fragments that overflow
// their allocation are thrown away and rebuilt with twice the capacity; the
// exponent may keep a stale maximum from a failed attempt, which the rerun
// can only raise.
func (s *Solver) runIFChunk(n *decomp.Node, childVars []int64, childFrags []Solution, minID, maxID int64, value float64, exponent *int64) (Solution, int64, error) {
	if s.cfg.DataStructure == ArrayStructure {
		frag := NewArraySolution(minID, maxID, 0)
		var numSols int64
		for _, cf := range childFrags {
			t := newIFTask(frag, cf, n.Vars, childVars, s.f, value, exponent, &numSols, s.mode)
			launch(minID, maxID, t.run)
		}
		return frag, numSols, nil
	}
	capacity := (maxID - minID) + int64(len(n.Vars)) + 2
	for try := 0; try < maxTreeRetries; try++ {
		frag := NewTreeSolution(capacity, len(n.Vars), minID, maxID)
		var numSols int64
		for _, cf := range childFrags {
			t := newIFTask(frag, cf, n.Vars, childVars, s.f, value, exponent, &numSols, s.mode)
			launch(minID, maxID, t.run)
		}
		if !frag.Overflowed() {
			return frag, numSols, nil
		}
		capacity *= 2
	}
	return nil, 0, errors.Wrapf(ErrTreeCapacity, "bag %d", n.ID)
}

// mergeTreeFragments folds the trie fragments of a chunked bag into a single
// trie covering the whole assignment space.
func (s *Solver) mergeTreeFragments(n *decomp.Node, frags []Solution) (*TreeSolution, error) {
	merged := frags[0].(*TreeSolution)
	for _, f := range frags[1:] {
		src := f.(*TreeSolution)
		capacity := merged.Entries() + src.Entries() + 2
		ok := false
		for try := 0; try < maxTreeRetries; try++ {
			dst := merged.grow(capacity)
			dst.maxID = src.MaxID()
			combineTree(dst, src)
			if !dst.Overflowed() {
				merged = dst
				ok = true
				break
			}
			capacity *= 2
		}
		if !ok {
			return nil, errors.Wrapf(ErrTreeCapacity, "combining fragments of bag %d", n.ID)
		}
	}
	return merged, nil
}
