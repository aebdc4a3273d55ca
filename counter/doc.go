/*
Package counter implements exact model counting (#SAT) for CNF formulas,
optionally weighted, by dynamic programming over a tree decomposition of the
formula's primal graph.

The input is a Formula (parsed from a DIMACS stream with optional Cachet
weight lines via ParseCNF) and a rooted decomposition (see package decomp).
The solver walks the decomposition bottom-up; at each bag it fills a solution
table holding, for every truth assignment of the bag's variables, the number
of models of the sub-formula below that bag. The root table sums to the final
count.

Tables come in two layouts: a dense array of doubles, and a sparse bit-trie
that stores only assignments with positive count. Each table is filled by a
kernel launch, a pool of worker goroutines sharing the table through atomic
operations on bit-packed words. Counts that would overflow a double are kept
in range by per-bag exponent extraction; the final Result pairs a mantissa
with the accumulated binary exponent.

A minimal use:

	f, err := counter.ParseCNF(cnfFile)
	// handle err
	d, err := decomp.ParseTD(tdFile)
	// handle err
	root, err := decomp.Preprocess(d, 20, 60)
	// handle err
	res, err := counter.New(f, counter.SolveConfig{}).Solve(root)
	// handle err
	fmt.Println(res.Value())
*/
package counter
