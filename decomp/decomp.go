// Package decomp reads tree decompositions in the PACE 2017 exchange format
// and prepares them for the dynamic program: rooting, binarisation, bag
// combining and width checks.
package decomp

// A Decomposition is the unrooted contents of a .td file: one variable list
// per bag and undirected edges between bag ids. Bag ids are 1-based.
type Decomposition struct {
	NbVars int
	Width  int // largest declared bag size
	Bags   [][]int64
	Edges  [][2]int
}

// A Node is one bag of a rooted, preprocessed decomposition. Vars is sorted
// ascending and free of duplicates.
type Node struct {
	ID       int
	Vars     []int64
	Children []*Node
}

// Width returns the largest bag size in the subtree rooted at n.
func (n *Node) Width() int {
	w := len(n.Vars)
	for _, c := range n.Children {
		if cw := c.Width(); cw > w {
			w = cw
		}
	}
	return w
}
