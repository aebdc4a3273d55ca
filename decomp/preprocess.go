package decomp

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrBagTooLarge is returned when a preprocessed bag holds more variables
// than the configured maximum.
var ErrBagTooLarge = errors.New("bag exceeds maximum width")

// Preprocess turns a parsed decomposition into the rooted form the solver
// consumes. The tree is rooted at bag 1, each bag's variable list is sorted
// and deduplicated, chains of small bags are merged while their union stays
// within combineWidth (0 disables combining), nodes with more than two
// children are binarised by inserting relay bags, and every resulting bag is
// checked against maxBag.
func Preprocess(d *Decomposition, combineWidth, maxBag int) (*Node, error) {
	if len(d.Bags) == 0 {
		return nil, errors.New("decomposition has no bags")
	}
	adj := make([][]int, len(d.Bags))
	for _, e := range d.Edges {
		adj[e[0]-1] = append(adj[e[0]-1], e[1]-1)
		adj[e[1]-1] = append(adj[e[1]-1], e[0]-1)
	}

	nodes := make([]*Node, len(d.Bags))
	for i, vars := range d.Bags {
		vs := append([]int64(nil), vars...)
		sort.Slice(vs, func(a, b int) bool { return vs[a] < vs[b] })
		vs = dedupe(vs)
		nodes[i] = &Node{ID: i + 1, Vars: vs}
	}

	visited := make([]bool, len(d.Bags))
	visited[0] = true
	queue := []int{0}
	reached := 1
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range adj[cur] {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			reached++
			nodes[cur].Children = append(nodes[cur].Children, nodes[nb])
			queue = append(queue, nb)
		}
	}
	if reached != len(d.Bags) {
		return nil, errors.Errorf("decomposition is not connected: reached %d of %d bags", reached, len(d.Bags))
	}

	root := nodes[0]
	if combineWidth > 0 {
		combine(root, combineWidth)
	}
	nextID := len(d.Bags)
	binarise(root, &nextID)
	if err := checkWidth(root, maxBag); err != nil {
		return nil, err
	}
	return root, nil
}

func dedupe(vs []int64) []int64 {
	out := vs[:0]
	for i, v := range vs {
		if i == 0 || v != vs[i-1] {
			out = append(out, v)
		}
	}
	return out
}

// combine merges a node with its only child while the union of their
// variable lists stays within width. Applied bottom-up so whole chains of
// introduce and forget steps collapse into one bag.
func combine(n *Node, width int) {
	for _, c := range n.Children {
		combine(c, width)
	}
	for len(n.Children) == 1 {
		c := n.Children[0]
		union := mergeSorted(n.Vars, c.Vars)
		if len(union) > width {
			return
		}
		n.Vars = union
		n.Children = c.Children
	}
}

// binarise rewrites nodes with more than two children into a chain of relay
// bags carrying the parent's variables, so every node ends up with at most
// two children.
func binarise(n *Node, nextID *int) {
	for len(n.Children) > 2 {
		*nextID++
		relay := &Node{
			ID:       *nextID,
			Vars:     append([]int64(nil), n.Vars...),
			Children: n.Children[1:],
		}
		n.Children = []*Node{n.Children[0], relay}
	}
	for _, c := range n.Children {
		binarise(c, nextID)
	}
}

func checkWidth(n *Node, maxBag int) error {
	if len(n.Vars) > maxBag {
		return errors.Wrapf(ErrBagTooLarge, "bag %d has %d variables, limit is %d", n.ID, len(n.Vars), maxBag)
	}
	for _, c := range n.Children {
		if err := checkWidth(c, maxBag); err != nil {
			return err
		}
	}
	return nil
}

func mergeSorted(a, b []int64) []int64 {
	out := make([]int64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
