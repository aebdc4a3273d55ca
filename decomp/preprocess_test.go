package decomp

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, td string) *Decomposition {
	t.Helper()
	d, err := ParseTD(strings.NewReader(td))
	if err != nil {
		t.Fatalf("cannot parse decomposition: %v", err)
	}
	return d
}

func TestPreprocessRootsAtBagOne(t *testing.T) {
	d := mustParse(t, "s td 3 2 3\nb 1 1 2\nb 2 2 3\nb 3 3\n2 1\n3 2\n")
	root, err := Preprocess(d, 0, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.ID != 1 {
		t.Errorf("expected root bag 1, got %d", root.ID)
	}
	if len(root.Children) != 1 || root.Children[0].ID != 2 {
		t.Fatalf("wrong children of root: %v", root.Children)
	}
	if len(root.Children[0].Children) != 1 || root.Children[0].Children[0].ID != 3 {
		t.Errorf("wrong grandchildren: %v", root.Children[0].Children)
	}
}

func TestPreprocessSortsAndDedupes(t *testing.T) {
	d := mustParse(t, "s td 1 3 3\nb 1 3 1 2 1\n")
	root, err := Preprocess(d, 0, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{1, 2, 3}
	if len(root.Vars) != len(want) {
		t.Fatalf("wrong vars: %v", root.Vars)
	}
	for i, v := range want {
		if root.Vars[i] != v {
			t.Fatalf("wrong vars: %v", root.Vars)
		}
	}
}

func TestPreprocessCombinesChains(t *testing.T) {
	d := mustParse(t, "s td 3 2 3\nb 1 1\nb 2 1 2\nb 3 2 3\n1 2\n2 3\n")
	root, err := Preprocess(d, 3, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 0 {
		t.Fatalf("expected chain to collapse into the root, got children %v", root.Children)
	}
	if len(root.Vars) != 3 {
		t.Errorf("expected combined bag over 3 vars, got %v", root.Vars)
	}
}

func TestPreprocessCombineRespectsWidth(t *testing.T) {
	d := mustParse(t, "s td 2 2 4\nb 1 1 2\nb 2 3 4\n1 2\n")
	root, err := Preprocess(d, 3, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 1 {
		t.Fatalf("bags should not merge past the combine width, got %v", root.Children)
	}
}

func TestPreprocessBinarises(t *testing.T) {
	d := mustParse(t, "s td 4 2 4\nb 1 1\nb 2 1 2\nb 3 1 3\nb 4 1 4\n1 2\n1 3\n1 4\n")
	root, err := Preprocess(d, 0, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var check func(n *Node)
	check = func(n *Node) {
		if len(n.Children) > 2 {
			t.Fatalf("bag %d still has %d children", n.ID, len(n.Children))
		}
		for _, c := range n.Children {
			check(c)
		}
	}
	check(root)
	count := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		count++
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	if count != 5 {
		t.Errorf("expected 4 bags plus one relay, got %d", count)
	}
}

func TestPreprocessRejectsWideBags(t *testing.T) {
	d := mustParse(t, "s td 1 3 3\nb 1 1 2 3\n")
	if _, err := Preprocess(d, 0, 2); err == nil {
		t.Error("expected a width error")
	}
}

func TestPreprocessRejectsDisconnected(t *testing.T) {
	d := mustParse(t, "s td 2 1 2\nb 1 1\nb 2 2\n")
	if _, err := Preprocess(d, 0, 60); err == nil {
		t.Error("expected a connectivity error")
	}
}
