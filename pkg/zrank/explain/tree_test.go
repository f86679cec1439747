package explain

import "testing"

func TestNilTreeIsANoOp(t *testing.T) {
	var tree *Tree
	if tree.Root() != nil {
		t.Fatalf("expected nil tree's Root to be nil")
	}
	if n := tree.Enter("anything"); n != nil {
		t.Fatalf("expected nil tree's Enter to return nil, got %v", n)
	}
	tree.Note("should not panic")
	tree.Leave()
}

func TestEnterLeaveNesting(t *testing.T) {
	tree := New()
	tree.Enter("outer")
	tree.Note("leaf under outer")
	tree.Enter("inner")
	tree.Note("leaf under inner")
	tree.Leave()
	tree.Leave()

	root := tree.Root()
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 top-level scope, got %d", len(root.Children))
	}
	outer := root.Children[0]
	if outer.Text != "outer" {
		t.Fatalf("expected outer scope text %q, got %q", "outer", outer.Text)
	}
	if len(outer.Children) != 2 {
		t.Fatalf("expected outer to have 2 children (leaf + inner), got %d", len(outer.Children))
	}
	if outer.Children[0].Text != "leaf under outer" {
		t.Errorf("unexpected first child text: %q", outer.Children[0].Text)
	}
	inner := outer.Children[1]
	if inner.Text != "inner" || len(inner.Children) != 1 {
		t.Fatalf("unexpected inner scope: %+v", inner)
	}
}

func TestLeaveWithoutMatchingEnterStaysAtRoot(t *testing.T) {
	tree := New()
	tree.Leave()
	tree.Leave()
	tree.Note("still attaches to root")
	if len(tree.Root().Children) != 1 {
		t.Fatalf("expected extra Leave calls to be absorbed at the root scope")
	}
}

func TestNodeIDsAreUniqueAndNonEmpty(t *testing.T) {
	tree := New()
	a := tree.Enter("a")
	tree.Leave()
	b := tree.Enter("b")
	tree.Leave()

	if a.ID == "" || b.ID == "" {
		t.Fatalf("expected non-empty node IDs, got %q and %q", a.ID, b.ID)
	}
	if a.ID == b.ID {
		t.Fatalf("expected distinct node IDs, both were %q", a.ID)
	}
}
