// Package explain implements the optional evaluation-tree sink of
// spec.md §4.5.2: a cross-cutting record of rule names, arithmetic
// steps and decision branches taken while computing a rank or an
// acceptance verdict. It is threaded through pkg/zrank/rank as an
// optional *Tree parameter rather than duplicated as parallel method
// overloads (spec.md §9) — every method on *Tree is nil-safe, so a nil
// tree disables recording with no behavioral difference to the caller.
package explain

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Node is one step of an evaluation: a short human-readable description
// plus the sub-evaluations it depended on.
type Node struct {
	ID       string
	Text     string
	Children []*Node
}

// Tree accumulates Nodes as a call stack of "currently open" scopes.
type Tree struct {
	root    *Node
	stack   []*Node
	entropy *ulid.MonotonicEntropy
}

// New creates an empty tree with a root scope.
func New() *Tree {
	t := &Tree{entropy: ulid.Monotonic(rand.Reader, 0)}
	t.root = &Node{ID: t.newID(), Text: "evaluation"}
	t.stack = []*Node{t.root}
	return t
}

func (t *Tree) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Unix(0, 0)), t.entropy).String()
}

// Root returns the tree's root node, or nil for a nil tree.
func (t *Tree) Root() *Node {
	if t == nil {
		return nil
	}
	return t.root
}

// Enter opens a new child scope under the current cursor and returns it;
// pair with Leave. A nil receiver is a documented no-op that returns nil.
func (t *Tree) Enter(text string) *Node {
	if t == nil {
		return nil
	}
	n := &Node{ID: t.newID(), Text: text}
	top := t.stack[len(t.stack)-1]
	top.Children = append(top.Children, n)
	t.stack = append(t.stack, n)
	return n
}

// Leave closes the most recently opened scope.
func (t *Tree) Leave() {
	if t == nil {
		return
	}
	if len(t.stack) > 1 {
		t.stack = t.stack[:len(t.stack)-1]
	}
}

// Note appends a leaf node under the current scope without opening it.
func (t *Tree) Note(text string) {
	if t == nil {
		return
	}
	top := t.stack[len(t.stack)-1]
	top.Children = append(top.Children, &Node{ID: t.newID(), Text: text})
}
