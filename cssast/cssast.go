// Package cssast is the semantic CSS tree the evaluator emits into and
// the serializer walks. It generalizes the teacher's pointer tree of
// ast.Rule/ast.Statement (renderer/renderer_types.go's nested-slice
// shape) into a flat arena indexed by NodeID, each node holding an
// explicit Parent back-pointer -- the evaluator needs parent lookups
// when resolving `&` inside nested @media/@supports, and the
// serializer's source-map builder needs stable node identity that
// survives @extend rewriting the node's Selector after the node was
// first created.
package cssast

import "github.com/go-sass/sass/sasserror"

// NodeID identifies a node within a Tree. The zero value is invalid;
// Tree.Root() always returns a valid id.
type NodeID int

// Kind discriminates what a Node represents in the output CSS.
type Kind int

const (
	KindRoot Kind = iota
	KindStyleRule
	KindAtRule
	KindDeclaration
	KindComment
)

// Node is one entry of the arena. Only the fields relevant to Kind are
// populated; the rest are zero.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Kind     Kind
	Children []NodeID

	Selector string // KindStyleRule: fully resolved, serialized selector list

	AtRuleName   string // KindAtRule
	AtRuleParams string

	Property string // KindDeclaration
	Value    string

	CommentText string // KindComment
	CommentLoud bool

	Span sasserror.Span
}

// Tree is an arena of Nodes rooted at index 0.
type Tree struct {
	nodes []Node
}

// NewTree creates a Tree with an empty root node.
func NewTree() *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, Node{ID: 0, Parent: -1, Kind: KindRoot})
	return t
}

// Root returns the tree's root node id.
func (t *Tree) Root() NodeID { return 0 }

// Node returns a pointer to the node with the given id for in-place
// mutation (e.g. @extend rewriting Selector after the fact).
func (t *Tree) Node(id NodeID) *Node { return &t.nodes[id] }

func (t *Tree) alloc(parent NodeID, n Node) NodeID {
	id := NodeID(len(t.nodes))
	n.ID = id
	n.Parent = parent
	t.nodes = append(t.nodes, n)
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	return id
}

// AddStyleRule appends a new style-rule node under parent.
func (t *Tree) AddStyleRule(parent NodeID, selector string, span sasserror.Span) NodeID {
	return t.alloc(parent, Node{Kind: KindStyleRule, Selector: selector, Span: span})
}

// AddAtRule appends a new at-rule node under parent.
func (t *Tree) AddAtRule(parent NodeID, name, params string, span sasserror.Span) NodeID {
	return t.alloc(parent, Node{Kind: KindAtRule, AtRuleName: name, AtRuleParams: params, Span: span})
}

// AddDeclaration appends a new declaration node under parent.
func (t *Tree) AddDeclaration(parent NodeID, property, value string, span sasserror.Span) NodeID {
	return t.alloc(parent, Node{Kind: KindDeclaration, Property: property, Value: value, Span: span})
}

// AddComment appends a new comment node under parent.
func (t *Tree) AddComment(parent NodeID, text string, loud bool, span sasserror.Span) NodeID {
	return t.alloc(parent, Node{Kind: KindComment, CommentText: text, CommentLoud: loud, Span: span})
}

// Children returns the child ids of id in insertion order.
func (t *Tree) Children(id NodeID) []NodeID { return t.nodes[id].Children }

// IsEmpty reports whether id has no declaration, comment, or non-empty
// nested-rule descendants -- used to drop style rules whose body fully
// evaluated away (e.g. an @if that took the false branch).
func (t *Tree) IsEmpty(id NodeID) bool {
	for _, c := range t.nodes[id].Children {
		child := &t.nodes[c]
		switch child.Kind {
		case KindDeclaration, KindComment, KindAtRule:
			return false
		case KindStyleRule:
			if !t.IsEmpty(c) {
				return false
			}
		}
	}
	return true
}

// Graft copies every descendant of src's root as new children of
// parent in this tree, preserving their relative structure. Used to
// copy a @use/@forward'd module's own top-level CSS output into the
// importing stylesheet; the copies are appended under parent at the
// point of the call, not hoisted ahead of earlier output.
func (t *Tree) Graft(parent NodeID, src *Tree) {
	for _, c := range src.Children(src.Root()) {
		t.graftNode(parent, src, c)
	}
}

func (t *Tree) graftNode(parent NodeID, src *Tree, id NodeID) NodeID {
	n := src.nodes[id]
	n.Children = nil
	newID := t.alloc(parent, n)
	for _, c := range src.Children(id) {
		t.graftNode(newID, src, c)
	}
	return newID
}

// Walk visits every node in the tree in pre-order, depth first.
func (t *Tree) Walk(id NodeID, visit func(*Node)) {
	visit(&t.nodes[id])
	for _, c := range t.nodes[id].Children {
		t.Walk(c, visit)
	}
}
