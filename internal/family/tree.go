package family

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tree traversal directions.
const (
	DirectionAncestors   = "ancestors"
	DirectionDescendants = "descendants"
	DirectionBoth        = "both"
)

// DefaultTreeDepth bounds traversal when the caller gives no depth.
const DefaultTreeDepth = 3

// MaxTreeDepth is the hard ceiling on traversal depth.
const MaxTreeDepth = 10

// ErrRootNotFound means the requested root person is not in the loaded set.
var ErrRootNotFound = errors.New("family: tree root not found")

// ParentEdge is one parent->child edge of the family graph.
type ParentEdge struct {
	ParentID uuid.UUID
	ChildID  uuid.UUID
}

// TreePerson is the display projection of a person in a built tree. The
// tree payload carries what a rendered chart shows; notes and timestamps
// stay on the full record.
type TreePerson struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Nickname  string     `json:"nickname,omitempty"`
	Sex       string     `json:"sex,omitempty"`
	BirthYear *int       `json:"birthYear,omitempty"`
	DeathDate *time.Time `json:"deathDate,omitempty"`
}

func treePerson(p *Person) TreePerson {
	return TreePerson{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Nickname:  p.Nickname,
		Sex:       p.Sex,
		BirthYear: p.BirthYear,
		DeathDate: p.DeathDate,
	}
}

// TreeNode is one person in a built tree. Parents is populated when walking
// toward ancestors, Children when walking toward descendants.
type TreeNode struct {
	Person   TreePerson  `json:"person"`
	Parents  []*TreeNode `json:"parents,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// BuildTree assembles a bounded tree around rootID from an in-memory snapshot
// of persons and parent edges. It is a pure function: no I/O, no mutation of
// its inputs. The graph may contain cycles (bad data happens); every person
// appears at most once in the output, and traversal always terminates.
func BuildTree(rootID uuid.UUID, persons map[uuid.UUID]*Person, edges []ParentEdge, direction string, maxDepth int) (*TreeNode, error) {
	switch direction {
	case DirectionAncestors, DirectionDescendants, DirectionBoth:
	default:
		return nil, fmt.Errorf("family: invalid tree direction %q", direction)
	}
	if maxDepth <= 0 {
		maxDepth = DefaultTreeDepth
	}
	if maxDepth > MaxTreeDepth {
		maxDepth = MaxTreeDepth
	}

	root, ok := persons[rootID]
	if !ok {
		return nil, ErrRootNotFound
	}

	parentsOf := make(map[uuid.UUID][]uuid.UUID)
	childrenOf := make(map[uuid.UUID][]uuid.UUID)
	for _, e := range edges {
		parentsOf[e.ChildID] = append(parentsOf[e.ChildID], e.ParentID)
		childrenOf[e.ParentID] = append(childrenOf[e.ParentID], e.ChildID)
	}

	b := &treeBuilder{
		persons: persons,
		nodes:   make(map[uuid.UUID]*TreeNode),
	}
	rootNode := b.node(rootID, root)

	if direction == DirectionAncestors || direction == DirectionBoth {
		b.walk(rootNode, parentsOf, maxDepth, true)
	}
	if direction == DirectionDescendants || direction == DirectionBoth {
		b.walk(rootNode, childrenOf, maxDepth, false)
	}
	return rootNode, nil
}

// treeBuilder allocates one node per person. Reusing nodes is what makes
// cyclic input safe: a person already materialized is never expanded again.
type treeBuilder struct {
	persons map[uuid.UUID]*Person
	nodes   map[uuid.UUID]*TreeNode
}

func (b *treeBuilder) node(id uuid.UUID, p *Person) *TreeNode {
	if n, ok := b.nodes[id]; ok {
		return n
	}
	n := &TreeNode{Person: treePerson(p)}
	b.nodes[id] = n
	return n
}

// walk expands the tree breadth-first along adj up to maxDepth levels.
// The arena doubles as the visited set: a person already materialized is
// never attached or expanded again, so malformed cyclic edges can neither
// loop the traversal nor close a pointer cycle in the output.
func (b *treeBuilder) walk(root *TreeNode, adj map[uuid.UUID][]uuid.UUID, maxDepth int, upward bool) {
	type frame struct {
		node  *TreeNode
		depth int
	}
	queue := []frame{{root, 0}}

	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if f.depth >= maxDepth {
			continue
		}
		for _, nextID := range adj[f.node.Person.ID] {
			p, ok := b.persons[nextID]
			if !ok {
				continue // edge into a person outside the snapshot
			}
			if _, seen := b.nodes[nextID]; seen {
				continue
			}
			next := b.node(nextID, p)
			if upward {
				f.node.Parents = append(f.node.Parents, next)
			} else {
				f.node.Children = append(f.node.Children, next)
			}
			queue = append(queue, frame{next, f.depth + 1})
		}
	}
}

// CountNodes returns the number of distinct persons in a built tree.
func CountNodes(root *TreeNode) int {
	seen := map[uuid.UUID]bool{}
	var visit func(n *TreeNode)
	visit = func(n *TreeNode) {
		if n == nil || seen[n.Person.ID] {
			return
		}
		seen[n.Person.ID] = true
		for _, p := range n.Parents {
			visit(p)
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(root)
	return len(seen)
}
