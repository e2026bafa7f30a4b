package family

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func testPerson(first string) *Person {
	return &Person{ID: uuid.New(), FirstName: first, LastName: "Test"}
}

// lineage builds grandparent -> parent -> child -> grandchild.
func lineage() (map[uuid.UUID]*Person, []ParentEdge, []*Person) {
	gp := testPerson("Grandparent")
	par := testPerson("Parent")
	child := testPerson("Child")
	gc := testPerson("Grandchild")
	persons := map[uuid.UUID]*Person{
		gp.ID: gp, par.ID: par, child.ID: child, gc.ID: gc,
	}
	edges := []ParentEdge{
		{ParentID: gp.ID, ChildID: par.ID},
		{ParentID: par.ID, ChildID: child.ID},
		{ParentID: child.ID, ChildID: gc.ID},
	}
	return persons, edges, []*Person{gp, par, child, gc}
}

func TestBuildTreeAncestors(t *testing.T) {
	persons, edges, ps := lineage()
	child := ps[2]

	root, err := BuildTree(child.ID, persons, edges, DirectionAncestors, 5)
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	if root.Person.ID != child.ID {
		t.Fatalf("root = %s, want %s", root.Person.FirstName, child.FirstName)
	}
	if len(root.Parents) != 1 || root.Parents[0].Person.FirstName != "Parent" {
		t.Fatalf("root.Parents = %+v, want single Parent", root.Parents)
	}
	if len(root.Parents[0].Parents) != 1 || root.Parents[0].Parents[0].Person.FirstName != "Grandparent" {
		t.Fatal("grandparent missing from ancestor chain")
	}
	if len(root.Children) != 0 {
		t.Fatal("ancestors-only tree must not populate children")
	}
}

func TestBuildTreeDescendants(t *testing.T) {
	persons, edges, ps := lineage()
	par := ps[1]

	root, err := BuildTree(par.ID, persons, edges, DirectionDescendants, 5)
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	if len(root.Children) != 1 || root.Children[0].Person.FirstName != "Child" {
		t.Fatalf("root.Children = %+v, want single Child", root.Children)
	}
	if len(root.Children[0].Children) != 1 {
		t.Fatal("grandchild missing from descendant chain")
	}
}

func TestBuildTreeBoth(t *testing.T) {
	persons, edges, ps := lineage()
	child := ps[2]

	root, err := BuildTree(child.ID, persons, edges, DirectionBoth, 5)
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	if len(root.Parents) != 1 {
		t.Fatal("both-direction tree missing parents")
	}
	if len(root.Children) != 1 {
		t.Fatal("both-direction tree missing children")
	}
	if got := CountNodes(root); got != 4 {
		t.Fatalf("CountNodes() = %d, want 4", got)
	}
}

func TestBuildTreeDepthBound(t *testing.T) {
	persons, edges, ps := lineage()
	gc := ps[3]

	root, err := BuildTree(gc.ID, persons, edges, DirectionAncestors, 1)
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	if len(root.Parents) != 1 {
		t.Fatal("depth 1 must include direct parents")
	}
	if len(root.Parents[0].Parents) != 0 {
		t.Fatal("depth 1 must not include grandparents")
	}
}

func TestBuildTreeCycleTerminates(t *testing.T) {
	a := testPerson("A")
	b := testPerson("B")
	c := testPerson("C")
	persons := map[uuid.UUID]*Person{a.ID: a, b.ID: b, c.ID: c}
	// a -> b -> c -> a forms a cycle.
	edges := []ParentEdge{
		{ParentID: a.ID, ChildID: b.ID},
		{ParentID: b.ID, ChildID: c.ID},
		{ParentID: c.ID, ChildID: a.ID},
	}

	for _, dir := range []string{DirectionAncestors, DirectionDescendants, DirectionBoth} {
		root, err := BuildTree(a.ID, persons, edges, dir, MaxTreeDepth)
		if err != nil {
			t.Fatalf("BuildTree(%s) error = %v", dir, err)
		}
		if got := CountNodes(root); got > 3 {
			t.Fatalf("BuildTree(%s) visited %d nodes, want at most 3", dir, got)
		}
		// The output must stay acyclic even when the input is not.
		if _, err := json.Marshal(root); err != nil {
			t.Fatalf("marshal tree after cycle: %v", err)
		}
	}
}

func TestBuildTreeSelfParent(t *testing.T) {
	a := testPerson("A")
	persons := map[uuid.UUID]*Person{a.ID: a}
	edges := []ParentEdge{{ParentID: a.ID, ChildID: a.ID}}

	root, err := BuildTree(a.ID, persons, edges, DirectionBoth, 5)
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	if len(root.Parents) != 0 || len(root.Children) != 0 {
		t.Fatal("self edge must not attach the root to itself")
	}
}

func TestBuildTreeDiamondAncestry(t *testing.T) {
	// Both parents share the same father; the shared grandparent must appear
	// exactly once in the node set.
	gp := testPerson("SharedGrandparent")
	mother := testPerson("Mother")
	father := testPerson("Father")
	child := testPerson("Child")
	persons := map[uuid.UUID]*Person{
		gp.ID: gp, mother.ID: mother, father.ID: father, child.ID: child,
	}
	edges := []ParentEdge{
		{ParentID: mother.ID, ChildID: child.ID},
		{ParentID: father.ID, ChildID: child.ID},
		{ParentID: gp.ID, ChildID: mother.ID},
		{ParentID: gp.ID, ChildID: father.ID},
	}

	root, err := BuildTree(child.ID, persons, edges, DirectionAncestors, 5)
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	if got := CountNodes(root); got != 4 {
		t.Fatalf("CountNodes() = %d, want 4", got)
	}
}

func TestBuildTreeErrors(t *testing.T) {
	persons, edges, ps := lineage()

	t.Run("unknown root", func(t *testing.T) {
		if _, err := BuildTree(uuid.New(), persons, edges, DirectionBoth, 3); err == nil {
			t.Fatal("expected error for unknown root")
		}
	})

	t.Run("invalid direction", func(t *testing.T) {
		if _, err := BuildTree(ps[0].ID, persons, edges, "sideways", 3); err == nil {
			t.Fatal("expected error for invalid direction")
		}
	})
}

func TestTreeNodeProjection(t *testing.T) {
	year := 1931
	p := testPerson("Projected")
	p.Nickname = "Pro"
	p.BirthYear = &year
	p.Notes = "private family notes"
	persons := map[uuid.UUID]*Person{p.ID: p}

	root, err := BuildTree(p.ID, persons, nil, DirectionBoth, 1)
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	if root.Person.Nickname != "Pro" || root.Person.BirthYear == nil {
		t.Errorf("display fields missing: %+v", root.Person)
	}

	raw, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("marshal tree: %v", err)
	}
	for _, key := range []string{"notes", "createdAt", "householdId"} {
		if strings.Contains(string(raw), key) {
			t.Errorf("tree payload leaks %q: %s", key, raw)
		}
	}
}

func TestBuildTreeDefaultDepth(t *testing.T) {
	// Chain longer than the default depth; a zero depth must fall back to
	// DefaultTreeDepth, not traverse unbounded.
	var persons = map[uuid.UUID]*Person{}
	var edges []ParentEdge
	prev := testPerson("P0")
	persons[prev.ID] = prev
	leaf := prev
	for i := 1; i <= DefaultTreeDepth+2; i++ {
		p := testPerson("P")
		persons[p.ID] = p
		edges = append(edges, ParentEdge{ParentID: p.ID, ChildID: prev.ID})
		prev = p
	}

	root, err := BuildTree(leaf.ID, persons, edges, DirectionAncestors, 0)
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	if got := CountNodes(root); got != DefaultTreeDepth+1 {
		t.Fatalf("CountNodes() = %d, want %d", got, DefaultTreeDepth+1)
	}
}
