package grid

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"testing"
)

func randf(min, max float64) float64 {
	return rand.Float64()*(max-min) + min
}

func randBox() (minX, minY, maxX, maxY float64) {
	minX, minY = randf(0, 100), randf(0, 100)
	maxX = randf(minX, minX+10)
	maxY = randf(minY, minY+10)
	return
}

func searchIDs(tr *Tree, minX, minY, maxX, maxY float64) []string {
	var ids []string
	tr.Search(minX, minY, maxX, maxY, func(id string) bool {
		ids = append(ids, id)
		return true
	})
	sort.Strings(ids)
	return ids
}

func TestNewErrors(t *testing.T) {
	if _, err := New(0, 0, 100, 100, 0); err == nil {
		t.Fatal("expected error for depth 0")
	}
	if _, err := New(0, 0, 100, 100, -3); err == nil {
		t.Fatal("expected error for negative depth")
	}
	if _, err := New(math.NaN(), 0, 100, 100, 2); err == nil {
		t.Fatal("expected error for NaN bound")
	}
	tr, err := New(0, 0, 100, 100, 1)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Depth() != 1 || tr.Leaves() != 1 {
		t.Fatalf("depth = %d, leaves = %d, expect 1, 1", tr.Depth(), tr.Leaves())
	}
}

func TestDepthOne(t *testing.T) {
	tr, err := New(0, 0, 100, 100, 1)
	if err != nil {
		t.Fatal(err)
	}
	tr.Add("a", 90, 90, 120, 120)
	if tr.Refs("a") != 1 {
		t.Fatalf("refs = %d, expect 1", tr.Refs("a"))
	}
	ids := searchIDs(tr, 1, 1, 99, 99)
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("ids = %v, expect [a]", ids)
	}
}

// countLeaves walks the tree verifying that every internal node's four
// children exactly tile its area, and returns the leaf count.
func countLeaves(t *testing.T, n *nodeT) int {
	if n.children == nil {
		return 1
	}
	if len(n.objects) != 0 {
		t.Fatalf("internal node holds %d objects", len(n.objects))
	}
	midX := (n.maxX-n.minX)/2 + n.minX
	midY := (n.maxY-n.minY)/2 + n.minY
	expect := [4][4]float64{
		{n.minX, midY, midX, n.maxY},
		{midX, midY, n.maxX, n.maxY},
		{n.minX, n.minY, midX, midY},
		{midX, n.minY, n.maxX, midY},
	}
	leaves := 0
	for i := range n.children {
		c := &n.children[i]
		got := [4]float64{c.minX, c.minY, c.maxX, c.maxY}
		if got != expect[i] {
			t.Fatalf("quadrant %d area = %v, expect %v", i, got, expect[i])
		}
		leaves += countLeaves(t, c)
	}
	return leaves
}

func TestQuadrantTiling(t *testing.T) {
	for depth := 1; depth <= 5; depth++ {
		tr, err := New(-50, -20, 70, 100, depth)
		if err != nil {
			t.Fatal(err)
		}
		leaves := countLeaves(t, tr.root)
		if leaves != tr.Leaves() {
			t.Fatalf("depth %d: leaves = %d, expect %d", depth, leaves, tr.Leaves())
		}
		expect := 1
		for i := 1; i < depth; i++ {
			expect *= 4
		}
		if leaves != expect {
			t.Fatalf("depth %d: leaves = %d, expect %d", depth, leaves, expect)
		}
	}
}

func TestSingleLeafFiling(t *testing.T) {
	tr, _ := New(0, 0, 100, 100, 2)
	tr.Add("a", 10, 10, 20, 20)
	if tr.Refs("a") != 1 {
		t.Fatalf("refs = %d, expect 1", tr.Refs("a"))
	}
}

func TestStraddleFiling(t *testing.T) {
	tr, _ := New(0, 0, 100, 100, 2)
	tr.Add("a", 40, 10, 60, 20) // spans the x=50 boundary, bottom half
	if tr.Refs("a") != 2 {
		t.Fatalf("refs = %d, expect 2", tr.Refs("a"))
	}
	// a query covering only one of the two leaves still returns it
	ids := searchIDs(tr, 1, 1, 49, 49)
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("ids = %v, expect [a]", ids)
	}
	ids = searchIDs(tr, 51, 1, 99, 49)
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("ids = %v, expect [a]", ids)
	}
}

func TestBoundaryAsymmetry(t *testing.T) {
	tr, _ := New(0, 0, 100, 100, 2)
	// touching a cell boundary files the object into that cell
	tr.Add("a", 50, 50, 60, 60)
	if tr.Refs("a") != 4 {
		t.Fatalf("refs = %d, expect 4", tr.Refs("a"))
	}
	// but a query that only touches a cell boundary does not match it
	tr.Add("b", 60, 60, 70, 70)
	if tr.Refs("b") != 1 {
		t.Fatalf("refs = %d, expect 1", tr.Refs("b"))
	}
	ids := searchIDs(tr, 0, 0, 50, 50)
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("ids = %v, expect [a]", ids)
	}
	// queries touching the outside of the root area match nothing
	if ids := searchIDs(tr, 100, 0, 120, 100); len(ids) != 0 {
		t.Fatalf("ids = %v, expect none", ids)
	}
	if ids := searchIDs(tr, -20, 0, 0, 100); len(ids) != 0 {
		t.Fatalf("ids = %v, expect none", ids)
	}
}

func TestReversedCorners(t *testing.T) {
	tr, _ := New(0, 0, 100, 100, 2)
	// reversed corners are normalized on add
	tr.Add("a", 20, 20, 10, 10)
	if tr.Refs("a") != 1 {
		t.Fatalf("refs = %d, expect 1", tr.Refs("a"))
	}
	ids := searchIDs(tr, 1, 1, 49, 49)
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("ids = %v, expect [a]", ids)
	}
	// but never on search: this reversed query box prunes every cell,
	// while its normalized form (40,40)-(60,60) would match the object
	tr.Add("b", 45, 45, 55, 55)
	if ids := searchIDs(tr, 40, 40, 60, 60); len(ids) == 0 {
		t.Fatalf("ids = %v, expect some", ids)
	}
	if ids := searchIDs(tr, 60, 60, 40, 40); len(ids) != 0 {
		t.Fatalf("ids = %v, expect none", ids)
	}
}

func TestDelete(t *testing.T) {
	tr, _ := New(0, 0, 100, 100, 3)
	tr.Add("a", 10, 10, 90, 90)
	if tr.Refs("a") == 0 || tr.Count() != 1 {
		t.Fatalf("refs = %d, count = %d", tr.Refs("a"), tr.Count())
	}
	tr.Delete("a")
	if tr.Refs("a") != 0 || tr.Count() != 0 {
		t.Fatalf("refs = %d, count = %d, expect 0, 0", tr.Refs("a"), tr.Count())
	}
	if ids := searchIDs(tr, 1, 1, 99, 99); len(ids) != 0 {
		t.Fatalf("ids = %v, expect none", ids)
	}
	tr.Delete("a") // idempotent
	tr.Delete("never-added")
}

func TestReAddAppends(t *testing.T) {
	tr, _ := New(0, 0, 100, 100, 2)
	tr.Add("a", 10, 10, 20, 20)
	tr.Add("a", 12, 12, 18, 18)
	if tr.Refs("a") != 2 {
		t.Fatalf("refs = %d, expect 2", tr.Refs("a"))
	}
	// still returned exactly once
	ids := searchIDs(tr, 1, 1, 49, 49)
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("ids = %v, expect [a]", ids)
	}
	// and a single delete drops every reference
	tr.Delete("a")
	if tr.Refs("a") != 0 {
		t.Fatalf("refs = %d, expect 0", tr.Refs("a"))
	}
	if ids := searchIDs(tr, 1, 1, 49, 49); len(ids) != 0 {
		t.Fatalf("ids = %v, expect none", ids)
	}
}

func TestWindowAdd(t *testing.T) {
	// coord' = origin + coord/scale
	tr, _ := New(0, 0, 30, 30, 2) // four 15x15 leaves
	tr.SetWindow(10, 10, 2)
	tr.Add("a", 0, 0, 10, 10) // files at (10,10)-(15,15), touching all four leaves
	if tr.Refs("a") != 4 {
		t.Fatalf("refs = %d, expect 4", tr.Refs("a"))
	}
	tr.ResetWindow()
	tr.Add("b", 0, 0, 10, 10) // raw coordinates, bottom-left leaf only
	if tr.Refs("b") != 1 {
		t.Fatalf("refs = %d, expect 1", tr.Refs("b"))
	}
}

func TestWindowSearch(t *testing.T) {
	tr, _ := New(0, 0, 100, 100, 2)
	tr.SetWindow(60, 60, 2)
	tr.Add("a", 0, 0, 10, 10) // files at (60,60)-(65,65), top-right leaf
	tr.ResetWindow()
	if ids := searchIDs(tr, 51, 51, 99, 99); len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("ids = %v, expect [a]", ids)
	}
	if ids := searchIDs(tr, 1, 1, 49, 49); len(ids) != 0 {
		t.Fatalf("ids = %v, expect none", ids)
	}
	// the same query through the window transform finds it too
	tr.SetWindow(60, 60, 2)
	if ids := searchIDs(tr, 0, 0, 10, 10); len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("ids = %v, expect [a]", ids)
	}
}

func TestWindowCompose(t *testing.T) {
	tr, _ := New(0, 0, 100, 100, 1)
	tr.SetWindow(10, 10, 2)
	tr.SetWindow(10, 10, 2)
	ox, oy, scale := tr.Window()
	if ox != 15 || oy != 15 || scale != 4 {
		t.Fatalf("window = %v,%v,%v, expect 15,15,4", ox, oy, scale)
	}
	tr.ResetWindow()
	ox, oy, scale = tr.Window()
	if ox != 0 || oy != 0 || scale != 1 {
		t.Fatalf("window = %v,%v,%v, expect 0,0,1", ox, oy, scale)
	}
}

func TestWindowScaleOneIdentity(t *testing.T) {
	// a pure pan at scale 1 accumulates in the window state but does not
	// transform coordinates until the scale moves off 1
	tr, _ := New(0, 0, 100, 100, 2)
	tr.SetWindow(60, 60, 1)
	tr.Add("a", 0, 0, 10, 10)
	if tr.Refs("a") != 1 {
		t.Fatalf("refs = %d, expect 1", tr.Refs("a"))
	}
	if ids := searchIDs(tr, 1, 1, 49, 49); len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("ids = %v, expect [a]", ids)
	}
}

func TestScenario(t *testing.T) {
	// the worked example: 100x100 area, depth 2, four 50x50 leaves
	tr, err := New(0, 0, 100, 100, 2)
	if err != nil {
		t.Fatal(err)
	}
	tr.Add("a", 10, 10, 20, 20)
	if tr.Refs("a") != 1 {
		t.Fatalf("refs = %d, expect 1", tr.Refs("a"))
	}
	if ids := searchIDs(tr, 0, 0, 49, 49); len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("ids = %v, expect [a]", ids)
	}
	if ids := searchIDs(tr, 51, 51, 99, 99); len(ids) != 0 {
		t.Fatalf("ids = %v, expect none", ids)
	}
	tr.Delete("a")
	if ids := searchIDs(tr, 0, 0, 49, 49); len(ids) != 0 {
		t.Fatalf("ids = %v, expect none", ids)
	}
}

func TestRemoveAll(t *testing.T) {
	tr, _ := New(0, 0, 100, 100, 3)
	for i := 0; i < 100; i++ {
		minX, minY, maxX, maxY := randBox()
		tr.Add("id:"+strconv.Itoa(i), minX, minY, maxX, maxY)
	}
	if tr.Count() != 100 {
		t.Fatalf("count = %d, expect 100", tr.Count())
	}
	tr.RemoveAll()
	if tr.Count() != 0 {
		t.Fatalf("count = %d, expect 0", tr.Count())
	}
	if ids := searchIDs(tr, 1, 1, 99, 99); len(ids) != 0 {
		t.Fatalf("ids = %v, expect none", ids)
	}
}

func TestRandomInserts(t *testing.T) {
	rand.Seed(0)
	l := 10000
	tr, _ := New(0, 0, 100, 100, 6)
	for i := 0; i < l; i++ {
		minX, minY, maxX, maxY := randBox()
		tr.Add("id:"+strconv.Itoa(i), minX, minY, maxX, maxY)
	}
	if tr.Count() != l {
		t.Fatalf("count = %d, expect %d", tr.Count(), l)
	}
	// a query over the whole area returns everything exactly once
	seen := make(map[string]int)
	tr.Search(-1000, -1000, 1000, 1000, func(id string) bool {
		seen[id]++
		return true
	})
	if len(seen) != l {
		t.Fatalf("seen = %d, expect %d", len(seen), l)
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("id %s returned %d times", id, n)
		}
	}
	for i := 0; i < l; i += 2 {
		tr.Delete("id:" + strconv.Itoa(i))
	}
	if tr.Count() != l/2 {
		t.Fatalf("count = %d, expect %d", tr.Count(), l/2)
	}
}

func TestSearchEarlyStop(t *testing.T) {
	tr, _ := New(0, 0, 100, 100, 2)
	tr.Add("a", 10, 10, 90, 90)
	tr.Add("b", 10, 10, 90, 90)
	var n int
	tr.Search(1, 1, 99, 99, func(id string) bool {
		n++
		return false
	})
	if n != 1 {
		t.Fatalf("iterated %d, expect 1", n)
	}
}

func BenchmarkAdd(b *testing.B) {
	tr, _ := New(0, 0, 100, 100, 6)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		minX, minY, maxX, maxY := randBox()
		tr.Add("id:"+strconv.Itoa(i), minX, minY, maxX, maxY)
	}
}

func BenchmarkSearch(b *testing.B) {
	tr, _ := New(0, 0, 100, 100, 6)
	for i := 0; i < 100000; i++ {
		minX, minY, maxX, maxY := randBox()
		tr.Add("id:"+strconv.Itoa(i), minX, minY, maxX, maxY)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, y := randf(0, 90), randf(0, 90)
		tr.Search(x, y, x+10, y+10, func(id string) bool {
			return true
		})
	}
}
