package scene

import (
	"slices"
	"time"

	"github.com/achilleasa/whitted/log"
	"github.com/achilleasa/whitted/types"
)

const (
	// Leaf marker stored in KDNode.Axis.
	kdLeaf uint8 = 3

	// Slack applied to the split plane distance tests during traversal.
	kdEpsilon float32 = 1e-4

	DefaultKDMaxDepth     = 10
	DefaultKDMinLeafItems = 2
)

// KD-tree node. Internal nodes store the split axis and position and the
// index of their right child; the left child always follows its parent.
// Leaf nodes reference a contiguous range of the tree item list.
type KDNode struct {
	Split float32
	Axis  uint8

	// Right child index (internal nodes) or first item index (leaves).
	Index uint32

	// Number of items (leaves).
	Count uint32
}

// Returns true if this is a leaf node.
func (n *KDNode) IsLeaf() bool {
	return n.Axis == kdLeaf
}

// KD-tree build parameters.
type KDTreeOptions struct {
	// Recursion stops at this depth.
	MaxDepth int

	// Nodes with this many items or fewer become leaves.
	MinLeafItems int
}

// Get the default build parameters.
func DefaultKDTreeOptions() KDTreeOptions {
	return KDTreeOptions{
		MaxDepth:     DefaultKDMaxDepth,
		MinLeafItems: DefaultKDMinLeafItems,
	}
}

// The BoundedVolume interface is implemented by items that can be
// partitioned by the KD-tree builder. Unbounded items (such as planes) are
// kept out of the spatial subdivision and tested by every query.
type BoundedVolume interface {
	BBox() types.AABB
	Bounded() bool
}

// A KD-tree over primitive indices. The tree never owns primitives; queries
// take the primitive list the tree was built from.
type KDTree struct {
	Nodes  []KDNode
	Items  []int32
	Bounds types.AABB

	// Items without a finite bounding box.
	Unbounded []int32

	Stats KDTreeStats
}

// KD-tree build statistics.
type KDTreeStats struct {
	Primitives int
	Unbounded  int
	Nodes      int
	Leaves     int
	EmptyLeafs int
	MaxDepth   int

	// Total leaf item references; exceeds the bounded primitive count when
	// primitives straddle split planes.
	LeafItems int
	BuildTime time.Duration
}

type kdBuilder struct {
	logger log.Logger
	opts   KDTreeOptions
	boxes  []types.AABB
	tree   *KDTree
}

// Build a KD-tree from a list of bounded volumes. Item i of the tree refers
// to volumes[i].
//
// Each node is split along the widest axis of its cell at the median of the
// bounding box centers of its items. Items whose boxes straddle the split
// plane are referenced by both children.
func BuildKDTree(volumes []BoundedVolume, opts KDTreeOptions) *KDTree {
	if opts.MaxDepth < 0 {
		opts.MaxDepth = 0
	}
	if opts.MinLeafItems < 1 {
		opts.MinLeafItems = 1
	}

	b := &kdBuilder{
		logger: log.New("kd-tree builder"),
		opts:   opts,
		boxes:  make([]types.AABB, len(volumes)),
		tree: &KDTree{
			Nodes:     make([]KDNode, 0),
			Items:     make([]int32, 0),
			Unbounded: make([]int32, 0),
		},
	}

	start := time.Now()
	items := make([]int32, 0, len(volumes))
	bounds := types.EmptyAABB()
	for i, vol := range volumes {
		if !vol.Bounded() {
			b.tree.Unbounded = append(b.tree.Unbounded, int32(i))
			continue
		}
		b.boxes[i] = vol.BBox()
		bounds = bounds.Union(b.boxes[i])
		items = append(items, int32(i))
	}
	if len(items) > 0 {
		b.tree.Bounds = bounds
	}
	b.partition(items, b.tree.Bounds, 0)

	stats := &b.tree.Stats
	stats.Primitives = len(volumes)
	stats.Unbounded = len(b.tree.Unbounded)
	stats.BuildTime = time.Since(start)
	b.logger.Debugf(
		"KD-tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d, leaf items: %d\n",
		stats.BuildTime.Nanoseconds()/1e6,
		stats.MaxDepth, stats.Nodes, stats.Leaves, stats.LeafItems,
	)
	return b.tree
}

// Partition items inside cell and return the node index.
func (b *kdBuilder) partition(items []int32, cell types.AABB, depth int) uint32 {
	if depth > b.tree.Stats.MaxDepth {
		b.tree.Stats.MaxDepth = depth
	}

	if len(items) <= b.opts.MinLeafItems || depth >= b.opts.MaxDepth {
		return b.createLeaf(items)
	}

	axis := cell.WidestAxis()
	if cell.Extent()[axis] <= 0 {
		return b.createLeaf(items)
	}

	// Median of item centers along the split axis
	centers := make([]float32, len(items))
	for i, item := range items {
		centers[i] = b.boxes[item].Center()[axis]
	}
	slices.Sort(centers)
	mid := len(centers) / 2
	split := centers[mid]
	if len(centers)%2 == 0 {
		split = 0.5 * (centers[mid-1] + centers[mid])
	}

	// Keep both child cells non-empty
	if split <= cell.Min[axis] || split >= cell.Max[axis] {
		split = cell.Center()[axis]
	}

	left := make([]int32, 0, len(items))
	right := make([]int32, 0, len(items))
	for _, item := range items {
		box := b.boxes[item]
		if box.Min[axis] <= split {
			left = append(left, item)
		}
		if box.Max[axis] >= split {
			right = append(right, item)
		}
	}

	// Every item straddles the split plane; splitting further only
	// duplicates references
	if len(left) == len(items) && len(right) == len(items) {
		b.logger.Debugf("no progress splitting %d items at depth %d; creating leaf", len(items), depth)
		return b.createLeaf(items)
	}

	nodeIndex := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, KDNode{Split: split, Axis: uint8(axis)})
	b.tree.Stats.Nodes++

	leftCell, rightCell := cell, cell
	leftCell.Max[axis] = split
	rightCell.Min[axis] = split

	b.partition(left, leftCell, depth+1)
	rightIndex := b.partition(right, rightCell, depth+1)
	b.tree.Nodes[nodeIndex].Index = rightIndex

	return uint32(nodeIndex)
}

// Append a leaf referencing items and return its node index.
func (b *kdBuilder) createLeaf(items []int32) uint32 {
	nodeIndex := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, KDNode{
		Axis:  kdLeaf,
		Index: uint32(len(b.tree.Items)),
		Count: uint32(len(items)),
	})
	b.tree.Items = append(b.tree.Items, items...)

	b.tree.Stats.Leaves++
	b.tree.Stats.LeafItems += len(items)
	if len(items) == 0 {
		b.tree.Stats.EmptyLeafs++
	}
	return uint32(nodeIndex)
}

// Find the nearest intersection of ray with the primitives referenced by
// the tree. Only hits closer than hit.T are accepted.
func (t *KDTree) Intersect(prims []*Primitive, ray types.Ray, hit *Intersection) bool {
	found := false
	for _, item := range t.Unbounded {
		if prims[item].Intersect(ray, hit) {
			hit.Primitive = int(item)
			found = true
		}
	}

	if len(t.Items) == 0 {
		return found
	}
	tNear, tFar, ok := t.Bounds.IntersectRay(ray)
	if !ok {
		return found
	}
	if t.nearest(0, prims, ray, hit, tNear, tFar) {
		found = true
	}
	return found
}

func (t *KDTree) nearest(nodeIndex uint32, prims []*Primitive, ray types.Ray, hit *Intersection, tMin, tMax float32) bool {
	// The best hit is closer than anything in this cell
	if tMin-kdEpsilon > hit.T {
		return false
	}

	node := &t.Nodes[nodeIndex]
	if node.IsLeaf() {
		found := false
		for _, item := range t.Items[node.Index : node.Index+node.Count] {
			if prims[item].Intersect(ray, hit) {
				hit.Primitive = int(item)
				found = true
			}
		}
		return found
	}

	near, far, tSplit, mode := t.order(nodeIndex, ray, tMin, tMax)
	switch mode {
	case visitNear:
		return t.nearest(near, prims, ray, hit, tMin, tMax)
	case visitFar:
		return t.nearest(far, prims, ray, hit, tMin, tMax)
	case visitBoth:
		foundNear := t.nearest(near, prims, ray, hit, tMin, tMax)
		foundFar := t.nearest(far, prims, ray, hit, tMin, tMax)
		return foundNear || foundFar
	}

	found := t.nearest(near, prims, ray, hit, tMin, tSplit)
	// Anything in the far cell lies beyond the split plane
	if hit.T+kdEpsilon < tSplit {
		return found
	}
	if t.nearest(far, prims, ray, hit, tSplit, tMax) {
		found = true
	}
	return found
}

// Returns true if any primitive intersects ray closer than maxT.
func (t *KDTree) Occluded(prims []*Primitive, ray types.Ray, maxT float32) bool {
	for _, item := range t.Unbounded {
		hit := Intersection{T: maxT, Primitive: -1}
		if prims[item].Intersect(ray, &hit) {
			return true
		}
	}

	if len(t.Items) == 0 {
		return false
	}
	tNear, tFar, ok := t.Bounds.IntersectRay(ray)
	if !ok || tNear-kdEpsilon > maxT {
		return false
	}
	return t.anyHit(0, prims, ray, maxT, tNear, tFar)
}

func (t *KDTree) anyHit(nodeIndex uint32, prims []*Primitive, ray types.Ray, maxT, tMin, tMax float32) bool {
	if tMin-kdEpsilon > maxT {
		return false
	}

	node := &t.Nodes[nodeIndex]
	if node.IsLeaf() {
		for _, item := range t.Items[node.Index : node.Index+node.Count] {
			hit := Intersection{T: maxT, Primitive: -1}
			if prims[item].Intersect(ray, &hit) {
				return true
			}
		}
		return false
	}

	near, far, tSplit, mode := t.order(nodeIndex, ray, tMin, tMax)
	switch mode {
	case visitNear:
		return t.anyHit(near, prims, ray, maxT, tMin, tMax)
	case visitFar:
		return t.anyHit(far, prims, ray, maxT, tMin, tMax)
	case visitBoth:
		return t.anyHit(near, prims, ray, maxT, tMin, tMax) ||
			t.anyHit(far, prims, ray, maxT, tMin, tMax)
	}
	return t.anyHit(near, prims, ray, maxT, tMin, tSplit) ||
		t.anyHit(far, prims, ray, maxT, tSplit, tMax)
}

type visitMode uint8

const (
	visitNearThenFar visitMode = iota
	visitNear
	visitFar
	visitBoth
)

// Order the children of an internal node along the ray and decide which of
// them the segment [tMin, tMax] passes through.
func (t *KDTree) order(nodeIndex uint32, ray types.Ray, tMin, tMax float32) (near, far uint32, tSplit float32, mode visitMode) {
	node := &t.Nodes[nodeIndex]
	left, right := nodeIndex+1, node.Index
	axis := node.Axis
	o, d := ray.Origin[axis], ray.Direction[axis]

	if o < node.Split || (o == node.Split && d <= 0) {
		near, far = left, right
	} else {
		near, far = right, left
	}

	if d == 0 {
		// Ray runs inside the split plane; both cells share the boundary
		if o == node.Split {
			return near, far, 0, visitBoth
		}
		return near, far, 0, visitNear
	}

	tSplit = (node.Split - o) / d
	switch {
	case tSplit <= 0 || tSplit > tMax+kdEpsilon:
		return near, far, tSplit, visitNear
	case tSplit < tMin-kdEpsilon:
		return near, far, tSplit, visitFar
	}
	return near, far, tSplit, visitNearThenFar
}
