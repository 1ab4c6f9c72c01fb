package scene

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
)

// Render a table with the scene contents and KD-tree statistics.
func (s *Scene) Stats() string {
	primCount := make(map[PrimitiveType]int)
	degenerate := 0
	for _, prim := range s.Primitives {
		primCount[prim.Type]++
		if prim.Degenerate() {
			degenerate++
		}
	}
	lightCount := make(map[LightType]int)
	for _, light := range s.Lights {
		lightCount[light.Type]++
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count"})
	table.Append([]string{"Primitives", "---", fmt.Sprint(len(s.Primitives))})
	for pt := PlanePrimitive; pt <= TrianglePrimitive; pt++ {
		table.Append([]string{"", pt.String(), fmt.Sprint(primCount[pt])})
	}
	table.Append([]string{"", "degenerate", fmt.Sprint(degenerate)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Lights", "---", fmt.Sprint(len(s.Lights))})
	for lt := DirectionalLight; lt <= PointLight; lt++ {
		table.Append([]string{"", lt.String(), fmt.Sprint(lightCount[lt])})
	}

	if s.tree != nil {
		stats := s.tree.Stats
		table.Append([]string{" ", " ", " "})
		table.Append([]string{"KD-tree", "---", fmt.Sprint(stats.Nodes + stats.Leaves)})
		table.Append([]string{"", "internal nodes", fmt.Sprint(stats.Nodes)})
		table.Append([]string{"", "leaves", fmt.Sprint(stats.Leaves)})
		table.Append([]string{"", "empty leaves", fmt.Sprint(stats.EmptyLeafs)})
		table.Append([]string{"", "leaf items", fmt.Sprint(stats.LeafItems)})
		table.Append([]string{"", "unbounded items", fmt.Sprint(stats.Unbounded)})
		table.Append([]string{"", "max depth", fmt.Sprint(stats.MaxDepth)})
		table.Append([]string{"", "build time", stats.BuildTime.String()})
	}

	table.Render()
	return buf.String()
}
