package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/celltower/pkg/celltower"
	"github.com/matzehuels/celltower/pkg/config"
)

// Groups diagram geometry, in points.
const (
	// DefaultMaxGroups caps how many proximity groups are drawn, largest first.
	DefaultMaxGroups = 48

	groupColumns    = 6
	groupCellWidth  = 320
	groupCellHeight = 320
	pointsPerDegree = 100_000
)

// ProximityGroup is an anchor site and the sites matched to it, as
// indexes into the dataset.
type ProximityGroup struct {
	Anchor  int
	Members []int
}

// Size counts the anchor and its members.
func (g ProximityGroup) Size() int { return len(g.Members) + 1 }

// ProximityGroups rebuilds the groups of a declutter pass from its
// placements. Anchors appear in the order they were registered; groups
// without members are dropped.
func ProximityGroups(in Input) []ProximityGroup {
	var groups []ProximityGroup
	for i, p := range in.Placements {
		if p.Anchor < 0 {
			groups = append(groups, ProximityGroup{Anchor: i})
			continue
		}
		if p.Anchor < len(groups) {
			groups[p.Anchor].Members = append(groups[p.Anchor].Members, i)
		}
	}
	return slices.DeleteFunc(groups, func(g ProximityGroup) bool { return len(g.Members) == 0 })
}

// GroupsDOT lays out the largest maxGroups proximity groups on a grid.
// Nodes are pinned: within a cell, each site sits at its final position
// relative to the anchor's original position, so the down/right pattern
// is visible as drawn.
func GroupsDOT(in Input, maxGroups int) string {
	cfg := in.config()
	sites := in.sites()

	groups := ProximityGroups(in)
	slices.SortStableFunc(groups, func(a, b ProximityGroup) int { return b.Size() - a.Size() })
	if maxGroups > 0 && len(groups) > maxGroups {
		groups = groups[:maxGroups]
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, width=0.22, label=\"\", fontsize=9];\n")
	buf.WriteString("  edge [fontsize=8, color=\"#888888\"];\n")
	buf.WriteString("\n")

	for gi, g := range groups {
		if g.Anchor >= len(sites) {
			continue
		}
		ox := float64(gi%groupColumns) * groupCellWidth
		oy := -float64(gi/groupColumns) * groupCellHeight
		anchor := sites[g.Anchor]
		origin := anchor.Coordinates
		if o, ok := in.original(g.Anchor); ok {
			origin = o.Coordinates
		}

		title := fmt.Sprintf("%s\n%d sites", anchor.Label(), g.Size())
		fmt.Fprintf(&buf, "  \"g%d\" [shape=plaintext, style=\"\", fixedsize=false, label=%q, pos=\"%s\"];\n",
			gi, title, pinned(ox, oy+groupCellHeight/2-30))

		pos := func(s celltower.Site) string {
			return pinned(
				ox+(s.Coordinates.Longitude-origin.Longitude)*pointsPerDegree,
				oy+(s.Coordinates.Latitude-origin.Latitude)*pointsPerDegree,
			)
		}

		fmt.Fprintf(&buf, "  \"g%da\" [%s];\n", gi, strings.Join(nodeAttrs(cfg, anchor, pos(anchor), true), ", "))
		for mi, idx := range g.Members {
			if idx >= len(sites) {
				continue
			}
			member := sites[idx]
			fmt.Fprintf(&buf, "  \"g%dm%d\" [%s];\n", gi, mi, strings.Join(nodeAttrs(cfg, member, pos(member), false), ", "))

			dir := ""
			if p, ok := in.placement(idx); ok {
				dir = p.Direction.String()
			}
			fmt.Fprintf(&buf, "  \"g%da\" -- \"g%dm%d\" [label=%q];\n", gi, gi, mi, dir)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(cfg *config.Config, s celltower.Site, pos string, anchor bool) []string {
	layer, ok := Layer(cfg, s.Operator)
	if !ok {
		layer = OtherLayer
	}
	attrs := []string{
		fmt.Sprintf("fillcolor=%q", seriesHex(cfg, layer)),
		fmt.Sprintf("pos=%q", pos),
		fmt.Sprintf("tooltip=%q", fmt.Sprintf("%s | %s | %s", s.Label(), s.Technology, s.Power)),
	}
	if anchor {
		attrs = append(attrs, "penwidth=2", "color=black")
	} else {
		attrs = append(attrs, "color=white")
	}
	return attrs
}

func pinned(x, y float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64) + "," + strconv.FormatFloat(y, 'f', 2, 64) + "!"
}

// Groups renders the proximity groups diagram as SVG.
func Groups(in Input) ([]byte, error) {
	return RenderDOT(context.Background(), GroupsDOT(in, DefaultMaxGroups))
}

// RenderDOT renders a DOT graph with neato, honoring pinned positions.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag so the diagram scales to its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
