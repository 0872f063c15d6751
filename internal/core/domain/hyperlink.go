package domain

// HyperlinkEdge is a directed cross-reference between two topics' notes.
// Edges are computed at synthesis time from lexical similarity and rewritten
// through the graph's tombstone table when topics merge, so they never
// dangle on a retired key.
type HyperlinkEdge struct {
	// Source is the topic key the link originates from.
	Source string

	// Target is the topic key the link points at. Never equals Source.
	Target string

	// Anchor is the link text, normally the target topic's name.
	Anchor string

	// Score is the similarity score that produced the edge.
	Score float64
}

// DedupeEdges removes duplicate (source, target) pairs and self-loops,
// keeping the highest-scored edge for each pair. Order of first appearance
// is preserved.
func DedupeEdges(edges []HyperlinkEdge) []HyperlinkEdge {
	type pair struct{ src, dst string }
	best := make(map[pair]int, len(edges))
	out := make([]HyperlinkEdge, 0, len(edges))

	for _, e := range edges {
		if e.Source == e.Target {
			continue
		}
		key := pair{e.Source, e.Target}
		if i, ok := best[key]; ok {
			if e.Score > out[i].Score {
				out[i] = e
			}
			continue
		}
		best[key] = len(out)
		out = append(out, e)
	}
	return out
}

// RewriteEdges maps edge endpoints through resolve, which translates a
// possibly-retired topic key to its live successor ("" drops the edge).
// The result is deduped and free of self-loops.
func RewriteEdges(edges []HyperlinkEdge, resolve func(string) string) []HyperlinkEdge {
	rewritten := make([]HyperlinkEdge, 0, len(edges))
	for _, e := range edges {
		src := resolve(e.Source)
		dst := resolve(e.Target)
		if src == "" || dst == "" {
			continue
		}
		e.Source = src
		e.Target = dst
		rewritten = append(rewritten, e)
	}
	return DedupeEdges(rewritten)
}
