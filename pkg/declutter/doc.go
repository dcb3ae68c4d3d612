// Package declutter spreads apart map markers that would otherwise be drawn
// on top of each other.
//
// # Algorithm
//
// The engine makes one left-to-right pass over the points. It keeps an
// insertion-ordered list of anchors: the original position of the first
// point seen in each proximity group, with a counter and the direction of the
// last nudge. For each incoming point:
//
//  1. Anchors are scanned in insertion order; the first one closer than
//     the tolerance (plain Euclidean distance in degrees) wins.
//  2. On a match, the point is nudged down (latitude - 0.0002) when the
//     anchor's last nudge was right or its counter is zero, and right
//     (longitude + 0.0002) when the last nudge was down. The counter is
//     incremented.
//  3. Without a match, the point's original position becomes a new anchor
//     and the point is left in place.
//
// Anchors never move. Members of a tight group therefore alternate between
// two fixed spots (one below, one to the right of the anchor) rather than
// spiralling outwards; the map clusters markers anyway, so this is enough to
// make each marker clickable.
//
// The result depends on input order. An [Engine] is single-use and not safe
// for concurrent use.
//
//	eng := declutter.New(declutter.Options{})
//	for i, p := range points {
//	    points[i] = eng.Place(p).Point
//	}
package declutter
