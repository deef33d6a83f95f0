// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Interval is a closed range [Lo, Hi] of ray parameter t. An interval with
// Lo > Hi is conventionally treated as empty (no intersection).
type Interval struct {
	Lo, Hi float64
}

// Empty returns true if the interval contains no values.
func (iv Interval) Empty() bool { return iv.Lo > iv.Hi }

// Clip narrows iv to the overlap with a. The result is empty if the two
// intervals do not overlap.
func (iv Interval) Clip(a Interval) Interval {
	lo, hi := iv.Lo, iv.Hi
	if a.Lo > lo {
		lo = a.Lo
	}
	if a.Hi < hi {
		hi = a.Hi
	}
	return Interval{lo, hi}
}

// Contains returns true if t lies within the interval, inclusive.
func (iv Interval) Contains(t float64) bool { return t >= iv.Lo && t <= iv.Hi }
