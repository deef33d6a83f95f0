// SPDX-FileCopyrightText: © 2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package raster

// lod.go partitions the culled instance set into "near" (drawn as full
// mesh) and "far" (drawn as a proxy box) by moving an index boundary
// rather than sorting: an nth-element-style selection against a triangle
// budget, the same Lomuto-partition technique accel/accel.go uses for its
// BVH median split, generalized here so the selected rank isn't known up
// front — it falls out of whichever partition's cumulative triangle count
// first exceeds budget.

// partitionByBudget reorders s.instances/s.distSqr in place so that no
// instance in the returned near prefix is farther from the camera than any
// instance after it, and returns the boundary: the largest prefix, taken
// in order of increasing distance, whose total triangle count does not
// exceed budget. Neither the near prefix nor the far suffix is sorted
// within itself; each keeps whatever order partitioning produced.
func partitionByBudget(s *scratch, budget uint64) int {
	lo, hi := 0, len(s.instances)
	used := uint64(0)
	for lo < hi {
		p := partitionAsc(s, lo, hi)
		leftSum := used
		for k := lo; k <= p; k++ {
			leftSum += uint64(s.instances[k].Prototype.Triangles())
		}
		if leftSum <= budget {
			used = leftSum
			lo = p + 1
		} else {
			hi = p
		}
	}
	return lo
}

// partitionAsc Lomuto-partitions s[lo:hi] ascending by distSqr around the
// last element as pivot, returning the pivot's final index.
func partitionAsc(s *scratch, lo, hi int) int {
	pivot := s.distSqr[hi-1]
	i := lo
	for j := lo; j < hi-1; j++ {
		if s.distSqr[j] < pivot {
			s.swap(i, j)
			i++
		}
	}
	s.swap(i, hi-1)
	return i
}
