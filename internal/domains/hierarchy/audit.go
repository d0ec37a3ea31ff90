package hierarchy

import (
	"bytes"

	"github.com/google/uuid"
)

// AuditReport describes the shape of a whole forest. Levels count from 1 at
// the roots.
type AuditReport struct {
	Nodes    int
	Roots    int
	MaxLevel int

	// Cycles holds each parent loop once, rotated to start at its
	// smallest id and listed child to parent.
	Cycles [][]uuid.UUID
	// Unrooted holds nodes that hang below a cycle and so have no root.
	Unrooted []uuid.UUID
	// Orphans point at a parent the snapshot does not know.
	Orphans []uuid.UUID
	// TooDeep holds nodes whose level exceeds the maxDepth given to Audit.
	TooDeep []uuid.UUID
}

// Healthy reports whether the audit found nothing to repair.
func (r AuditReport) Healthy() bool {
	return len(r.Cycles) == 0 && len(r.Unrooted) == 0 && len(r.Orphans) == 0 && len(r.TooDeep) == 0
}

// Audit walks every parent chain in s once. maxDepth <= 0 disables the
// depth check. Each node is visited a bounded number of times, so corrupted
// data (loops written outside CheckEdge) cannot make it spin.
func Audit(s *Snapshot, maxDepth int) AuditReport {
	const noRoot = -1

	report := AuditReport{Nodes: s.Len()}
	level := make(map[uuid.UUID]int, s.Len())
	inPath := make(map[uuid.UUID]int)
	var path []uuid.UUID

	for _, start := range s.Nodes() {
		if _, done := level[start]; done {
			continue
		}

		path = path[:0]
		clear(inPath)
		base := 0

		for node := start; ; {
			if l, done := level[node]; done {
				base = l
				break
			}
			if i, seen := inPath[node]; seen {
				cycle := append([]uuid.UUID(nil), path[i:]...)
				report.Cycles = append(report.Cycles, rotateToMin(cycle))
				for _, id := range cycle {
					level[id] = noRoot
				}
				path = path[:i]
				base = noRoot
				break
			}

			inPath[node] = len(path)
			path = append(path, node)

			parent, _ := s.Parent(node)
			if parent == uuid.Nil {
				report.Roots++
				break
			}
			if _, known := s.Parent(parent); !known {
				report.Orphans = append(report.Orphans, node)
				break
			}
			node = parent
		}

		for i := len(path) - 1; i >= 0; i-- {
			if base == noRoot {
				level[path[i]] = noRoot
				report.Unrooted = append(report.Unrooted, path[i])
				continue
			}
			base++
			level[path[i]] = base
		}
	}

	for id, l := range level {
		if l > report.MaxLevel {
			report.MaxLevel = l
		}
		if maxDepth > 0 && l > maxDepth {
			report.TooDeep = append(report.TooDeep, id)
		}
	}

	report.Unrooted = NewIDSet(report.Unrooted...).Sorted()
	report.Orphans = NewIDSet(report.Orphans...).Sorted()
	report.TooDeep = NewIDSet(report.TooDeep...).Sorted()
	return report
}

func rotateToMin(cycle []uuid.UUID) []uuid.UUID {
	lo := 0
	for i := range cycle {
		if bytes.Compare(cycle[i][:], cycle[lo][:]) < 0 {
			lo = i
		}
	}
	return append(cycle[lo:len(cycle):len(cycle)], cycle[:lo]...)
}
