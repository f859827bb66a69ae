// Package graph resolves the dependency relation between DAG tasks: cycle
// detection, ready-set computation, aggregate status derivation, and the
// forest view used for display. All functions are pure over the stage set.
package graph

import (
	"github.com/imkarma/relay/internal/state"
)

// Colors for the cycle-detection traversal.
const (
	white = iota // not visited
	gray         // on the current DFS path
	black        // fully explored
)

// DetectCycle runs a three-color depth-first traversal over the graph induced
// by dependsOn and returns the first cycle found as an ordered ID sequence
// (closing back to the first element is implied), or nil when the relation is
// acyclic. Traversal order over ties is stage insertion order. Edges to IDs
// not present in the set are ignored: the dependency relation is considered
// restricted to existing stages.
func DetectCycle(stages *state.StageSet) []string {
	color := make(map[string]int, stages.Len())
	var path []string

	var dfs func(id string) []string
	dfs = func(id string) []string {
		color[id] = gray
		path = append(path, id)

		st, _ := stages.Get(id)
		for _, dep := range st.DependsOn {
			if !stages.Has(dep) {
				continue
			}
			switch color[dep] {
			case gray:
				// Found a cycle: slice the path from the first occurrence.
				for i, onPath := range path {
					if onPath == dep {
						return append([]string{}, path[i:]...)
					}
				}
			case white:
				if cycle := dfs(dep); cycle != nil {
					return cycle
				}
			}
		}

		path = path[:len(path)-1]
		color[id] = black
		return nil
	}

	for _, id := range stages.IDs() {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// ReadyTasks returns the IDs eligible for dispatch right now: status Pending
// and every dependency Done or Skipped. Tasks with no dependencies are ready
// as soon as they are Pending. Order is stage insertion order; the result may
// be empty.
func ReadyTasks(stages *state.StageSet) []string {
	var ready []string
	for _, id := range stages.IDs() {
		st, _ := stages.Get(id)
		if st.Status != state.StagePending {
			continue
		}
		ok := true
		for _, dep := range st.DependsOn {
			depStage, exists := stages.Get(dep)
			if !exists || !depStage.Status.Satisfies() {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, id)
		}
	}
	return ready
}

// DeriveStatus recomputes the aggregate project status wholesale from the
// stage mapping; it is never patched incrementally.
//
//   - Completed iff every stage is Done or Skipped.
//   - else Blocked iff at least one stage is Failed, the ready set is empty,
//     and no stage is InProgress: failure has stalled all forward progress.
//   - else Active.
func DeriveStatus(stages *state.StageSet) state.ProjectStatus {
	if stages.Len() == 0 {
		return state.ProjectActive
	}

	allDone := true
	anyFailed := false
	anyInProgress := false
	for _, id := range stages.IDs() {
		st, _ := stages.Get(id)
		if !st.Status.Satisfies() {
			allDone = false
		}
		switch st.Status {
		case state.StageFailed:
			anyFailed = true
		case state.StageInProgress:
			anyInProgress = true
		}
	}

	if allDone {
		return state.ProjectCompleted
	}
	if anyFailed && !anyInProgress && len(ReadyTasks(stages)) == 0 {
		return state.ProjectBlocked
	}
	return state.ProjectActive
}

// Forest is the display view of the dependency graph: a forest rooted at
// tasks with no dependencies, plus any task unreachable from a root.
// Orphans are reported, never silently dropped.
type Forest struct {
	Roots    []string
	Children map[string][]string // dependency ID -> tasks it unblocks
	Orphans  []string
}

// BuildForest reconstructs the forest view. Children edges point downstream
// (from a dependency to its dependents), in stage insertion order.
func BuildForest(stages *state.StageSet) Forest {
	f := Forest{Children: map[string][]string{}}

	for _, id := range stages.IDs() {
		st, _ := stages.Get(id)
		if len(st.DependsOn) == 0 {
			f.Roots = append(f.Roots, id)
		}
		for _, dep := range st.DependsOn {
			if stages.Has(dep) {
				f.Children[dep] = append(f.Children[dep], id)
			}
		}
	}

	// Anything not reachable from a root was orphaned by a cycle that never
	// committed or by an external edit of the record.
	reachable := map[string]bool{}
	var walk func(id string)
	walk = func(id string) {
		if reachable[id] {
			return
		}
		reachable[id] = true
		for _, child := range f.Children[id] {
			walk(child)
		}
	}
	for _, root := range f.Roots {
		walk(root)
	}
	for _, id := range stages.IDs() {
		if !reachable[id] {
			f.Orphans = append(f.Orphans, id)
		}
	}
	return f
}
