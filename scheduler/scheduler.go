// Package scheduler computes a topological execution order over a
// workflow's nodes and connections, detecting cycles before any node
// runs and including disconnected nodes in the result.
package scheduler

import (
	"fmt"

	"github.com/flowcraft/engine/model"
)

// Sort returns the input nodes in an order such that for every edge
// source->target, source appears before target. Nodes with no mutual
// dependency may appear in either relative order. Returns model.CycleError
// if the edges contain a cycle.
func Sort(nodes []model.Node, edges []model.Edge) ([]model.Node, error) {
	if len(edges) == 0 {
		// Empty-connection fast path: the spec requires the input order be
		// preserved exactly, rather than routing it through Kahn's algorithm
		// (which would still produce a valid, but not necessarily identical,
		// permutation when there are no constraints at all).
		out := make([]model.Node, len(nodes))
		copy(out, nodes)
		return out, nil
	}

	byId := make(map[string]model.Node, len(nodes))
	for _, n := range nodes {
		byId[n.Id] = n
	}

	adj := make(map[string][]string)
	indegree := make(map[string]int)
	seen := make(map[string]bool)

	addNode := func(id string) {
		if !seen[id] {
			seen[id] = true
			indegree[id] = 0
		}
	}
	for _, n := range nodes {
		addNode(n.Id)
	}
	// Isolated-node inclusion: every input node is seeded above with
	// indegree 0, so nodes with no incident edge are emitted by the sort.
	// They also get a synthetic self-reference, which adds no indegree and
	// is skipped during relaxation below.
	connected := make(map[string]bool)
	for _, e := range edges {
		connected[e.Source] = true
		connected[e.Target] = true
	}
	for _, n := range nodes {
		if !connected[n.Id] {
			adj[n.Id] = append(adj[n.Id], n.Id)
		}
	}
	for _, e := range edges {
		addNode(e.Source)
		addNode(e.Target)
		adj[e.Source] = append(adj[e.Source], e.Target)
		indegree[e.Target]++
	}

	queue := make([]string, 0, len(seen))
	for id := range seen {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	var order []string
	visitedCount := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		visitedCount++
		for _, next := range adj[id] {
			if next == id {
				// self-reference sentinel for an isolated node: already
				// emitted, nothing to relax.
				continue
			}
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if visitedCount != len(seen) {
		return nil, model.CycleError{Message: "workflow graph contains a cycle"}
	}

	// Deterministic identifier-to-node mapping: dedupe by first occurrence
	// (defensive; each id is emitted once by the loop above) and drop any
	// id that doesn't correspond to an input node.
	result := make([]model.Node, 0, len(nodes))
	emitted := make(map[string]bool, len(nodes))
	for _, id := range order {
		if emitted[id] {
			continue
		}
		n, ok := byId[id]
		if !ok {
			continue
		}
		emitted[id] = true
		result = append(result, n)
	}
	if len(result) != len(nodes) {
		return nil, fmt.Errorf("scheduler: resolved %d nodes, expected %d", len(result), len(nodes))
	}
	return result, nil
}
