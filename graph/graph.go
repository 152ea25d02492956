// Package graph owns the storage<->execution transformation for workflow
// graphs and the shape invariants checked when one is loaded, grounded on
// the reference implementation's flow.Convert/flow.Validate pair.
package graph

import (
	"fmt"

	"github.com/flowcraft/engine/model"
)

// ToExecutionEdges renames connection fields to the execution-view edge
// form, defaulting empty handle names to model.DefaultHandle.
func ToExecutionEdges(connections []model.Connection) []model.Edge {
	edges := make([]model.Edge, 0, len(connections))
	for _, c := range connections {
		from := c.FromOutput
		if from == "" {
			from = model.DefaultHandle
		}
		to := c.ToInput
		if to == "" {
			to = model.DefaultHandle
		}
		edges = append(edges, model.Edge{
			Source:       c.FromNodeId,
			Target:       c.ToNodeId,
			SourceHandle: from,
			TargetHandle: to,
		})
	}
	return edges
}

// Validate enforces the shape invariants a loaded graph must satisfy:
// every node type belongs to the registered enumeration, and every
// connection references two nodes present in the same workflow.
func Validate(nodes []model.Node, edges []model.Edge) error {
	nodeIds := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if !model.IsRegisteredNodeType(n.Type) {
			return model.ConfigError{Message: fmt.Sprintf("unknown node type %q for node %s", n.Type, n.Id)}
		}
		nodeIds[n.Id] = true
	}
	for _, e := range edges {
		if !nodeIds[e.Source] {
			return model.ConfigError{Message: fmt.Sprintf("connection references unknown source node %q", e.Source)}
		}
		if !nodeIds[e.Target] {
			return model.ConfigError{Message: fmt.Sprintf("connection references unknown target node %q", e.Target)}
		}
	}
	return nil
}

// Store is the read side of the persistence adapter the graph model needs:
// component G implements this.
type Store interface {
	LoadGraph(workflowId string, ownerId string) (*model.Graph, error)
}

// Load fetches a workflow's full graph and validates its shape. NotFound
// propagates unchanged from the store; a shape violation is a ConfigError.
func Load(store Store, workflowId string, ownerId string) (*model.Graph, error) {
	g, err := store.LoadGraph(workflowId, ownerId)
	if err != nil {
		return nil, err
	}
	if err := Validate(g.Nodes, g.Edges); err != nil {
		return nil, err
	}
	return g, nil
}
