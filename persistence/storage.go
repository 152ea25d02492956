// Package persistence declares the storage-facing contracts the engine
// depends on: the graph CRUD adapter (component G). Concrete
// implementations live in sibling packages (persistence/redis is the
// reference one).
package persistence

import "github.com/flowcraft/engine/model"

// GraphStore is the persistence adapter's full surface: create, load,
// replace ("save"), and delete a workflow's graph.
type GraphStore interface {
	// CreateWorkflow seeds a new workflow owned by ownerId, with a single
	// INITIAL node at (0,0), per the lifecycle in the data model.
	CreateWorkflow(name string, ownerId string) (*model.Workflow, error)

	// LoadGraph fetches a workflow's nodes and connections (rendered as
	// edges), restricted to the owning user. Returns model.NotFoundError
	// if the workflow doesn't exist or isn't owned by ownerId.
	LoadGraph(workflowId string, ownerId string) (*model.Graph, error)

	// SaveGraph atomically replaces a workflow's node and connection sets.
	// Returns model.NotAuthorizedError if ownerId does not own the
	// workflow.
	SaveGraph(req model.SaveGraphRequest, ownerId string) (*model.Workflow, error)

	// DeleteWorkflow removes a workflow and cascades to its nodes and
	// connections.
	DeleteWorkflow(workflowId string, ownerId string) error
}
