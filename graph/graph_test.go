package graph

import (
	"testing"

	"github.com/flowcraft/engine/model"
	"github.com/stretchr/testify/require"
)

func TestToExecutionEdgesDefaultsHandles(t *testing.T) {
	edges := ToExecutionEdges([]model.Connection{
		{FromNodeId: "n1", ToNodeId: "n2"},
		{FromNodeId: "n2", ToNodeId: "n3", FromOutput: "out1", ToInput: "in1"},
	})
	require.Len(t, edges, 2)
	require.Equal(t, model.Edge{Source: "n1", Target: "n2", SourceHandle: "main", TargetHandle: "main"}, edges[0])
	require.Equal(t, model.Edge{Source: "n2", Target: "n3", SourceHandle: "out1", TargetHandle: "in1"}, edges[1])
}

func TestValidateUnknownNodeType(t *testing.T) {
	nodes := []model.Node{{Id: "n1", Type: "NOT_A_TYPE"}}
	err := Validate(nodes, nil)
	require.Error(t, err)
	_, ok := err.(model.ConfigError)
	require.True(t, ok)
}

func TestValidateDanglingConnection(t *testing.T) {
	nodes := []model.Node{{Id: "n1", Type: model.NodeTypeManualTrigger}}
	edges := []model.Edge{{Source: "n1", Target: "ghost"}}
	err := Validate(nodes, edges)
	require.Error(t, err)
	_, ok := err.(model.ConfigError)
	require.True(t, ok)
}

func TestValidateOk(t *testing.T) {
	nodes := []model.Node{
		{Id: "n1", Type: model.NodeTypeManualTrigger},
		{Id: "n2", Type: model.NodeTypeHttpRequest},
	}
	edges := []model.Edge{{Source: "n1", Target: "n2"}}
	require.NoError(t, Validate(nodes, edges))
}
