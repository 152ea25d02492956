package analytics

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowcraft/engine/model"
)

func TestLogFileDataCollectorRecordsSuccessAndFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	collector, err := NewLogFileDataCollector(path)
	require.NoError(t, err)

	collector.RecordNodeEvent("wf-1", "exec-1", "n1", model.NodeTypeHttpRequest, OutcomeSuccess, map[string]any{"status": 200}, "")
	collector.RecordNodeEvent("wf-1", "exec-1", "n2", model.NodeTypeSwitch, OutcomeFailure, nil, "branch not found")
	require.NoError(t, collector.logger.Sync())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []map[string]any
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 2)

	require.Equal(t, "success", lines[0]["msg"])
	require.Equal(t, "n1", lines[0]["nodeId"])
	require.EqualValues(t, 1, lines[0]["seq"])
	require.NotContains(t, lines[0], "reason")

	require.Equal(t, "failure", lines[1]["msg"])
	require.Equal(t, "n2", lines[1]["nodeId"])
	require.EqualValues(t, 2, lines[1]["seq"])
	require.Equal(t, "branch not found", lines[1]["reason"])
}
