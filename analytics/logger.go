// Package analytics is an optional execution-event sink: a JSON-lines
// audit trail of every node a workflow execution runs through, success
// or failure, for operators who want a durable record outside of the
// execution store's current-state snapshot.
package analytics

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/flowcraft/engine/model"
)

// Outcome is the terminal state of a single node's execution, as recorded
// in the audit trail.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

type LogFileDataCollector struct {
	fileName string
	logger   *zap.Logger
	seq      atomic.Uint64
}

func NewLogFileDataCollector(fileName string) (*LogFileDataCollector, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.StacktraceKey = ""
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	logFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	writer := zapcore.AddSync(logFile)
	core := zapcore.NewCore(fileEncoder, writer, zapcore.InfoLevel)
	return &LogFileDataCollector{
		fileName: fileName,
		logger:   zap.New(core),
	}, nil
}

// RecordNodeEvent appends one line to the audit trail. data and reason are
// mutually exclusive depending on outcome: data carries the node's output
// on success, reason carries the error message on failure. Every entry
// carries a sequence number local to this collector, so a reader can
// detect gaps left by a crash between the append and an fsync, something
// the timestamp alone can't reveal since two entries can share a
// millisecond.
func (lc *LogFileDataCollector) RecordNodeEvent(workflowId, executionId, nodeId string, nodeType model.NodeType, outcome Outcome, data map[string]any, reason string) {
	fields := []zap.Field{
		zap.Uint64("seq", lc.seq.Add(1)),
		zap.String("workflowId", workflowId),
		zap.String("executionId", executionId),
		zap.String("nodeId", nodeId),
		zap.String("nodeType", string(nodeType)),
	}
	if outcome == OutcomeFailure {
		fields = append(fields, zap.String("reason", reason))
	} else if data != nil {
		fields = append(fields, zap.Any("data", data))
	}
	lc.logger.Info(string(outcome), fields...)
}
