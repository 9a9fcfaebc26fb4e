// Package cnclog provides the process-wide structured logger for the CNC
// controller and its collaborators.
package cnclog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the global logger instance. Every package logs through it or
// one of the With* helpers below rather than fmt.Println/log.Printf.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLevel sets the logging level from a level name ("debug", "info", ...).
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetOutput sets the log output destination.
func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// SetJSONFormat switches the formatter to JSON, for log aggregation.
func SetJSONFormat() {
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// WithDomain returns a logger scoped to a domain_id.
func WithDomain(domainID string) *logrus.Entry {
	return Logger.WithField("domain_id", domainID)
}

// WithCUC returns a logger scoped to a cuc_id.
func WithCUC(cucID string) *logrus.Entry {
	return Logger.WithField("cuc_id", cucID)
}

// WithNode returns a logger scoped to a bridge node_id.
func WithNode(nodeID uint32) *logrus.Entry {
	return Logger.WithField("node_id", nodeID)
}

// WithStream returns a logger scoped to a stream_id.
func WithStream(streamID string) *logrus.Entry {
	return Logger.WithField("stream_id", streamID)
}

// WithOperation returns a logger scoped to a pipeline operation name.
func WithOperation(operation string) *logrus.Entry {
	return Logger.WithField("operation", operation)
}
