package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	// Registry holds every logsweep metric. It is separate from the
	// default registry so the textfile export carries only sweep metrics.
	Registry *prometheus.Registry
)

// Init initializes all metrics subsystems and registers them
// This function is safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		Registry = prometheus.NewRegistry()

		initSweepMetrics()
		registerSweepMetrics(Registry)

		// Zero values so every series appears in the export even when a
		// run removes nothing
		SweepLastRunTimestamp.Set(0)
		SweepLastChoice.WithLabelValues("none").Set(0)
	})
}

// WriteTextfile writes the current metric values in the node_exporter
// textfile collector format. The write is atomic (temp file + rename).
func WriteTextfile(path string) error {
	Init()
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
