package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sweep metrics
var (
	// SweepDuration tracks how long a sweep takes, prompt wait included
	SweepDuration prometheus.Histogram

	// FilesFound records the recursive count shown to the user, per set
	FilesFound *prometheus.GaugeVec

	// FilesRemovedTotal tracks files removed per set
	FilesRemovedTotal *prometheus.CounterVec

	// BytesFreedTotal tracks bytes freed per set
	BytesFreedTotal *prometheus.CounterVec

	// RemoveErrorsTotal tracks failed removals per set
	RemoveErrorsTotal *prometheus.CounterVec

	// SkippedTotal tracks glob matches the safety validator refused
	SkippedTotal *prometheus.CounterVec

	// SweepLastRunTimestamp records Unix timestamp of the last sweep
	SweepLastRunTimestamp prometheus.Gauge

	// SweepLastChoice marks the choice of the last sweep with 1
	SweepLastChoice *prometheus.GaugeVec

	// DiskFreeBytes records free space on the swept filesystem after a sweep
	DiskFreeBytes prometheus.Gauge

	// DiskUsedPercent records usage of the swept filesystem after a sweep
	DiskUsedPercent prometheus.Gauge

	choiceMutex sync.Mutex
)

// initSweepMetrics initializes all sweep metrics
func initSweepMetrics() {
	SweepDuration = NewDurationHistogram(
		"logsweep_duration_seconds",
		"Duration of a sweep in seconds.",
	)

	FilesFound = NewSizeGaugeVec(
		"logsweep_files_found",
		"Matching files counted (recursively) at the start of the last sweep.",
		[]string{"set"},
	)

	FilesRemovedTotal = NewCounterVec(
		"logsweep_files_removed_total",
		"Total number of files removed by logsweep.",
		[]string{"set"},
	)

	BytesFreedTotal = NewCounterVec(
		"logsweep_bytes_freed_total",
		"Total bytes freed by logsweep.",
		[]string{"set"},
	)

	RemoveErrorsTotal = NewCounterVec(
		"logsweep_remove_errors_total",
		"Total number of removals that failed.",
		[]string{"set"},
	)

	SkippedTotal = NewCounterVec(
		"logsweep_skipped_total",
		"Total number of matches skipped by the safety validator.",
		[]string{"set", "reason"},
	)

	SweepLastRunTimestamp = NewSizeGauge(
		"logsweep_last_run_timestamp",
		"Timestamp of the last sweep (Unix epoch seconds).",
	)

	SweepLastChoice = NewGaugeVec(
		"logsweep_last_choice",
		"Choice made at the last sweep prompt (1 = active).",
		[]string{"choice"},
	)

	DiskFreeBytes = NewSizeGauge(
		"logsweep_disk_free_bytes",
		"Free bytes on the filesystem holding the swept tree.",
	)

	DiskUsedPercent = NewSizeGauge(
		"logsweep_disk_used_percent",
		"Used percentage of the filesystem holding the swept tree.",
	)
}

// registerSweepMetrics registers all sweep metrics with reg
func registerSweepMetrics(reg prometheus.Registerer) {
	reg.MustRegister(SweepDuration)
	reg.MustRegister(FilesFound)
	reg.MustRegister(FilesRemovedTotal)
	reg.MustRegister(BytesFreedTotal)
	reg.MustRegister(RemoveErrorsTotal)
	reg.MustRegister(SkippedTotal)
	reg.MustRegister(SweepLastRunTimestamp)
	reg.MustRegister(SweepLastChoice)
	reg.MustRegister(DiskFreeBytes)
	reg.MustRegister(DiskUsedPercent)
}

// SetLastChoice resets the choice gauges, then sets the given one to 1
func SetLastChoice(choice string) {
	choiceMutex.Lock()
	defer choiceMutex.Unlock()

	SweepLastChoice.Reset()
	SweepLastChoice.WithLabelValues(choice).Set(1)
}

// RecordSweepRun updates the last run timestamp to current time
func RecordSweepRun() {
	SweepLastRunTimestamp.Set(float64(time.Now().Unix()))
}

// RecordFound sets the counted size of a set
func RecordFound(set string, count int) {
	FilesFound.WithLabelValues(set).Set(float64(count))
}

// RecordRemoval records one removed file
func RecordRemoval(set string, bytes int64) {
	FilesRemovedTotal.WithLabelValues(set).Inc()
	BytesFreedTotal.WithLabelValues(set).Add(float64(bytes))
}

// RecordRemoveError records one failed removal
func RecordRemoveError(set string) {
	RemoveErrorsTotal.WithLabelValues(set).Inc()
}

// RecordSkip records one match refused by the validator
func RecordSkip(set, reason string) {
	SkippedTotal.WithLabelValues(set, reason).Inc()
}

// RecordDiskUsage sets the filesystem gauges
func RecordDiskUsage(freeBytes int64, usedPercent float64) {
	DiskFreeBytes.Set(float64(freeBytes))
	DiskUsedPercent.Set(usedPercent)
}
