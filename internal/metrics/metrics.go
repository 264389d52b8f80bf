// Package metrics records run gauges and writes them for the node exporter
// textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "datasetprep"

// Run holds the gauges of a single prepare run.
type Run struct {
	registry *prometheus.Registry

	remaps        prometheus.Gauge
	iconAliases   prometheus.Gauge
	missingImages prometheus.Gauge
	tableRows     *prometheus.GaugeVec
	duration      prometheus.Gauge
	lastSuccess   prometheus.Gauge
}

// NewRun creates a registry with every gauge registered.
func NewRun() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		remaps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "canonicalized_top_levels",
			Help:      "Top-level categories re-keyed to canonical ids.",
		}),
		iconAliases: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "icon_aliases_created",
			Help:      "Category icons copied under their canonical id.",
		}),
		missingImages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "missing_attachment_images",
			Help:      "Attachment rows whose image file is absent.",
		}),
		tableRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_rows",
			Help:      "Row count per dataset table.",
		}, []string{"table"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the prepare run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last prepare run finished.",
		}),
	}
	r.registry.MustRegister(r.remaps, r.iconAliases, r.missingImages, r.tableRows, r.duration, r.lastSuccess)
	return r
}

// Registry exposes the underlying registry.
func (r *Run) Registry() *prometheus.Registry { return r.registry }

// SetRemaps records how many top-level categories were re-keyed.
func (r *Run) SetRemaps(n int) { r.remaps.Set(float64(n)) }

// SetIconAliases records how many icon aliases were created.
func (r *Run) SetIconAliases(n int) { r.iconAliases.Set(float64(n)) }

// SetMissingImages records how many attachment images were absent.
func (r *Run) SetMissingImages(n int) { r.missingImages.Set(float64(n)) }

// SetTableRows records the row count of one dataset table.
func (r *Run) SetTableRows(table string, n int) {
	r.tableRows.WithLabelValues(table).Set(float64(n))
}

// Finish records the duration since start and the completion time.
func (r *Run) Finish(start, end time.Time) {
	r.duration.Set(end.Sub(start).Seconds())
	r.lastSuccess.Set(float64(end.Unix()))
}

// WriteFile writes the registry in text exposition format. The file is
// replaced atomically by the client library.
func (r *Run) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
