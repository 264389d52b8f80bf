package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lherron/datasetprep/internal/metrics"
)

func TestWriteFile(t *testing.T) {
	run := metrics.NewRun()
	run.SetRemaps(13)
	run.SetIconAliases(4)
	run.SetMissingImages(2)
	run.SetTableRows("questions", 1200)
	run.SetTableRows("categories", 40)

	start := time.Unix(1700000000, 0)
	run.Finish(start, start.Add(1500*time.Millisecond))

	n, err := testutil.GatherAndCount(run.Registry())
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	path := filepath.Join(t.TempDir(), "textfile", "datasetprep.prom")
	require.NoError(t, run.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "datasetprep_canonicalized_top_levels 13")
	assert.Contains(t, text, `datasetprep_table_rows{table="questions"} 1200`)
	assert.Contains(t, text, "datasetprep_run_duration_seconds 1.5")
}
