package manifest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/pkg/manifest"
)

const doc = `
source: OECD municipal waste statistics
poll_interval: 10m
datasets:
  - name: generated
    kind: generated
    source: MSWKgPerCapita.geojson
    marker: MSWKgPerCapita
  - name: recovered
    kind: recovered
    source: https://example.org/MSWPercRecov.geojson
    marker: MSW
    poll: true
`

func TestParse(t *testing.T) {
	m, err := manifest.Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "OECD municipal waste statistics", m.Source)
	assert.Equal(t, 10*time.Minute, m.PollInterval)
	require.Len(t, m.Datasets, 2)
	assert.Equal(t, domain.DatasetSpec{
		Name:   "generated",
		Kind:   domain.KindGenerated,
		Source: "MSWKgPerCapita.geojson",
		Marker: "MSWKgPerCapita",
	}, m.Datasets[0].DatasetSpec)
	assert.False(t, m.Datasets[0].Poll)
	assert.True(t, m.Datasets[1].Poll)
}

func TestParseDefaultsPollInterval(t *testing.T) {
	m, err := manifest.Parse([]byte("datasets: []\n"))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, m.PollInterval)
}

func TestValidateAggregatesErrors(t *testing.T) {
	_, err := manifest.Parse([]byte(`
datasets:
  - name: a
    kind: landfilled
    source: a.geojson
  - name: a
    kind: generated
    source: a.geojson
    marker: MSW
    poll: true
`))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `kind "landfilled"`)
	assert.Contains(t, msg, "datasets[0].marker is required")
	assert.Contains(t, msg, `name "a" is duplicated`)
	assert.Contains(t, msg, "polls a non-http source")
}

func TestSelect(t *testing.T) {
	m, err := manifest.Parse([]byte(doc))
	require.NoError(t, err)

	all, err := m.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := m.Select([]string{"recovered"})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "recovered", one[0].Name)

	_, err = m.Select([]string{"landfilled"})
	assert.ErrorIs(t, err, domain.ErrDatasetNotFound)
}

func TestPolled(t *testing.T) {
	m, err := manifest.Parse([]byte(doc))
	require.NoError(t, err)
	polled := m.Polled()
	require.Len(t, polled, 1)
	assert.Equal(t, "recovered", polled[0].Name)
}

func TestSplitNames(t *testing.T) {
	assert.Equal(t, []string{"generated", "recovered"}, manifest.SplitNames(" generated, ,recovered "))
	assert.Nil(t, manifest.SplitNames(""))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	m, err := manifest.Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Datasets, 2)

	_, err = manifest.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
