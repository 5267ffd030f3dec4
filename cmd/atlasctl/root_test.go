package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

type country struct {
	code, name string
	lon, lat   float64
	values     []float64
}

var countries = []country{
	{"AUT", "Austria", 14.55, 47.52, []float64{100, 110, 120, 130, 140, 150, 160}},
	{"BEL", "Belgium", 4.47, 50.5, []float64{300, 310, 320, 330, 340, 350, 360}},
	{"CHL", "Chile", -71, -35, []float64{500, 510, 520, 530, 540, 550, 560}},
}

func featureCollection(scale float64) string {
	var feats []string
	for _, c := range countries {
		props := []string{fmt.Sprintf(`"Country": %q`, c.name)}
		for i, v := range c.values {
			props = append(props, fmt.Sprintf(`"MSW_%d": %g`, 2004+2*i, v*scale))
		}
		feats = append(feats, fmt.Sprintf(
			`{"type":"Feature","id":%q,"properties":{%s},"geometry":{"type":"Point","coordinates":[%g,%g]}}`,
			c.code, strings.Join(props, ","), c.lon, c.lat))
	}
	return `{"type":"FeatureCollection","features":[` + strings.Join(feats, ",") + `]}`
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MSWKgPerCapita.geojson"), []byte(featureCollection(1)), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MSWKgPerCapRecov.geojson"), []byte(featureCollection(0.5)), 0o600))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"attributes", "stats", "render", "legend"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("data-dir"))
}

func TestAttributesCommand(t *testing.T) {
	dir := fixtureDir(t)
	out, err := run(t, "attributes", "--marker", "MSW", filepath.Join(dir, "MSWKgPerCapita.geojson"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "0\tMSW_2004\t2004", lines[0])
	assert.Equal(t, "6\tMSW_2016\t2016", lines[6])
}

func TestAttributesCommand_NoMatchingKeys(t *testing.T) {
	dir := fixtureDir(t)
	_, err := run(t, "attributes", "--marker", "Recycled", filepath.Join(dir, "MSWKgPerCapita.geojson"))
	assert.ErrorIs(t, err, domain.ErrNoAttributes)
}

func TestStatsCommand(t *testing.T) {
	dir := fixtureDir(t)
	out, err := run(t, "--data-dir", dir, "stats", "generated", "--attribute", "MSW_2004")
	require.NoError(t, err)

	assert.Contains(t, out, "MSW_2004")
	assert.Contains(t, out, "100")
	assert.Contains(t, out, "300") // midpoint of 100 and 500
	assert.Contains(t, out, "500")
	assert.NotContains(t, out, "recovered")
}

func TestStatsCommand_UnknownDataset(t *testing.T) {
	dir := fixtureDir(t)
	_, err := run(t, "--data-dir", dir, "stats", "landfilled", "--attribute", "")
	assert.ErrorIs(t, err, domain.ErrDatasetNotFound)
}

func TestRenderCommand(t *testing.T) {
	dir := fixtureDir(t)
	path := filepath.Join(t.TempDir(), "map.svg")
	_, err := run(t, "--data-dir", dir, "render", "--index", "2", "--out", path, "--width", "800", "--height", "500", "--zoom", "3")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	svg := string(data)
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, `width="800"`)
	assert.Contains(t, svg, ">2008</text>")
	assert.Contains(t, svg, "Austria (2008)")
}

func TestRenderCommand_IndexOutOfRange(t *testing.T) {
	dir := fixtureDir(t)
	_, err := run(t, "--data-dir", dir, "render", "--index", "7", "--out", "-", "--width", "0", "--height", "0", "--zoom", "0")
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestLegendCommand(t *testing.T) {
	dir := fixtureDir(t)
	out, err := run(t, "--data-dir", dir, "legend", "recovered", "--attribute", "MSW_2016", "--out", "")
	require.NoError(t, err)
	assert.Contains(t, out, `class="attribute-legend"`)
	assert.Contains(t, out, `id="max"`)
	assert.Contains(t, out, `id="mean"`)
	assert.Contains(t, out, `id="min"`)
}
