package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

func TestPointRoundTrip(t *testing.T) {
	p := domain.GeoPoint{Lon: 14.55, Lat: 47.52}
	data, err := EncodePoint(p)
	require.NoError(t, err)

	got, err := DecodePoint(data)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestDecodePointRejectsGarbage(t *testing.T) {
	_, err := DecodePoint([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestValuesDropAbsent(t *testing.T) {
	data, err := encodeValues(map[string]domain.Value{
		"MSW_2000": domain.Num(0),
		"MSW_2005": {},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"MSW_2000":0}`, string(data))

	vals, err := decodeValues(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Value{"MSW_2000": domain.Num(0)}, vals)
}

func TestFeatureRowsKeepOrder(t *testing.T) {
	ds := &domain.Dataset{Features: []domain.Feature{
		{ID: "B", Keys: []string{"Country", "MSW_2000"}},
		{ID: "A", Keys: []string{"Country", "MSW_2000"}},
	}}
	rows, err := featureRows(ds)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "B", rows[0].id)
	assert.Equal(t, []string{"Country", "MSW_2000"}, rows[1].keys)
}
