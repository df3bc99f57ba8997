package frame

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestPanelCodec_RoundTrip(t *testing.T) {
	keys := []Key{
		{Time: day(0), Asset: "A"},
		{Time: day(0), Asset: "B"},
	}
	p, err := NewPanel(keys, []float64{1, 2, 3, 4, 5}, [][]float64{
		{0.1, 0.1, 0.2, 0.3, 0.3},
		{0.5, 0.2, 0.1, 0.1, 0.1},
	})
	require.NoError(t, err)

	data, err := EncodePanel(p)
	require.NoError(t, err)

	decoded, err := DecodePanel(data)
	require.NoError(t, err)

	assert.Equal(t, p.Classes(), decoded.Classes())
	require.Equal(t, p.Len(), decoded.Len())
	for i := 0; i < p.Len(); i++ {
		assert.True(t, p.Key(i).Time.Equal(decoded.Key(i).Time))
		assert.Equal(t, p.Key(i).Asset, decoded.Key(i).Asset)
		assert.Equal(t, p.Row(i), decoded.Row(i))
	}
}

func TestWeightTableCodec_KeepsNaN(t *testing.T) {
	w, err := NewWeightTable([]time.Time{day(0)}, []string{"A", "B"}, [][]float64{{1, math.NaN()}})
	require.NoError(t, err)

	data, err := EncodeWeightTable(w)
	require.NoError(t, err)

	decoded, err := DecodeWeightTable(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, decoded.Assets())
	assert.Equal(t, 1.0, decoded.At(0, 0))
	assert.True(t, math.IsNaN(decoded.At(0, 1)))
}

func TestSeriesCodec_RoundTrip(t *testing.T) {
	s, err := NewSeries([]time.Time{day(0), day(1)}, []float64{0.05, 0.07})
	require.NoError(t, err)

	data, err := EncodeSeries(s)
	require.NoError(t, err)

	decoded, err := DecodeSeries(data)
	require.NoError(t, err)
	assert.Equal(t, s.Values(), decoded.Values())
}

func TestDecodePanel_Garbage(t *testing.T) {
	_, err := DecodePanel([]byte{0xc1})
	assert.Error(t, err)
}

func TestDecodeWeightTable_RejectsUnsortedAssets(t *testing.T) {
	data, err := msgpack.Marshal(&tableWire{
		Times:  []time.Time{day(0)},
		Assets: []string{"Z", "A"},
		Values: [][]float64{{0.7, 0.3}},
	})
	require.NoError(t, err)

	_, err = DecodeWeightTable(data)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestSeriesCodec_KeepsDistantTimes(t *testing.T) {
	far := time.Date(2500, time.January, 1, 0, 0, 0, 0, time.UTC)
	s, err := NewSeries([]time.Time{day(0), far}, []float64{0.1, 0.2})
	require.NoError(t, err)

	data, err := EncodeSeries(s)
	require.NoError(t, err)
	decoded, err := DecodeSeries(data)
	require.NoError(t, err)

	v, ok := decoded.Value(far)
	require.True(t, ok)
	assert.Equal(t, 0.2, v)
}
