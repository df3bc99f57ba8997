package frame

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Times travel as msgpack timestamps and decode in UTC.

type panelWire struct {
	Times   []time.Time `msgpack:"times"`
	Assets  []string    `msgpack:"assets"`
	Classes []float64   `msgpack:"classes"`
	Values  [][]float64 `msgpack:"values"`
}

type tableWire struct {
	Times  []time.Time `msgpack:"times"`
	Assets []string    `msgpack:"assets"`
	Values [][]float64 `msgpack:"values"`
}

type seriesWire struct {
	Times  []time.Time `msgpack:"times"`
	Values []float64 `msgpack:"values"`
}

// EncodePanel serializes a panel with msgpack.
func EncodePanel(p *Panel) ([]byte, error) {
	w := panelWire{
		Times:   make([]time.Time, p.Len()),
		Assets:  make([]string, p.Len()),
		Classes: p.Classes(),
		Values:  make([][]float64, p.Len()),
	}
	for i, k := range p.keys {
		w.Times[i] = k.Time
		w.Assets[i] = k.Asset
		w.Values[i] = p.Row(i)
	}
	return msgpack.Marshal(&w)
}

// DecodePanel restores a panel written by EncodePanel.
func DecodePanel(data []byte) (*Panel, error) {
	var w panelWire
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode panel: %w", err)
	}
	if len(w.Times) != len(w.Assets) {
		return nil, fmt.Errorf("%w: %d times but %d assets", ErrInvalidShape, len(w.Times), len(w.Assets))
	}
	keys := make([]Key, len(w.Times))
	for i := range keys {
		keys[i] = Key{Time: w.Times[i].UTC(), Asset: w.Assets[i]}
	}
	return NewPanel(keys, w.Classes, w.Values)
}

// EncodeWeightTable serializes a weight table with msgpack.
func EncodeWeightTable(t *WeightTable) ([]byte, error) {
	w := tableWire{
		Times:  t.Times(),
		Assets: t.Assets(),
		Values: make([][]float64, t.Rows()),
	}
	for i := range w.Values {
		w.Values[i] = t.Row(i)
	}
	return msgpack.Marshal(&w)
}

// DecodeWeightTable restores a table written by EncodeWeightTable.
func DecodeWeightTable(data []byte) (*WeightTable, error) {
	var w tableWire
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode weight table: %w", err)
	}
	return NewWeightTable(inUTC(w.Times), w.Assets, w.Values)
}

// EncodeSeries serializes a series with msgpack.
func EncodeSeries(s *Series) ([]byte, error) {
	return msgpack.Marshal(&seriesWire{Times: s.Times(), Values: s.Values()})
}

// DecodeSeries restores a series written by EncodeSeries.
func DecodeSeries(data []byte) (*Series, error) {
	var w seriesWire
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode series: %w", err)
	}
	return NewSeries(inUTC(w.Times), w.Values)
}

func inUTC(times []time.Time) []time.Time {
	out := make([]time.Time, len(times))
	for i, t := range times {
		out[i] = t.UTC()
	}
	return out
}
