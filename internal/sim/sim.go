// Package sim generates deterministic synthetic measurements for a single
// cell and logger. Values are driven by a waveform of the timestamp so a run
// can be replayed exactly.
package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/danmuck/spsproto/internal/logging"
	"github.com/danmuck/spsproto/internal/protocol"
	"golang.org/x/exp/constraints"
)

// Waveform maps a timestamp to a unit signal.
type Waveform func(float64) float64

var sensors = map[string]protocol.MeasurementType{
	"power":   protocol.TypePower,
	"teros12": protocol.TypeTeros12,
	"teros21": protocol.TypeTeros21,
	"bme280":  protocol.TypeBME280,
}

type Simulation struct {
	Cell    uint32
	Logger  uint32
	Sensors []protocol.MeasurementType
	Fn      Waveform
}

// New validates sensor names. A nil fn uses math.Sin.
func New(cell, logger uint32, names []string, fn Waveform) (*Simulation, error) {
	if fn == nil {
		fn = math.Sin
	}
	s := &Simulation{Cell: cell, Logger: logger, Fn: fn}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		t, err := protocol.Lookup(sensors, "simulated sensor", name)
		if err != nil {
			return nil, err
		}
		s.Sensors = append(s.Sensors, t)
	}
	if len(s.Sensors) == 0 {
		return nil, fmt.Errorf("sim: no sensors selected")
	}
	return s, nil
}

func (s *Simulation) String() string {
	return fmt.Sprintf("Simulation(cell=%d, logger=%d, sensors=%v)", s.Cell, s.Logger, s.Sensors)
}

// Measure returns one measurement per configured sensor at ts, in sensor
// order.
func (s *Simulation) Measure(ts uint32) []protocol.Measurement {
	meta := protocol.Metadata{CellID: s.Cell, LoggerID: s.Logger, Timestamp: ts}
	v := s.Fn(float64(ts))
	out := make([]protocol.Measurement, 0, len(s.Sensors))
	for _, t := range s.Sensors {
		out = append(out, protocol.Measurement{Meta: meta, Payload: payload(t, v)})
	}
	return out
}

func payload(t protocol.MeasurementType, v float64) protocol.Payload {
	switch t {
	case protocol.TypePower:
		return protocol.PowerMeasurement{Voltage: v * 2, Current: v * 0.5}
	case protocol.TypeTeros12:
		return protocol.Teros12Measurement{
			VwcRaw: v*300 + 2500,
			VwcAdj: v*0.05 + 0.2,
			Temp:   v*5 + 25,
			Ec:     quantize[uint32](v*4+15, 0, math.MaxUint32),
		}
	case protocol.TypeTeros21:
		return protocol.Teros21Measurement{MatricPot: v*200 + 1000, Temp: v*5 + 25}
	case protocol.TypeBME280:
		return protocol.BME280Measurement{
			Pressure:    quantize[uint32](v*2000+43000, 0, math.MaxUint32),
			Temperature: quantize[int32](v*50+250, math.MinInt32, math.MaxInt32),
			Humidity:    quantize[uint32](v*200+2000, 0, math.MaxUint32),
		}
	default:
		panic(fmt.Sprintf("sim: no generator for %s", t))
	}
}

// quantize rounds v to the nearest integer in [lo, hi]. Out of range values
// clamp to the bound instead of wrapping.
func quantize[T constraints.Integer](v float64, lo, hi T) T {
	r := math.Round(v)
	if r < float64(lo) {
		return lo
	}
	if r > float64(hi) {
		return hi
	}
	return T(r)
}

// Encode serializes every measurement taken at ts.
func (s *Simulation) Encode(ts uint32) ([][]byte, error) {
	ms := s.Measure(ts)
	out := make([][]byte, 0, len(ms))
	for _, m := range ms {
		data, err := protocol.EncodeMeasurement(m)
		if err != nil {
			return nil, fmt.Errorf("sim: encode %s at %d: %w", m.Payload.Type(), ts, err)
		}
		out = append(out, data)
	}
	return out, nil
}

// Range encodes measurements for every step from start up to and including
// end.
func (s *Simulation) Range(start, end, step uint32) ([][]byte, error) {
	if step == 0 {
		return nil, fmt.Errorf("sim: step must be positive")
	}
	if end < start {
		return nil, fmt.Errorf("sim: end %d before start %d", end, start)
	}
	log := logging.For("sim")
	var out [][]byte
	for ts := uint64(start); ts <= uint64(end); ts += uint64(step) {
		batch, err := s.Encode(uint32(ts))
		if err != nil {
			return nil, err
		}
		log.Debug().Uint64("ts", ts).Int("count", len(batch)).Msg("simulated measurements")
		out = append(out, batch...)
	}
	log.Info().
		Uint32("cell", s.Cell).
		Uint32("logger", s.Logger).
		Int("total", len(out)).
		Msg("simulation complete")
	return out, nil
}
