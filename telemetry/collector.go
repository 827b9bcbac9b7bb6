// Package telemetry samples pool occupancy and writes it out as CSV.
package telemetry

import (
	"sort"

	"github.com/gekko3d/sparks/pool"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// PoolSample is one observation of one emitter's ring.
type PoolSample struct {
	Frame     uint64  `csv:"frame"`
	EmitterID string  `csv:"emitter_id"`
	Name      string  `csv:"name"`
	Active    int     `csv:"active"`
	New       int     `csv:"new"`
	Free      int     `csv:"free"`
	Retired   int     `csv:"retired"`
	Live      int     `csv:"live"`
	Dropped   uint64  `csv:"dropped"`
	SimTime   float64 `csv:"sim_time"`
}

func Sample(frame uint64, id uuid.UUID, name string, p *pool.Pool) PoolSample {
	c := p.Counts()
	return PoolSample{
		Frame:     frame,
		EmitterID: id.String(),
		Name:      name,
		Active:    c.Active,
		New:       c.New,
		Free:      c.Free,
		Retired:   c.Retired,
		Live:      p.Live(),
		Dropped:   p.Dropped(),
		SimTime:   p.SimulationTime(),
	}
}

// EmitterSummary describes the live-particle distribution of one emitter over
// all recorded samples.
type EmitterSummary struct {
	EmitterID string
	Name      string
	Samples   int
	MeanLive  float64
	StdLive   float64
	P90Live   float64
	MaxLive   int
	Dropped   uint64
}

type series struct {
	name    string
	live    []float64
	maxLive int
	dropped uint64
}

// Collector accumulates samples across frames. It is not safe for concurrent use.
type Collector struct {
	order  []uuid.UUID
	series map[uuid.UUID]*series
}

func NewCollector() *Collector {
	return &Collector{series: make(map[uuid.UUID]*series)}
}

func (c *Collector) Record(frame uint64, id uuid.UUID, name string, p *pool.Pool) PoolSample {
	s := Sample(frame, id, name, p)

	ser, ok := c.series[id]
	if !ok {
		ser = &series{name: name}
		c.series[id] = ser
		c.order = append(c.order, id)
	}
	ser.live = append(ser.live, float64(s.Live))
	if s.Live > ser.maxLive {
		ser.maxLive = s.Live
	}
	ser.dropped = s.Dropped
	return s
}

// Summary returns one entry per emitter in first-recorded order.
func (c *Collector) Summary() []EmitterSummary {
	out := make([]EmitterSummary, 0, len(c.order))
	for _, id := range c.order {
		ser := c.series[id]
		sum := EmitterSummary{
			EmitterID: id.String(),
			Name:      ser.name,
			Samples:   len(ser.live),
			MaxLive:   ser.maxLive,
			Dropped:   ser.dropped,
		}
		if len(ser.live) > 0 {
			sum.MeanLive = stat.Mean(ser.live, nil)
			sorted := append([]float64(nil), ser.live...)
			sort.Float64s(sorted)
			sum.P90Live = stat.Quantile(0.9, stat.Empirical, sorted, nil)
		}
		if len(ser.live) > 1 {
			sum.StdLive = stat.StdDev(ser.live, nil)
		}
		out = append(out, sum)
	}
	return out
}

func (c *Collector) Reset() {
	c.order = c.order[:0]
	clear(c.series)
}
