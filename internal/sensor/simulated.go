package sensor

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// SimulatedSource produces a bounded random walk around nominal values.
type SimulatedSource struct {
	mu    sync.Mutex
	rng   *rand.Rand
	cur   Reading
	clock func() time.Time
}

// NewSimulatedSource creates a source seeded with seed.
func NewSimulatedSource(seed uint64, clock func() time.Time) *SimulatedSource {
	if clock == nil {
		clock = time.Now
	}
	return &SimulatedSource{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		cur:   Nominal(),
		clock: clock,
	}
}

// walk bounds for the simulated fields.
var walks = []struct {
	field    Field
	step     float64
	min, max float64
}{
	{FieldTemperature, 0.3, 15, 35},
	{FieldHumidity, 1, 30, 70},
	{FieldPressure, 0.5, 980, 1040},
	{FieldLightLevel, 25, 0, 1000},
	{FieldAirQuality, 2, 0, 100},
	{FieldCO2, 20, 350, 2000},
	{FieldSoilMoisture, 0.5, 0, 100},
	{FieldUVIndex, 0.2, 0, 11},
}

// Read advances the walk one step.
func (s *SimulatedSource) Read(ctx context.Context) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range walks {
		v := s.cur.Get(w.field) + (s.rng.Float64()*2-1)*w.step
		s.cur.Set(w.field, min(max(v, w.min), w.max))
	}
	s.cur.Motion = s.rng.Float64() < 0.1
	s.cur.Raining = s.rng.Float64() < 0.05
	s.cur.Time = s.clock()

	return s.cur, nil
}
