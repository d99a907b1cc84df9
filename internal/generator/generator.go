// Package generator produces synthetic water-usage observations from
// parameterized random distributions. It performs no I/O.
package generator

import (
	"math/rand"
	"time"

	"github.com/aquatel/aquatel/pkg/types"
)

// Distribution parameters for the synthetic data model.
const (
	// TemperatureMean and TemperatureStdDev parameterize the normal
	// distribution ambient temperature is drawn from.
	TemperatureMean   = 20.0
	TemperatureStdDev = 5.0

	// ConsumptionPerPerson is the baseline liters per household member.
	ConsumptionPerPerson = 50.0

	// ConsumptionNoiseStdDev is the std-dev of the zero-mean noise added
	// to baseline consumption.
	ConsumptionNoiseStdDev = 10.0

	// AnomalyProbability is the chance any record is flagged anomalous.
	AnomalyProbability = 0.05

	// AnomalySpike is the consumption increase applied to flagged
	// records that draw the non-zero perturbation.
	AnomalySpike = 250.0

	// MinHouseholdSize and MaxHouseholdSize bound the uniform integer
	// household size.
	MinHouseholdSize = 1
	MaxHouseholdSize = 5
)

// Generator produces batches of synthetic observations.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator backed by rng. Passing the source
// explicitly makes output sequences reproducible in tests; a nil rng
// gets a time-seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Generate produces n observations in generation order. Each input field
// is drawn independently per record. n <= 0 yields an empty slice.
func (g *Generator) Generate(n int) []types.Observation {
	if n <= 0 {
		return []types.Observation{}
	}

	out := make([]types.Observation, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.next())
	}
	return out
}

// next draws a single observation.
func (g *Generator) next() types.Observation {
	household := MinHouseholdSize + g.rng.Intn(MaxHouseholdSize-MinHouseholdSize+1)

	obs := types.Observation{
		TimeOfDay:     types.TimesOfDay[g.rng.Intn(len(types.TimesOfDay))],
		Season:        types.Seasons[g.rng.Intn(len(types.Seasons))],
		Temperature:   TemperatureMean + g.rng.NormFloat64()*TemperatureStdDev,
		HouseholdSize: household,
		DayOfWeek:     types.DaysOfWeek[g.rng.Intn(len(types.DaysOfWeek))],
	}

	consumption := float64(household)*ConsumptionPerPerson + g.rng.NormFloat64()*ConsumptionNoiseStdDev

	if g.rng.Float64() < AnomalyProbability {
		obs.IsAnomaly = 1
		// The spike amount is drawn uniformly from {0, AnomalySpike}:
		// half of flagged records keep their baseline value. This is
		// intentional behavior of the data model, kept pending product
		// clarification.
		if g.rng.Intn(2) == 1 {
			consumption += AnomalySpike
		}
	}

	obs.WaterConsumption = consumption
	return obs
}
