package ingestion

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"airmarket/pkg/contracts/domain"
)

// PopularRoutes are generated on every synthetic day
var PopularRoutes = [][2]string{
	{"New York", "Los Angeles"},
	{"New York", "Chicago"},
	{"Los Angeles", "Chicago"},
	{"Chicago", "Miami"},
	{"Denver", "Seattle"},
	{"New York", "Miami"},
	{"Los Angeles", "Miami"},
	{"Atlanta", "New York"},
	{"Dallas", "Los Angeles"},
	{"Houston", "Chicago"},
}

// SampleCities is the city pool for random synthetic routes
var SampleCities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
	"Miami", "Atlanta", "Denver", "Seattle", "Portland",
}

// SampleAirlines is the carrier pool for synthetic flights
var SampleAirlines = []string{"American Airlines", "Delta", "United", "Southwest", "JetBlue"}

// Synthetic generation parameters
const (
	minExtraFlights = 20
	maxExtraFlights = 50

	minBasePrice    = 200.0
	maxBasePrice    = 800.0
	minPriceJitter  = -50.0
	maxPriceJitter  = 100.0
	weekendPremium  = 1.3
	summerPremium   = 1.2
	minCapacity     = 100
	maxCapacity     = 300 // exclusive
	minOccupancy    = 50
	minFlightNumber = 100
	maxFlightNumber = 9999 // exclusive
)

// SyntheticProvider produces a deterministic sample dataset. It never fails
// and is meant to be the last provider of a Chain.
type SyntheticProvider struct {
	seed uint64
	days int
	now  func() time.Time
}

// SyntheticOption configures a SyntheticProvider
type SyntheticOption func(*SyntheticProvider)

// WithSyntheticClock sets the time source that anchors the generated window
func WithSyntheticClock(now func() time.Time) SyntheticOption {
	return func(p *SyntheticProvider) { p.now = now }
}

// NewSyntheticProvider creates a generator covering the last days days up to
// and including today.
func NewSyntheticProvider(seed uint64, days int, opts ...SyntheticOption) *SyntheticProvider {
	p := &SyntheticProvider{seed: seed, days: max(days, 0), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider
func (p *SyntheticProvider) Name() string {
	return domain.SourceSynthetic
}

// FetchFlights implements Provider. The same seed, day count and clock day
// always produce the same records.
func (p *SyntheticProvider) FetchFlights(ctx context.Context) ([]domain.RawRecord, error) {
	rng := rand.New(rand.NewPCG(p.seed, p.seed))

	end := domain.Day(p.now())
	start := end.AddDate(0, 0, -p.days)

	records := make([]domain.RawRecord, 0, (p.days+1)*(len(PopularRoutes)+maxExtraFlights))
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, route := range PopularRoutes {
			records = append(records, p.flight(rng, day, route[0], route[1]))
		}

		extra := minExtraFlights + rng.IntN(maxExtraFlights-minExtraFlights+1)
		for i := 0; i < extra; i++ {
			departure := SampleCities[rng.IntN(len(SampleCities))]
			destination := SampleCities[rng.IntN(len(SampleCities)-1)]
			if destination == departure {
				destination = SampleCities[len(SampleCities)-1]
			}
			records = append(records, p.flight(rng, day, departure, destination))
		}
	}

	return records, nil
}

func (p *SyntheticProvider) flight(rng *rand.Rand, day time.Time, departure, destination string) domain.RawRecord {
	airline := SampleAirlines[rng.IntN(len(SampleAirlines))]
	flightNumber := fmt.Sprintf("%s%d", strings.ToUpper(airline[:2]), minFlightNumber+rng.IntN(maxFlightNumber-minFlightNumber))

	base := uniform(rng, minBasePrice, maxBasePrice)
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		base *= weekendPremium
	}
	if m := day.Month(); m >= time.June && m <= time.August {
		base *= summerPremium
	}
	price := domain.Round2(base + uniform(rng, minPriceJitter, maxPriceJitter))

	capacity := minCapacity + rng.IntN(maxCapacity-minCapacity)
	occupancy := minOccupancy + rng.IntN(capacity-minOccupancy)

	return domain.RawRecord{
		Source: domain.SourceSynthetic,
		Fields: map[string]interface{}{
			"date":             day,
			"departure_city":   departure,
			"destination_city": destination,
			"airline":          airline,
			"flight_number":    flightNumber,
			"price":            price,
			"capacity":         capacity,
			"occupancy":        occupancy,
		},
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
