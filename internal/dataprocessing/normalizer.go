package dataprocessing

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"airmarket/pkg/contracts/domain"
)

// Canonical field names
const (
	FieldDate            = "date"
	FieldDepartureCity   = "departure_city"
	FieldDestinationCity = "destination_city"
	FieldAirline         = "airline"
	FieldFlightNumber    = "flight_number"
	FieldPrice           = "price"
	FieldCapacity        = "capacity"
	FieldOccupancy       = "occupancy"
)

// sourceFieldKeys lists, per source, the raw keys that may carry each
// canonical field in order of preference. Sources not listed here use the
// canonical names directly.
var sourceFieldKeys = map[string]map[string][]string{
	domain.SourceAviationStack: {
		FieldDate:            {"flight_date"},
		FieldDepartureCity:   {"departure.airport", "departure.iata"},
		FieldDestinationCity: {"arrival.airport", "arrival.iata"},
		FieldAirline:         {"airline.name"},
		FieldFlightNumber:    {"flight.iata", "flight.number"},
	},
	domain.SourceOpenSky: {
		FieldDate:            {"firstSeen"},
		FieldDepartureCity:   {"estDepartureAirport"},
		FieldDestinationCity: {"estArrivalAirport"},
		FieldAirline:         {"callsignPrefix"},
		FieldFlightNumber:    {"callsign"},
	},
}

// SimulationRange bounds the values drawn for missing commercial fields.
// Max bounds are exclusive for integers.
type SimulationRange struct {
	PriceMin     float64
	PriceMax     float64
	CapacityMin  int
	CapacityMax  int
	OccupancyMin int
	OccupancyMax int
}

// DefaultSimulationRange is used for live providers lacking commercial data.
// Occupancy is drawn independently of capacity and may exceed it.
var DefaultSimulationRange = SimulationRange{
	PriceMin:     200,
	PriceMax:     800,
	CapacityMin:  100,
	CapacityMax:  300,
	OccupancyMin: 50,
	OccupancyMax: 300,
}

// NormalizeStats describes the outcome of one normalization pass
type NormalizeStats struct {
	Input     int
	Output    int
	Skipped   int
	Simulated int
}

// Normalizer converts provider records into canonical flight records
type Normalizer struct {
	logger *slog.Logger
	seed   uint64
	now    func() time.Time
	ranges map[string]SimulationRange
}

// NormalizerOption configures a Normalizer
type NormalizerOption func(*Normalizer)

// WithSimulationSeed fixes the seed for simulated commercial fields
func WithSimulationSeed(seed uint64) NormalizerOption {
	return func(n *Normalizer) { n.seed = seed }
}

// WithNormalizerClock sets the clock used for records without a date
func WithNormalizerClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) { n.now = now }
}

// WithSimulationRange overrides the simulation range for a source
func WithSimulationRange(source string, r SimulationRange) NormalizerOption {
	return func(n *Normalizer) { n.ranges[source] = r }
}

// NewNormalizer creates a normalizer
func NewNormalizer(logger *slog.Logger, opts ...NormalizerOption) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Normalizer{
		logger: logger.With(slog.String("component", "normalizer")),
		seed:   42,
		now:    time.Now,
		ranges: map[string]SimulationRange{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts raw records to canonical records. Malformed rows are
// skipped individually; it never fails and may return an empty slice.
func (n *Normalizer) Normalize(raw []domain.RawRecord) []domain.FlightRecord {
	records, _ := n.NormalizeWithStats(raw)
	return records
}

// NormalizeWithStats is Normalize plus counters for logging and metrics
func (n *Normalizer) NormalizeWithStats(raw []domain.RawRecord) ([]domain.FlightRecord, NormalizeStats) {
	stats := NormalizeStats{Input: len(raw)}
	rng := rand.New(rand.NewPCG(n.seed, n.seed^0x9e3779b97f4a7c15))
	today := domain.Day(n.now())

	records := make([]domain.FlightRecord, 0, len(raw))
	for i, r := range raw {
		rec, simulated, err := n.normalizeOne(r, rng, today)
		if err != nil {
			stats.Skipped++
			n.logger.Debug("skipping malformed record",
				slog.Int("index", i),
				slog.String("source", r.Source),
				slog.String("reason", err.Error()))
			continue
		}
		if simulated {
			stats.Simulated++
		}
		records = append(records, rec)
	}
	stats.Output = len(records)

	if stats.Skipped > 0 {
		n.logger.Warn("malformed records skipped",
			slog.Int("skipped", stats.Skipped),
			slog.Int("kept", stats.Output))
	}

	return records, stats
}

func (n *Normalizer) normalizeOne(r domain.RawRecord, rng *rand.Rand, today time.Time) (domain.FlightRecord, bool, error) {
	lookup := func(field string) (interface{}, bool) {
		keys := []string{field}
		if mapped, ok := sourceFieldKeys[r.Source][field]; ok {
			keys = mapped
		}
		for _, k := range keys {
			if v, ok := r.Fields[k]; ok && !isBlank(v) {
				return v, true
			}
		}
		return nil, false
	}

	var rec domain.FlightRecord

	rec.Date = today
	if v, ok := lookup(FieldDate); ok {
		d, err := toDay(v)
		if err != nil {
			return rec, false, fmt.Errorf("%s: %w", FieldDate, err)
		}
		rec.Date = d
	}

	rec.DepartureCity = textOr(lookup(FieldDepartureCity))
	rec.DestinationCity = textOr(lookup(FieldDestinationCity))
	rec.Airline = textOr(lookup(FieldAirline))
	rec.FlightNumber = textOr(lookup(FieldFlightNumber))

	sim := n.simulationRange(r.Source)
	simulated := false

	if v, ok := lookup(FieldPrice); ok {
		price, err := toFloat(v)
		if err != nil {
			return rec, false, fmt.Errorf("%s: %w", FieldPrice, err)
		}
		rec.Price = domain.Round2(price)
	} else {
		rec.Price = domain.Round2(sim.PriceMin + (sim.PriceMax-sim.PriceMin)*rng.Float64())
		simulated = true
	}

	if v, ok := lookup(FieldCapacity); ok {
		capacity, err := toInt(v)
		if err != nil {
			return rec, false, fmt.Errorf("%s: %w", FieldCapacity, err)
		}
		rec.Capacity = capacity
	} else {
		rec.Capacity = drawInt(rng, sim.CapacityMin, sim.CapacityMax)
		simulated = true
	}

	if v, ok := lookup(FieldOccupancy); ok {
		occupancy, err := toInt(v)
		if err != nil {
			return rec, false, fmt.Errorf("%s: %w", FieldOccupancy, err)
		}
		rec.Occupancy = occupancy
	} else {
		rec.Occupancy = drawInt(rng, sim.OccupancyMin, sim.OccupancyMax)
		simulated = true
	}

	rec.Route = domain.RouteLabel(rec.DepartureCity, rec.DestinationCity)
	return rec, simulated, nil
}

func (n *Normalizer) simulationRange(source string) SimulationRange {
	if r, ok := n.ranges[source]; ok {
		return r
	}
	return DefaultSimulationRange
}

func drawInt(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo)
}

func isBlank(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case *string:
		return val == nil || strings.TrimSpace(*val) == ""
	}
	return false
}

// textOr returns the trimmed text of v, or UnknownValue when absent
func textOr(v interface{}, ok bool) string {
	if !ok {
		return domain.UnknownValue
	}
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case *string:
		s = *val
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprint(val)
	}
	if s = strings.TrimSpace(s); s == "" {
		return domain.UnknownValue
	}
	return s
}

func toFloat(v interface{}) (float64, error) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case int32:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(val, "$")), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", val)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value")
	}
	if f < 0 {
		return 0, fmt.Errorf("negative value %v", f)
	}
	return f, nil
}

func toInt(v interface{}) (int, error) {
	switch val := v.(type) {
	case int:
		if val < 0 {
			return 0, fmt.Errorf("negative value %d", val)
		}
		return val, nil
	case int64:
		if val < 0 {
			return 0, fmt.Errorf("negative value %d", val)
		}
		return int(val), nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %v", f)
	}
	return int(f), nil
}

var dateLayouts = []string{
	domain.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func toDay(v interface{}) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return time.Time{}, fmt.Errorf("zero time")
		}
		return domain.Day(val), nil
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return domain.Day(t), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", val)
	case int64, int, float64, json.Number:
		secs, err := toFloat(val)
		if err != nil || secs == 0 {
			return time.Time{}, fmt.Errorf("invalid unix timestamp %v", val)
		}
		return domain.Day(time.Unix(int64(secs), 0).UTC()), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}
