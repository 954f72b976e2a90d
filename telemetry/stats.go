package telemetry

import "log/slog"

// WindowStats is one flushed stats window, CSV-exportable via gocsv.
type WindowStats struct {
	WindowStart         int64   `csv:"window_start"`
	WindowEnd           int64   `csv:"window_end"`
	SimTimeSec          float64 `csv:"sim_time_sec"`
	Population          int     `csv:"population"`
	ExpressionsComputed int     `csv:"expressions_computed"`
	CacheHits           int     `csv:"cache_hits"`
	BatchSlices         int     `csv:"batch_slices"`
	SingleSlices        int     `csv:"single_slices"`
	Fallbacks           int     `csv:"fallbacks"`
	StressApplied       int     `csv:"stress_applied"`
	StressRemoved       int     `csv:"stress_removed"`
	StageAdvances       int     `csv:"stage_advances"`
	Deaths              int     `csv:"deaths"`
	Harvests            int     `csv:"harvests"`
	HarvestGrams        float64 `csv:"harvest_grams"`
	CacheSize           int     `csv:"cache_size"`
}

// CacheHitRate returns the window's cache hit fraction.
func (s WindowStats) CacheHitRate() float64 {
	total := s.ExpressionsComputed + s.CacheHits
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_end", s.WindowEnd),
		slog.Int("population", s.Population),
		slog.Int("expressions", s.ExpressionsComputed),
		slog.Int("cache_hits", s.CacheHits),
		slog.Float64("cache_hit_rate", s.CacheHitRate()),
		slog.Int("batch_slices", s.BatchSlices),
		slog.Int("single_slices", s.SingleSlices),
		slog.Int("fallbacks", s.Fallbacks),
		slog.Int("stage_advances", s.StageAdvances),
		slog.Int("deaths", s.Deaths),
		slog.Int("harvests", s.Harvests),
		slog.Int("cache_size", s.CacheSize),
	)
}
