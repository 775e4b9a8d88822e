package collision

import "time"

// DetectionStats describes one detection pass.
type DetectionStats struct {
	Duration time.Duration
	Proxies  int
	Pairs    int
	Rebuild  bool
}

// ResponseStats describes one response pass. Enters, Stays and Exits count
// dispatched pairs; Skipped counts pairs dropped because one side no longer
// resolved.
type ResponseStats struct {
	Enters  int
	Stays   int
	Exits   int
	Skipped int
}

// Stats receives per-tick numbers from the passes.
type Stats interface {
	ObserveDetection(DetectionStats)
	ObserveResponse(ResponseStats)
}
