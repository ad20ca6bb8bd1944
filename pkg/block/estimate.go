package block

import "fmt"

// Estimate is a time estimate in seconds.
type Estimate struct {
	ShutterOpen float64 `json:"shutter_open" yaml:"shutter_open"`
	WallClock   float64 `json:"wall_clock" yaml:"wall_clock"`
}

// Add returns the sum of two estimates.
func (e Estimate) Add(o Estimate) Estimate {
	return Estimate{ShutterOpen: e.ShutterOpen + o.ShutterOpen, WallClock: e.WallClock + o.WallClock}
}

func (e Estimate) String() string {
	return fmt.Sprintf("Shutter Open Time: %.0f s (%.1f hrs)\nWall Clock Time: %.0f s (%.1f hrs)",
		e.ShutterOpen, e.ShutterOpen/3600, e.WallClock, e.WallClock/3600)
}
