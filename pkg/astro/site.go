package astro

// Site is a ground observatory location. Longitude is positive east.
type Site struct {
	Name   string  `yaml:"name"`
	LatDeg float64 `yaml:"latitude"`
	LonDeg float64 `yaml:"longitude"`
	AltM   float64 `yaml:"altitude"`
}

// Keck returns the location of the W. M. Keck Observatory on Maunakea.
func Keck() Site {
	return Site{
		Name:   "Keck Observatory",
		LatDeg: 19.8283,
		LonDeg: -155.4783,
		AltM:   4160,
	}
}
