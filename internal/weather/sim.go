package weather

// SimWeather is the weather as the simulation sees it.
type SimWeather struct {
	// RainfallMod scales a hex's annual rainfall when checking for rain water.
	RainfallMod float64 `json:"rainfall_mod"`
	Description string  `json:"description"`
}

// Neutral leaves rainfall unscaled.
var Neutral = SimWeather{RainfallMod: 1.0, Description: "fair weather"}

// seasonal baselines indexed by season (spring, summer, autumn, winter).
var seasonal = [4]SimWeather{
	{RainfallMod: 1.2, Description: "spring showers"},
	{RainfallMod: 0.8, Description: "dry summer heat"},
	{RainfallMod: 1.1, Description: "autumn rains"},
	{RainfallMod: 0.9, Description: "cold winter chill"},
}

// MapToSim converts conditions to simulation weather. With no conditions the seasonal
// baseline applies.
func MapToSim(c *Conditions, season uint8) SimWeather {
	if c == nil {
		if int(season) < len(seasonal) {
			return seasonal[season]
		}
		return Neutral
	}

	mod := 1.0
	switch {
	case c.IsStorm:
		mod = 2.0
	case c.IsRain && c.RainMM > 4:
		mod = 1.8
	case c.IsRain:
		mod = 1.5
	case c.IsSnow:
		mod = 0.75
	case c.Temp > 35:
		mod = 0.5
	}
	return SimWeather{RainfallMod: mod, Description: c.Description}
}
