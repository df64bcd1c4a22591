package telematics

import (
	"math/rand"
	"time"

	"github.com/verimotive/claims-engine/internal/domain/telematics"
)

// SynthesizeSeries generates a plausible multi-day driving series for a
// driver with no recorded telemetry. Seeded from the driver ID so repeated
// generation for the same driver is reproducible; speed, rpm, throttle and
// engine temperature stay smoothly correlated.
func SynthesizeSeries(driverID int64, end time.Time, days int, resolution time.Duration) []telematics.DrivingSample {
	rng := rand.New(rand.NewSource(driverID))

	points := int((time.Duration(days) * 24 * time.Hour) / resolution)
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	samples := make([]telematics.DrivingSample, 0, points)
	fuel := 1.0
	for i := 0; i < points; i++ {
		speed := clip(45+15*rng.NormFloat64(), 0, 95)
		rpm := clip(speed*50+500+200*rng.NormFloat64(), 700, 5000)
		throttle := clip(speed/120+0.1*rng.NormFloat64(), 0, 1)

		braking := 0.0
		if rng.Float64() < 0.1 {
			braking = clip(0.3+0.2*rng.NormFloat64(), 0, 1)
		}

		steering := clip(0.2*rng.NormFloat64(), -1, 1)
		lateral := clip(0.5*steering+0.1*rng.NormFloat64(), -1, 1)

		fuel = clip(fuel-0.0002*speed, 0, 1)
		if fuel < 0.2 && rng.Float64() < 0.3 {
			fuel = 1.0
		}

		temp := clip(80+rpm/50+3*rng.NormFloat64(), 40, 110)

		samples = append(samples, telematics.DrivingSample{
			Timestamp:        start.Add(time.Duration(i) * resolution),
			Speed:            speed,
			RPM:              rpm,
			Throttle:         throttle,
			BrakingIntensity: braking,
			SteeringAngle:    steering,
			LateralAccel:     lateral,
			FuelLevel:        fuel,
			EngineTemp:       temp,
		})
	}
	return samples
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
