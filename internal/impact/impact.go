package impact

import (
	"math"

	"ecoQuestAPI/internal/challenge"
)

// Totals is the aggregate ecological impact of all approved submissions,
// rounded for presentation. PlasticSavedGrams keeps whole grams; the kg
// figure is derived from the unrounded sum.
type Totals struct {
	Co2SavedKg           float64 `json:"co2SavedKg"`
	Co2AbsorbedKgPerYear float64 `json:"co2AbsorbedKgPerYear"`
	TotalCo2Impact       float64 `json:"totalCo2Impact"`
	WaterSavedLiters     float64 `json:"waterSavedLiters"`
	PlasticSavedGrams    float64 `json:"plasticSavedGrams"`
	PlasticSavedKg       float64 `json:"plasticSavedKg"`
	EnergySavedKwh       float64 `json:"energySavedKwh"`
	TreesEquivalent      float64 `json:"treesEquivalent"`
}

// Sum adds up the impact bundles of approved submissions' challenges.
// Callers pass one bundle per approved submission; submissions whose
// challenge has no impact metadata contribute nothing and are simply
// not included.
func Sum(bundles []challenge.EcoImpact) Totals {
	var co2Saved, co2Absorbed, water, plastic, energy, trees float64
	for _, b := range bundles {
		co2Saved += b.Co2SavedKg
		co2Absorbed += b.Co2AbsorbedKgPerYear
		water += b.WaterSavedLiters
		plastic += b.PlasticSavedGrams
		energy += b.EnergySavedKwh
		trees += b.TreesEquivalent
	}

	return Totals{
		Co2SavedKg:           round2(co2Saved),
		Co2AbsorbedKgPerYear: round2(co2Absorbed),
		TotalCo2Impact:       round2(co2Saved + co2Absorbed),
		WaterSavedLiters:     round2(water),
		PlasticSavedGrams:    math.Round(plastic),
		PlasticSavedKg:       round2(plastic / 1000),
		EnergySavedKwh:       round2(energy),
		TreesEquivalent:      round2(trees),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
