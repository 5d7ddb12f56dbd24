package impact

import (
	"testing"

	"ecoQuestAPI/internal/challenge"
)

func TestSum(t *testing.T) {
	bundles := []challenge.EcoImpact{
		{
			Co2SavedKg:           1.234,
			Co2AbsorbedKgPerYear: 10,
			WaterSavedLiters:     50.005,
			PlasticSavedGrams:    120.4,
			EnergySavedKwh:       2.5,
			TreesEquivalent:      0.048,
		},
		{
			Co2SavedKg:           2.111,
			Co2AbsorbedKgPerYear: 5.5,
			WaterSavedLiters:     49.995,
			PlasticSavedGrams:    30.3,
			EnergySavedKwh:       1.25,
			TreesEquivalent:      0.048,
		},
	}

	got := Sum(bundles)

	if got.Co2SavedKg != 3.35 {
		t.Errorf("Co2SavedKg = %v, want 3.35", got.Co2SavedKg)
	}
	if got.Co2AbsorbedKgPerYear != 15.5 {
		t.Errorf("Co2AbsorbedKgPerYear = %v, want 15.5", got.Co2AbsorbedKgPerYear)
	}
	if got.TotalCo2Impact != 18.85 {
		t.Errorf("TotalCo2Impact = %v, want 18.85", got.TotalCo2Impact)
	}
	if got.WaterSavedLiters != 100 {
		t.Errorf("WaterSavedLiters = %v, want 100", got.WaterSavedLiters)
	}
	if got.PlasticSavedGrams != 151 {
		t.Errorf("PlasticSavedGrams = %v, want 151 whole grams", got.PlasticSavedGrams)
	}
	if got.PlasticSavedKg != 0.15 {
		t.Errorf("PlasticSavedKg = %v, want 0.15", got.PlasticSavedKg)
	}
	if got.EnergySavedKwh != 3.75 {
		t.Errorf("EnergySavedKwh = %v, want 3.75", got.EnergySavedKwh)
	}
	if got.TreesEquivalent != 0.1 {
		t.Errorf("TreesEquivalent = %v, want 0.1", got.TreesEquivalent)
	}
}

func TestSumPlasticKgDerivesFromUnroundedGrams(t *testing.T) {
	// 3 x 166.5g sums to 499.5: grams round to 500, kg comes from the
	// raw sum, 0.4995 -> 0.5.
	bundles := []challenge.EcoImpact{
		{PlasticSavedGrams: 166.5},
		{PlasticSavedGrams: 166.5},
		{PlasticSavedGrams: 166.5},
	}

	got := Sum(bundles)

	if got.PlasticSavedGrams != 500 {
		t.Errorf("PlasticSavedGrams = %v, want 500", got.PlasticSavedGrams)
	}
	if got.PlasticSavedKg != 0.5 {
		t.Errorf("PlasticSavedKg = %v, want 0.5", got.PlasticSavedKg)
	}
}

func TestSumEmpty(t *testing.T) {
	got := Sum(nil)
	if got != (Totals{}) {
		t.Errorf("Sum(nil) = %+v, want zero totals", got)
	}
}
