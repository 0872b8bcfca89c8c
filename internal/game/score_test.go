package game

import (
	"testing"
	"time"
)

func TestComputeScoreGolden(t *testing.T) {
	// 10 elements, no merges, level-1 reactor, energy 100, 118-element catalog:
	// 1000 + 0 + 100 + log10(101)*100 + (10/118*100)*50 = 1724 after one floor.
	p := NewProgression()
	p.ElementsFound = 10
	p.MergeCount = 0
	p.FusionEnergy = 100
	r := NewReactor(time.Now())

	got := ComputeScore(p, r, 118)
	if got != 1724 {
		t.Fatalf("ComputeScore = %d, want 1724", got)
	}
}

func TestComputeScoreSingleFloor(t *testing.T) {
	// Flooring each term separately would lose fractional carries; the
	// terms here sum to an integer only when floored once at the end.
	p := NewProgression()
	p.ElementsFound = 3
	p.MergeCount = 1
	p.FusionEnergy = 9 // log10(10) = 1 exactly
	r := NewReactor(time.Now())
	r.Level = 2

	// 300 + 50 + 400 + 100 + (3/118*100)*50 = 850 + 127.118... -> 977
	got := ComputeScore(p, r, 118)
	if got != 977 {
		t.Fatalf("ComputeScore = %d, want 977", got)
	}
}

func TestCategoryScores(t *testing.T) {
	p := NewProgression()
	p.ElementsFound = 12
	p.MergeCount = 4
	p.FusionEnergy = 250.7
	r := NewReactor(time.Now())
	r.Level = 3

	scores := CategoryScores(p, r, 118)
	if scores[CategoryElementsFound] != 12 {
		t.Errorf("elementsFound = %d, want 12", scores[CategoryElementsFound])
	}
	if scores[CategoryTopFusions] != 4 {
		t.Errorf("topFusions = %d, want 4", scores[CategoryTopFusions])
	}
	if scores[CategoryHighestEnergy] != 250 {
		t.Errorf("highestEnergy = %d, want 250", scores[CategoryHighestEnergy])
	}
	if scores[CategoryReactorLevel] != 3 {
		t.Errorf("reactorLevel = %d, want 3", scores[CategoryReactorLevel])
	}
	if scores[CategoryTotalScore] != ComputeScore(p, r, 118) {
		t.Errorf("totalScore mismatch with ComputeScore")
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("category %q should be valid", c)
		}
	}
	if Category("bogus").Valid() {
		t.Error("bogus category should not be valid")
	}
}
