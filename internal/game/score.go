package game

import "math"

// Category is a leaderboard scoring dimension.
type Category string

const (
	CategoryTotalScore    Category = "totalScore"
	CategoryElementsFound Category = "elementsFound"
	CategoryTopFusions    Category = "topFusions"
	CategoryHighestEnergy Category = "highestEnergy"
	CategoryReactorLevel  Category = "reactorLevel"
)

// Categories lists every scoring dimension in submission order.
var Categories = []Category{
	CategoryTotalScore,
	CategoryElementsFound,
	CategoryTopFusions,
	CategoryHighestEnergy,
	CategoryReactorLevel,
}

// CategoryNames maps categories to display names.
var CategoryNames = map[Category]string{
	CategoryTotalScore:    "Total Score",
	CategoryElementsFound: "Elements Discovered",
	CategoryTopFusions:    "Fusion Reactions",
	CategoryHighestEnergy: "Energy Achieved",
	CategoryReactorLevel:  "Reactor Level",
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := CategoryNames[c]
	return ok
}

// ComputeScore derives the single comparable total score from the current
// state. All terms accumulate in float and the floor is applied exactly once
// at the end so the value reproduces across implementations.
func ComputeScore(p *Progression, r *Reactor, catalogSize int) int64 {
	score := float64(p.ElementsFound) * 100
	score += float64(p.MergeCount) * 50
	score += math.Pow(float64(r.Level), 2) * 100
	score += math.Log10(p.FusionEnergy+1) * 100
	score += (float64(p.ElementsFound) / float64(catalogSize) * 100) * 50
	return int64(math.Floor(score))
}

// CategoryScores returns the per-category submission values. Categories with
// a zero value are skipped at submission time.
func CategoryScores(p *Progression, r *Reactor, catalogSize int) map[Category]int64 {
	return map[Category]int64{
		CategoryTotalScore:    ComputeScore(p, r, catalogSize),
		CategoryElementsFound: int64(p.ElementsFound),
		CategoryTopFusions:    int64(p.MergeCount),
		CategoryHighestEnergy: int64(math.Floor(p.FusionEnergy)),
		CategoryReactorLevel:  int64(r.Level),
	}
}
