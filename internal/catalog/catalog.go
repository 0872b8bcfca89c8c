// Package catalog holds the immutable periodic-table reference data the game
// runs against. The catalog is loaded once at startup and never mutated; when
// the data file is missing or corrupt the game falls back to a small embedded
// element set so it stays playable in a degraded mode.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
)

// Element is a single periodic-table entry. Number defines fusion ordering,
// Mass drives the fusion energy cost. Descriptive fields are optional in the
// data file and filled by Normalize.
type Element struct {
	Number      int      `json:"number"`
	Symbol      string   `json:"symbol"`
	Name        string   `json:"name"`
	Mass        float64  `json:"mass"`
	Category    string   `json:"category"`
	Color       string   `json:"color"`
	Facts       []string `json:"facts,omitempty"`
	Uses        []string `json:"uses,omitempty"`
	Discovery   string   `json:"discovery,omitempty"`
	Description string   `json:"description,omitempty"`
}

// FusionCost is the energy required to fuse two copies of this element:
// floor(mass * 5). Computed in fixed point so the cost is identical on every
// platform regardless of float formatting.
func (e *Element) FusionCost() int64 {
	return decimal.NewFromFloat(e.Mass).Mul(decimal.NewFromInt(5)).Floor().IntPart()
}

// Catalog indexes elements by symbol and atomic number.
type Catalog struct {
	elements []Element
	bySymbol map[string]*Element
	byNumber map[int]*Element
}

// New builds a catalog from an element slice and runs the normalization pass.
func New(elements []Element) (*Catalog, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("catalog: element list is empty")
	}

	c := &Catalog{
		elements: make([]Element, len(elements)),
		bySymbol: make(map[string]*Element, len(elements)),
		byNumber: make(map[int]*Element, len(elements)),
	}
	copy(c.elements, elements)
	sort.Slice(c.elements, func(i, j int) bool {
		return c.elements[i].Number < c.elements[j].Number
	})

	for i := range c.elements {
		el := &c.elements[i]
		if el.Number <= 0 {
			return nil, fmt.Errorf("catalog: element %q has invalid number %d", el.Symbol, el.Number)
		}
		if el.Symbol == "" {
			return nil, fmt.Errorf("catalog: element %d has no symbol", el.Number)
		}
		if el.Mass <= 0 {
			return nil, fmt.Errorf("catalog: element %q has invalid mass %v", el.Symbol, el.Mass)
		}
		if _, dup := c.bySymbol[el.Symbol]; dup {
			return nil, fmt.Errorf("catalog: duplicate symbol %q", el.Symbol)
		}
		if _, dup := c.byNumber[el.Number]; dup {
			return nil, fmt.Errorf("catalog: duplicate atomic number %d", el.Number)
		}
		c.bySymbol[el.Symbol] = el
		c.byNumber[el.Number] = el
	}

	c.normalize()
	return c, nil
}

// Load reads a JSON element array from path. Any error falls back to the
// embedded default set so startup never blocks on a bad data file; the
// returned error reports what went wrong with the file, with a usable catalog
// alongside it.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		cat, _ := New(DefaultElements())
		return cat, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var elements []Element
	if err := json.Unmarshal(raw, &elements); err != nil {
		cat, _ := New(DefaultElements())
		return cat, fmt.Errorf("catalog: decode %s: %w", path, err)
	}

	cat, err := New(elements)
	if err != nil {
		fallback, _ := New(DefaultElements())
		return fallback, err
	}
	return cat, nil
}

// Default returns the embedded fallback catalog.
func Default() *Catalog {
	cat, err := New(DefaultElements())
	if err != nil {
		// The embedded set is validated by tests; this cannot happen at runtime.
		panic(err)
	}
	return cat
}

// Size returns the number of elements in the catalog.
func (c *Catalog) Size() int {
	return len(c.elements)
}

// Elements returns all elements in atomic-number order.
func (c *Catalog) Elements() []Element {
	out := make([]Element, len(c.elements))
	copy(out, c.elements)
	return out
}

// BySymbol returns the element with the given symbol, or nil.
func (c *Catalog) BySymbol(symbol string) *Element {
	return c.bySymbol[symbol]
}

// ByNumber returns the element with the given atomic number, or nil.
func (c *Catalog) ByNumber(number int) *Element {
	return c.byNumber[number]
}

// Next returns the element whose atomic number is one above the given
// symbol's, or nil when the symbol is unknown or has no successor.
func (c *Catalog) Next(symbol string) *Element {
	el := c.bySymbol[symbol]
	if el == nil {
		return nil
	}
	return c.byNumber[el.Number+1]
}

// Highest returns the element with the largest atomic number.
func (c *Catalog) Highest() *Element {
	return &c.elements[len(c.elements)-1]
}

// normalize fills missing descriptive fields with deterministic defaults.
// The per-symbol tables are intentionally partial; the generic fallback keys
// on number and category.
func (c *Catalog) normalize() {
	for i := range c.elements {
		el := &c.elements[i]
		if len(el.Facts) == 0 {
			el.Facts = defaultFacts(el)
		}
		if len(el.Uses) == 0 {
			el.Uses = defaultUses(el)
		}
		if el.Discovery == "" {
			el.Discovery = defaultDiscovery(el)
		}
		if el.Description == "" {
			el.Description = fmt.Sprintf("%s is element number %d in the periodic table.", el.Name, el.Number)
		}
	}
}

func defaultFacts(el *Element) []string {
	if facts, ok := knownFacts[el.Symbol]; ok {
		return facts
	}
	return []string{
		fmt.Sprintf("This element has atomic number %d", el.Number),
		fmt.Sprintf("It belongs to the %s category", el.Category),
	}
}

func defaultUses(el *Element) []string {
	if uses, ok := knownUses[el.Symbol]; ok {
		return uses
	}
	return []string{"Scientific research", "Industrial applications"}
}

func defaultDiscovery(el *Element) string {
	if info, ok := knownDiscovery[el.Symbol]; ok {
		return info
	}
	return "Discovered through scientific research"
}

// CategoryNames maps category tags to display names.
var CategoryNames = map[string]string{
	"alkali":     "Alkali Metals",
	"alkaline":   "Alkaline Earth",
	"transition": "Transition Metals",
	"metal":      "Basic Metals",
	"metalloid":  "Metalloids",
	"nonmetal":   "Nonmetals",
	"halogen":    "Halogens",
	"noble":      "Noble Gases",
	"lanthanide": "Lanthanides",
	"actinide":   "Actinides",
}
