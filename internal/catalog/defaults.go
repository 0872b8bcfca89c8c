package catalog

// DefaultElements is the embedded fallback set used when the element data
// file cannot be loaded. Twenty elements keeps the game playable offline.
func DefaultElements() []Element {
	return []Element{
		{Number: 1, Symbol: "H", Name: "Hydrogen", Category: "nonmetal", Mass: 1.008, Color: "#FF6B6B"},
		{Number: 2, Symbol: "He", Name: "Helium", Category: "noble", Mass: 4.0026, Color: "#FFD166"},
		{Number: 3, Symbol: "Li", Name: "Lithium", Category: "alkali", Mass: 6.94, Color: "#06D6A0"},
		{Number: 4, Symbol: "Be", Name: "Beryllium", Category: "alkaline", Mass: 9.0122, Color: "#118AB2"},
		{Number: 5, Symbol: "B", Name: "Boron", Category: "metalloid", Mass: 10.81, Color: "#EF476F"},
		{Number: 6, Symbol: "C", Name: "Carbon", Category: "nonmetal", Mass: 12.011, Color: "#073B4C"},
		{Number: 7, Symbol: "N", Name: "Nitrogen", Category: "nonmetal", Mass: 14.007, Color: "#118AB2"},
		{Number: 8, Symbol: "O", Name: "Oxygen", Category: "nonmetal", Mass: 15.999, Color: "#06D6A0"},
		{Number: 9, Symbol: "F", Name: "Fluorine", Category: "halogen", Mass: 18.998, Color: "#FFD166"},
		{Number: 10, Symbol: "Ne", Name: "Neon", Category: "noble", Mass: 20.180, Color: "#FF6B6B"},
		{Number: 11, Symbol: "Na", Name: "Sodium", Category: "alkali", Mass: 22.990, Color: "#06D6A0"},
		{Number: 12, Symbol: "Mg", Name: "Magnesium", Category: "alkaline", Mass: 24.305, Color: "#118AB2"},
		{Number: 13, Symbol: "Al", Name: "Aluminum", Category: "metal", Mass: 26.982, Color: "#EF476F"},
		{Number: 14, Symbol: "Si", Name: "Silicon", Category: "metalloid", Mass: 28.085, Color: "#073B4C"},
		{Number: 15, Symbol: "P", Name: "Phosphorus", Category: "nonmetal", Mass: 30.974, Color: "#118AB2"},
		{Number: 16, Symbol: "S", Name: "Sulfur", Category: "nonmetal", Mass: 32.06, Color: "#06D6A0"},
		{Number: 17, Symbol: "Cl", Name: "Chlorine", Category: "halogen", Mass: 35.45, Color: "#FFD166"},
		{Number: 18, Symbol: "Ar", Name: "Argon", Category: "noble", Mass: 39.948, Color: "#FF6B6B"},
		{Number: 19, Symbol: "K", Name: "Potassium", Category: "alkali", Mass: 39.098, Color: "#06D6A0"},
		{Number: 20, Symbol: "Ca", Name: "Calcium", Category: "alkaline", Mass: 40.078, Color: "#118AB2"},
	}
}

// Partial lookup tables for descriptive content. Symbols not listed here get
// the generic fallback text from normalize.
var knownFacts = map[string][]string{
	"H": {
		"Hydrogen is the most abundant element in the universe",
		"It makes up about 75% of all normal matter",
		"The Sun fuses hydrogen into helium",
	},
	"He": {
		"Helium is the second lightest element",
		"It was discovered on the Sun before Earth",
		"Helium balloons float because it's lighter than air",
	},
	"C": {
		"Carbon is the basis of all known life",
		"Diamonds are pure carbon in a crystal structure",
		"Carbon can form more compounds than any other element",
	},
	"O": {
		"Oxygen makes up about 21% of Earth's atmosphere",
		"It's essential for respiration in most living organisms",
		"Oxygen is the third most abundant element in the universe",
	},
	"Au": {
		"Gold is so malleable that one ounce can be stretched into a wire 50 miles long",
		"All the gold ever mined would fit into three Olympic-sized swimming pools",
		"Gold is chemically inert and doesn't rust or tarnish",
	},
	"Fe": {
		"Iron is the most abundant element on Earth by mass",
		"The Earth's core is mostly iron",
		"Iron is essential for hemoglobin in blood",
	},
}

var knownUses = map[string][]string{
	"H":  {"Rocket fuel", "Hydrogen fuel cells", "Ammonia production"},
	"He": {"Party balloons", "Cooling MRI machines", "Airships"},
	"C":  {"Pencil lead (graphite)", "Diamond jewelry", "Steel production"},
	"O":  {"Medical oxygen", "Steel production", "Water treatment"},
	"Al": {"Aircraft construction", "Cans and foil", "Electrical wiring"},
	"Si": {"Computer chips", "Solar panels", "Glass manufacturing"},
	"Cu": {"Electrical wiring", "Coins", "Plumbing pipes"},
	"Au": {"Jewelry", "Electronics", "Financial reserves"},
	"Fe": {"Steel production", "Magnets", "Construction materials"},
	"Ag": {"Jewelry", "Photography", "Antibacterial coatings"},
}

var knownDiscovery = map[string]string{
	"H":  "Discovered by Henry Cavendish in 1766",
	"He": "Discovered independently by Pierre Janssen and Norman Lockyer in 1868",
	"O":  "Discovered independently by Carl Wilhelm Scheele and Joseph Priestley in the 1770s",
	"Au": "Known since ancient times",
	"Fe": "Known since ancient times, first smelted around 2000 BCE",
	"U":  "Discovered by Martin Heinrich Klaproth in 1789",
}
