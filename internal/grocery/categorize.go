package grocery

import "strings"

// Category is a shelf section. Lower values come first when a list is
// sorted in store-walk order.
type Category int

const (
	Produce Category = iota + 1
	Meat
	Dairy
	Staples
	Cleaning
	Hygiene
	Other
)

var categoryNames = map[Category]string{
	Produce:  "Produce",
	Meat:     "Meat & Seafood",
	Dairy:    "Dairy",
	Staples:  "Staples",
	Cleaning: "Cleaning",
	Hygiene:  "Hygiene",
	Other:    "Other",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return categoryNames[Other]
}

// Rank is the 1-based position of the category in store-walk order.
func (c Category) Rank() int {
	if c < Produce || c > Other {
		return int(Other)
	}
	return int(c)
}

// Categorize returns the category for the given item name.
// It performs case-insensitive matching: exact match first, then substring match.
// Falls back to Other if no match is found.
func Categorize(itemName string) Category {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return Other
	}

	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return Other
}

var exactMatch = map[string]Category{
	// Produce
	"alface":    Produce,
	"tomate":    Produce,
	"cebola":    Produce,
	"alho":      Produce,
	"batata":    Produce,
	"cenoura":   Produce,
	"banana":    Produce,
	"maçã":      Produce,
	"laranja":   Produce,
	"limão":     Produce,
	"mamão":     Produce,
	"uva":       Produce,
	"abacaxi":   Produce,
	"melancia":  Produce,
	"pepino":    Produce,
	"couve":     Produce,
	"brócolis":  Produce,
	"abobrinha": Produce,
	"apple":     Produce,
	"lettuce":   Produce,
	"onion":     Produce,
	"potato":    Produce,
	"tomato":    Produce,

	// Meat
	"carne":    Meat,
	"frango":   Meat,
	"peixe":    Meat,
	"linguiça": Meat,
	"bacon":    Meat,
	"presunto": Meat,
	"salsicha": Meat,
	"picanha":  Meat,
	"chicken":  Meat,
	"beef":     Meat,
	"pork":     Meat,
	"fish":     Meat,

	// Dairy
	"leite":     Dairy,
	"queijo":    Dairy,
	"iogurte":   Dairy,
	"manteiga":  Dairy,
	"requeijão": Dairy,
	"ovos":      Dairy,
	"ovo":       Dairy,
	"milk":      Dairy,
	"cheese":    Dairy,
	"butter":    Dairy,
	"eggs":      Dairy,

	// Staples
	"arroz":    Staples,
	"feijão":   Staples,
	"macarrão": Staples,
	"farinha":  Staples,
	"açúcar":   Staples,
	"sal":      Staples,
	"café":     Staples,
	"óleo":     Staples,
	"pão":      Staples,
	"fubá":     Staples,
	"aveia":    Staples,
	"rice":     Staples,
	"beans":    Staples,
	"pasta":    Staples,
	"bread":    Staples,
	"flour":    Staples,
	"sugar":    Staples,

	// Cleaning
	"detergente":   Cleaning,
	"desinfetante": Cleaning,
	"esponja":      Cleaning,
	"amaciante":    Cleaning,
	"alvejante":    Cleaning,
	"bleach":       Cleaning,
	"sponge":       Cleaning,

	// Hygiene
	"sabonete":      Hygiene,
	"shampoo":       Hygiene,
	"condicionador": Hygiene,
	"desodorante":   Hygiene,
	"fio dental":    Hygiene,
	"toothpaste":    Hygiene,
	"soap":          Hygiene,
}

type substringEntry struct {
	keyword  string
	category Category
}

// Ordered with longer/more-specific keywords first for deterministic priority.
var substringMatches = []substringEntry{
	// Multi-word phrases that would otherwise hit a broader keyword
	{"extrato de tomate", Staples},
	{"molho de tomate", Staples},
	{"creme de leite", Dairy},
	{"leite condensado", Dairy},
	{"pão de queijo", Staples},
	{"papel higiênico", Hygiene},
	{"papel toalha", Cleaning},
	{"creme dental", Hygiene},
	{"pasta de dente", Hygiene},
	{"sabão em pó", Cleaning},
	{"água sanitária", Cleaning},
	{"peito de frango", Meat},
	{"carne moída", Meat},
	{"ground beef", Meat},
	{"dish soap", Cleaning},
	{"paper towel", Cleaning},
	{"toilet paper", Hygiene},

	// Cleaning
	{"detergente", Cleaning},
	{"desinfetante", Cleaning},
	{"limpador", Cleaning},
	{"multiuso", Cleaning},
	{"sabão", Cleaning},
	{"esponja", Cleaning},
	{"vassoura", Cleaning},
	{"saco de lixo", Cleaning},
	{"detergent", Cleaning},
	{"cleaner", Cleaning},

	// Hygiene
	{"sabonete", Hygiene},
	{"shampoo", Hygiene},
	{"condicionador", Hygiene},
	{"desodorante", Hygiene},
	{"escova de dente", Hygiene},
	{"absorvente", Hygiene},
	{"fralda", Hygiene},
	{"toothbrush", Hygiene},
	{"deodorant", Hygiene},

	// Meat
	{"frango", Meat},
	{"carne", Meat},
	{"bife", Meat},
	{"costela", Meat},
	{"linguiça", Meat},
	{"salsicha", Meat},
	{"salmão", Meat},
	{"tilápia", Meat},
	{"camarão", Meat},
	{"chicken", Meat},
	{"steak", Meat},
	{"sausage", Meat},

	// Dairy
	{"leite", Dairy},
	{"queijo", Dairy},
	{"iogurte", Dairy},
	{"manteiga", Dairy},
	{"requeijão", Dairy},
	{"nata", Dairy},
	{"yogurt", Dairy},
	{"cheese", Dairy},
	{"milk", Dairy},

	// Staples
	{"arroz", Staples},
	{"feijão", Staples},
	{"macarrão", Staples},
	{"farinha", Staples},
	{"açúcar", Staples},
	{"café", Staples},
	{"óleo", Staples},
	{"azeite", Staples},
	{"biscoito", Staples},
	{"pão", Staples},
	{"cereal", Staples},
	{"rice", Staples},
	{"bread", Staples},
	{"pasta", Staples},

	// Produce
	{"alface", Produce},
	{"tomate", Produce},
	{"cebola", Produce},
	{"batata", Produce},
	{"cenoura", Produce},
	{"banana", Produce},
	{"maçã", Produce},
	{"laranja", Produce},
	{"limão", Produce},
	{"fruta", Produce},
	{"verdura", Produce},
	{"legume", Produce},
	{"tomato", Produce},
	{"apple", Produce},
	{"berries", Produce},
}
