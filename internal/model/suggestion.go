package model

type SuggestionSource string

const (
	SourceCooccurrence SuggestionSource = "cooccurrence"
	SourceFrequency    SuggestionSource = "frequency"
	SourceRecency      SuggestionSource = "recency"
)

type Suggestion struct {
	Product    string           `json:"product"`
	Reason     string           `json:"reason"`
	Confidence float64          `json:"confidence"`
	Source     SuggestionSource `json:"source"`
	Catalog    *MarketProduct   `json:"catalog,omitempty"`
}

// Cooccurrence counts the lists in which both products were purchased.
type Cooccurrence struct {
	ProductA string
	ProductB string
	Count    int
}

type ProductFrequency struct {
	Product string
	Count   int
}
