package jobs

// Request describes one scraping run. Region, Retailers and Genders are all
// required; an empty selection is rejected rather than defaulted.
type Request struct {
	Region    string   `json:"region"`
	Retailers []string `json:"retailers,omitempty"`
	Genders   []string `json:"genders,omitempty"`
}
