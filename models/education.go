package models

// Tip is one entry of the education screen.
type Tip struct {
	Category string `json:"category" yaml:"category"`
	Title    string `json:"title" yaml:"title"`
	Body     string `json:"body" yaml:"body"`
}
