package types

// Event is a structured state-change notification emitted by the native
// modules. Attributes carry string-rendered payload fields keyed by name.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
