package models

// AgentCard is the static metadata document every agent serves over
// HTTP for discovery.
type AgentCard struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Endpoint    string   `json:"endpoint"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Owner       string   `json:"owner"`
}
