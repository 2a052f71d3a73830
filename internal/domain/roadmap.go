package domain

// RoadmapPhase is one step of the shared roadmap template.
// Completed is part of the model but nothing toggles it yet.
type RoadmapPhase struct {
	ID        int      `json:"id"`
	Phase     string   `json:"phase"`
	Title     string   `json:"title"`
	Duration  string   `json:"duration"`
	Items     []string `json:"items"`
	Completed bool     `json:"completed"`
}

// Clone returns a deep copy of the phase.
func (p RoadmapPhase) Clone() RoadmapPhase {
	p.Items = append([]string(nil), p.Items...)
	return p
}

// Roadmap is the roadmap template rendered under a career display title.
type Roadmap struct {
	CareerID    string         `json:"career_id"`
	CareerTitle string         `json:"career_title"`
	Phases      []RoadmapPhase `json:"phases"`
}
