package domain

// CareerLevel is the display label shown for every career match.
const CareerLevel = "Entry to Senior"

// CareerMatch is one ranked entry of the results catalog.
type CareerMatch struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Match       int      `json:"match"`
	Salary      string   `json:"salary"`
	Growth      string   `json:"growth"`
	Level       string   `json:"level"`
	Skills      []string `json:"skills"`
	Description string   `json:"description"`
}

// Clone returns a deep copy so callers cannot alias catalog slices.
func (c CareerMatch) Clone() CareerMatch {
	c.Skills = append([]string(nil), c.Skills...)
	return c
}

// Feature is a home page feature card.
type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
