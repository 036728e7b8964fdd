package model

// College is one entry in the searchable college catalog.
type College struct {
	ID                  int      `json:"id"`
	Name                string   `json:"name"`
	Location            string   `json:"location"`
	Lat                 float64  `json:"lat"`
	Lon                 float64  `json:"lon"`
	Website             string   `json:"website"`
	Description         string   `json:"description"`
	Programs            []string `json:"programs"`
	Tuition             int      `json:"tuition"` // annual, in rupees
	Type                string   `json:"type"`    // Public or Private
	StudentFacultyRatio string   `json:"studentFacultyRatio"`
}
