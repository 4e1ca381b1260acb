package domain

// Hospital is a directory entry from the hospital/location backend. Nearby
// results fill Distance and Open; directory results fill the contact and
// rating fields. Absent fields stay at their zero values.
type Hospital struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Specialty   string   `json:"specialty,omitempty"`
	Location    string   `json:"location,omitempty"`
	Address     string   `json:"address,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Hours       string   `json:"hours,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Reviews     int      `json:"reviews,omitempty"`
	About       string   `json:"about,omitempty"`
	Services    []string `json:"services,omitempty"`
	Specialties []string `json:"specialties,omitempty"`
	Distance    string   `json:"distance,omitempty"`
	Open        bool     `json:"isOpen,omitempty"`
}
