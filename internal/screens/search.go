package screens

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
	"github.com/galo61408022-ux/Aidoctalk/internal/toast"
)

// SearchSpecialties and SearchLocations populate the filter dropdowns.
var (
	SearchSpecialties = []string{
		"General Hospital", "Eye Clinic", "Dentist", "Cardiology", "Orthopedic",
		"Pediatrics", "Dermatology", "Neurology", "Gynecology", "ENT",
		"Psychiatry", "Urology",
	}
	SearchLocations = []string{
		"Lagos Island", "Victoria Island", "Lekki", "Ikoyi", "Yaba",
		"Surulere", "Ikeja", "Ajah", "Festac", "Apapa", "Gbagada", "Maryland",
	}
)

// directoryHospitals is the fallback directory when the backend is
// unreachable.
var directoryHospitals = []domain.Hospital{
	{
		ID: "dir-1", Name: "Lagos Medical Center", Specialty: "General Hospital",
		Location: "Lagos Island", Address: "123 Marina Street, Lagos Island",
		Phone: "+234 801 234 5678", Hours: "24 hours", Rating: 4.6, Reviews: 234,
		About:    "Full-service general hospital with round-the-clock emergency care.",
		Services: []string{"Emergency Care", "Surgery", "Maternity", "Laboratory"},
	},
	{
		ID: "dir-2", Name: "Eye Care Specialists", Specialty: "Eye Clinic",
		Location: "Victoria Island", Address: "456 Ahmadu Bello Way, Victoria Island",
		Phone: "+234 802 345 6789", Hours: "8am - 6pm", Rating: 4.8, Reviews: 189,
		About:    "Specialist eye clinic covering routine checks through surgery.",
		Services: []string{"Eye Exams", "Cataract Surgery", "LASIK", "Glaucoma Treatment"},
	},
	{
		ID: "dir-3", Name: "Dental Excellence", Specialty: "Dentist",
		Location: "Lekki", Address: "789 Lekki Phase 1, Lekki",
		Phone: "+234 803 456 7890", Hours: "9am - 7pm", Rating: 4.7, Reviews: 156,
		About:    "Modern dental practice for families.",
		Services: []string{"Cleaning", "Fillings", "Braces", "Whitening"},
	},
	{
		ID: "dir-4", Name: "Heart & Cardiovascular Center", Specialty: "Cardiology",
		Location: "Ikoyi", Address: "12 Kingsway Road, Ikoyi",
		Phone: "+234 804 567 8901", Hours: "8am - 5pm", Rating: 4.9, Reviews: 201,
		About:    "Dedicated cardiac diagnostics and treatment center.",
		Services: []string{"ECG", "Echocardiogram", "Stress Tests", "Cardiac Rehab"},
	},
	{
		ID: "dir-5", Name: "Bone & Joint Clinic", Specialty: "Orthopedic",
		Location: "Yaba", Address: "34 Herbert Macaulay Way, Yaba",
		Phone: "+234 805 678 9012", Hours: "9am - 6pm", Rating: 4.5, Reviews: 143,
		About:    "Orthopedic care from fractures to joint replacement.",
		Services: []string{"Fracture Care", "Joint Replacement", "Physiotherapy", "Sports Injuries"},
	},
	{
		ID: "dir-6", Name: "Pediatric Care Plus", Specialty: "Pediatrics",
		Location: "Surulere", Address: "56 Adeniran Ogunsanya Street, Surulere",
		Phone: "+234 806 789 0123", Hours: "8am - 8pm", Rating: 4.8, Reviews: 178,
		About:    "Child-focused clinic with immunization and growth tracking.",
		Services: []string{"Immunization", "Well-Child Visits", "Sick Visits", "Growth Tracking"},
	},
}

// DirectorySearcher is the slice of the hospitals service the search screen
// needs.
type DirectorySearcher interface {
	Search(ctx context.Context, query string) ([]domain.Hospital, error)
	Details(ctx context.Context, id string) (*domain.Hospital, error)
}

// Search is the hospital directory screen: a free-text query combined with
// exact specialty and location filters.
type Search struct {
	directory DirectorySearcher
	toasts    *toast.Notifier
	logger    zerolog.Logger

	mu        sync.Mutex
	all       []domain.Hospital
	query     string
	specialty string
	location  string
}

// NewSearch starts on the builtin directory until Load runs.
func NewSearch(directory DirectorySearcher, toasts *toast.Notifier, logger zerolog.Logger) *Search {
	return &Search{
		directory: directory,
		toasts:    toasts,
		logger:    logger,
		all:       directoryHospitals,
	}
}

// Load refreshes the directory from the backend, keeping the builtin list on
// failure.
func (s *Search) Load(ctx context.Context) {
	hospitals, err := s.directory.Search(ctx, "")
	if err != nil {
		s.logger.Warn().Err(err).Msg("hospital search: directory load failed")
		s.toasts.Info("Using cached hospital data")
		return
	}
	if len(hospitals) == 0 {
		return
	}
	s.mu.Lock()
	s.all = hospitals
	s.mu.Unlock()
}

// SetQuery, SetSpecialty and SetLocation adjust the active filters. Empty
// strings clear the corresponding filter.
func (s *Search) SetQuery(q string) {
	s.mu.Lock()
	s.query = strings.TrimSpace(q)
	s.mu.Unlock()
}

func (s *Search) SetSpecialty(specialty string) {
	s.mu.Lock()
	s.specialty = specialty
	s.mu.Unlock()
}

func (s *Search) SetLocation(loc string) {
	s.mu.Lock()
	s.location = loc
	s.mu.Unlock()
}

// Results applies all active filters: the query matches name or address
// case-insensitively, specialty and location match exactly. Every result
// satisfies every active filter.
func (s *Search) Results() []domain.Hospital {
	s.mu.Lock()
	defer s.mu.Unlock()

	folded := cases.Fold()
	needle := folded.String(s.query)
	var out []domain.Hospital
	for _, h := range s.all {
		if s.query != "" &&
			!strings.Contains(folded.String(h.Name), needle) &&
			!strings.Contains(folded.String(h.Address), needle) {
			continue
		}
		if s.specialty != "" && h.Specialty != s.specialty {
			continue
		}
		if s.location != "" && h.Location != s.location {
			continue
		}
		out = append(out, h)
	}
	return out
}

// Details fetches the full record for one hospital, falling back to the
// local entry when the backend call fails.
func (s *Search) Details(ctx context.Context, id string) (*domain.Hospital, error) {
	h, err := s.directory.Details(ctx, id)
	if err == nil {
		return h, nil
	}
	s.logger.Warn().Err(err).Str("hospital", id).Msg("hospital search: details failed")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, local := range s.all {
		if local.ID == id {
			copied := local
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}
