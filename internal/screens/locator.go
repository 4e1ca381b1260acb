package screens

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
	"github.com/galo61408022-ux/Aidoctalk/internal/services/location"
	"github.com/galo61408022-ux/Aidoctalk/internal/toast"
)

// DefaultNearbyRadiusKM bounds the nearby hospital search.
const DefaultNearbyRadiusKM = 10

// cachedNearbyHospitals is shown whenever the live lookup cannot run, so
// the screen is never empty.
var cachedNearbyHospitals = []domain.Hospital{
	{
		ID:          "cached-1",
		Name:        "St. Mary's General Hospital",
		Distance:    "1.2 km",
		Rating:      4.5,
		Open:        true,
		Specialties: []string{"Emergency", "General Medicine", "Surgery"},
	},
	{
		ID:          "cached-2",
		Name:        "City Care Specialist Clinic",
		Distance:    "2.8 km",
		Rating:      4.7,
		Open:        true,
		Specialties: []string{"Cardiology", "Neurology", "Pediatrics"},
	},
	{
		ID:          "cached-3",
		Name:        "Rapid Response Emergency",
		Distance:    "3.5 km",
		Rating:      4.3,
		Open:        false,
		Specialties: []string{"Emergency", "Trauma Care"},
	},
}

// NearbyFinder is the slice of the hospitals service the locator needs.
type NearbyFinder interface {
	Nearby(ctx context.Context, lat, lng float64, radiusKM int) ([]domain.Hospital, error)
}

// Locator is the nearby-hospitals screen. It geolocates the device, loads
// hospitals around it and falls back to the cached list when either step
// fails.
type Locator struct {
	hospitals NearbyFinder
	resolver  location.Resolver
	toasts    *toast.Notifier
	logger    zerolog.Logger

	mu     sync.Mutex
	list   []domain.Hospital
	filter string
	cached bool
}

// NewLocator starts on the cached list until Load runs.
func NewLocator(hospitals NearbyFinder, resolver location.Resolver, toasts *toast.Notifier, logger zerolog.Logger) *Locator {
	return &Locator{
		hospitals: hospitals,
		resolver:  resolver,
		toasts:    toasts,
		logger:    logger,
		list:      cachedNearbyHospitals,
		cached:    true,
	}
}

// Load resolves the device location and fetches hospitals around it. Any
// failure keeps the screen usable on the cached list.
func (l *Locator) Load(ctx context.Context) {
	coords, err := l.resolver.Locate(ctx)
	if err != nil {
		l.logger.Warn().Err(err).Msg("locator: geolocation failed")
		l.useCached()
		return
	}
	hospitals, err := l.hospitals.Nearby(ctx, coords.Lat, coords.Lng, DefaultNearbyRadiusKM)
	if err != nil {
		l.logger.Warn().Err(err).Msg("locator: nearby lookup failed")
		l.useCached()
		return
	}
	l.mu.Lock()
	l.list = hospitals
	l.cached = false
	l.mu.Unlock()
	l.toasts.Success(fmt.Sprintf("Found %d nearby hospitals", len(hospitals)))
}

// SetFilter narrows the visible list by name or specialty.
func (l *Locator) SetFilter(query string) {
	l.mu.Lock()
	l.filter = strings.TrimSpace(query)
	l.mu.Unlock()
}

// Hospitals returns the hospitals matching the current filter.
func (l *Locator) Hospitals() []domain.Hospital {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.filter == "" {
		out := make([]domain.Hospital, len(l.list))
		copy(out, l.list)
		return out
	}
	folded := cases.Fold()
	needle := folded.String(l.filter)
	var out []domain.Hospital
	for _, h := range l.list {
		if strings.Contains(folded.String(h.Name), needle) {
			out = append(out, h)
			continue
		}
		for _, s := range h.Specialties {
			if strings.Contains(folded.String(s), needle) {
				out = append(out, h)
				break
			}
		}
	}
	return out
}

// UsingCache reports whether the screen is showing the cached fallback.
func (l *Locator) UsingCache() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cached
}

// StartAction raises the toast for starting a call or directions to a
// hospital.
func (l *Locator) StartAction(action string, hospital domain.Hospital) {
	l.toasts.Info(fmt.Sprintf("Starting %s for %s...", action, hospital.Name))
}

func (l *Locator) useCached() {
	l.mu.Lock()
	l.list = cachedNearbyHospitals
	l.cached = true
	l.mu.Unlock()
	l.toasts.Info("Using cached hospital data")
}
