// Package location resolves the device's approximate coordinates. Without a
// GPS the best available signal is the public IP geolocated against a
// MaxMind City database.
package location

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog"

	"github.com/galo61408022-ux/Aidoctalk/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Resolver yields the device's current coordinates.
type Resolver interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// GeoIPOptions configures the GeoIP resolver.
type GeoIPOptions struct {
	// DBPath points at a MaxMind GeoLite2/GeoIP2 City database. Empty
	// disables the resolver.
	DBPath     string
	IPEchoURL  string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// GeoIPResolver looks up the public IP through an echo service and
// geolocates it in a local City database. A nil resolver reports location
// unavailable, so callers can treat the feature as optional.
type GeoIPResolver struct {
	reader    *geoip2.Reader
	ipEchoURL string
	client    *http.Client
	logger    zerolog.Logger
}

// NewGeoIPResolver opens the City database. It returns (nil, nil) when no
// database is configured; the caller keeps working without location data.
func NewGeoIPResolver(opts GeoIPOptions) (*GeoIPResolver, error) {
	if strings.TrimSpace(opts.DBPath) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("location: open geoip database: %w", err)
	}
	ipEchoURL := strings.TrimSpace(opts.IPEchoURL)
	if ipEchoURL == "" {
		ipEchoURL = "https://checkip.amazonaws.com"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &GeoIPResolver{
		reader:    reader,
		ipEchoURL: ipEchoURL,
		client:    client,
		logger:    opts.Logger,
	}, nil
}

// Locate resolves the public IP and geolocates it. All failure modes map to
// domain.ErrLocationUnavailable so callers have a single fallback path.
func (r *GeoIPResolver) Locate(ctx context.Context) (Coordinates, error) {
	if r == nil || r.reader == nil {
		return Coordinates{}, domain.ErrLocationUnavailable
	}
	ip, err := r.publicIP(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("location: public ip lookup failed")
		return Coordinates{}, domain.ErrLocationUnavailable
	}
	city, err := r.reader.City(ip)
	if err != nil {
		r.logger.Warn().Err(err).Str("ip", ip.String()).Msg("location: city lookup failed")
		return Coordinates{}, domain.ErrLocationUnavailable
	}
	if city.Location.Latitude == 0 && city.Location.Longitude == 0 {
		return Coordinates{}, domain.ErrLocationUnavailable
	}
	return Coordinates{Lat: city.Location.Latitude, Lng: city.Location.Longitude}, nil
}

// Close releases the database handle.
func (r *GeoIPResolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}

func (r *GeoIPResolver) publicIP(ctx context.Context) (net.IP, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.ipEchoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("location: build ip echo request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("location: ip echo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("location: ip echo returned status %d", resp.StatusCode)
	}
	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)
	ip := net.ParseIP(strings.TrimSpace(string(buf[:n])))
	if ip == nil {
		return nil, fmt.Errorf("location: ip echo returned no parsable address")
	}
	return ip, nil
}

var _ Resolver = (*GeoIPResolver)(nil)
