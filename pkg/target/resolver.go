package target

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/astro"
)

// Resolver turns an object name into ICRS coordinates.
type Resolver interface {
	Resolve(ctx context.Context, name string) (astro.Coord, error)
}

// Resolve fills in coordinates from r when the target has none. Calibration
// positions are left alone.
func (t *Target) Resolve(ctx context.Context, r Resolver) error {
	if t.IsCalPosition() || (t.RA != nil && t.Dec != nil) {
		return nil
	}
	c, err := r.Resolve(ctx, t.Name)
	if err != nil {
		return fmt.Errorf("%w: resolve %q: %w", apperr.ErrTarget, t.Name, err)
	}
	t.RA = ptr(c.RA)
	t.Dec = ptr(c.Dec)
	t.Equinox = ptr(2000.0)
	if t.Frame == "" {
		t.Frame = "icrs"
	}
	return nil
}

// DefaultSesameURL is the CDS Sesame name resolver.
const DefaultSesameURL = "https://cds.unistra.fr/cgi-bin/nph-sesame/-oI/A"

// SesameResolver queries the CDS Sesame service.
type SesameResolver struct {
	BaseURL string
	Client  *http.Client
}

// NewSesameResolver returns a resolver against the public Sesame endpoint.
func NewSesameResolver() *SesameResolver {
	return &SesameResolver{
		BaseURL: DefaultSesameURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Resolve implements Resolver. Sesame answers in plain text; the "%J" line
// holds decimal RA and Dec.
func (s *SesameResolver) Resolve(ctx context.Context, name string) (astro.Coord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+url.PathEscape(name), nil)
	if err != nil {
		return astro.Coord{}, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return astro.Coord{}, fmt.Errorf("sesame: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return astro.Coord{}, fmt.Errorf("sesame: status %d", resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 || fields[0] != "%J" {
			continue
		}
		ra, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return astro.Coord{}, fmt.Errorf("sesame: bad RA %q", fields[1])
		}
		dec, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return astro.Coord{}, fmt.Errorf("sesame: bad Dec %q", fields[2])
		}
		return astro.Coord{RA: ra, Dec: dec}, nil
	}
	if err := sc.Err(); err != nil {
		return astro.Coord{}, fmt.Errorf("sesame: %w", err)
	}
	return astro.Coord{}, fmt.Errorf("sesame: %w: %s", apperr.ErrNotFound, name)
}
