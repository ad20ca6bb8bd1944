package target

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/astro"
)

// List is an ordered list of targets.
type List []*Target

// Validate validates every target in order.
func (l List) Validate() error {
	for i, t := range l {
		if t == nil {
			return fmt.Errorf("%w: target %d is nil", apperr.ErrTarget, i)
		}
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SetObsTime stamps every target with the observation time at.
func (l List) SetObsTime(at time.Time) {
	year := astro.JulianYear(at)
	for _, t := range l {
		t.ObsTime = ptr(year)
	}
}

// Starlist renders one star-list line per target.
func (l List) Starlist() (string, error) {
	var b strings.Builder
	for _, t := range l {
		line, err := t.StarlistLine()
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// maxConcurrentLookups bounds parallel name-resolver requests.
const maxConcurrentLookups = 4

// Resolve looks up coordinates for every target that has none.
func (l List) Resolve(ctx context.Context, r Resolver) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for _, t := range l {
		g.Go(func() error {
			return t.Resolve(gCtx, r)
		})
	}
	return g.Wait()
}
