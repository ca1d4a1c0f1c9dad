package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/seenimoa/fundlens/pkg/models"
	"github.com/seenimoa/fundlens/pkg/utils"
)

// Snapshot is the static local tier: one JSON envelope per symbol in a
// configured directory, each optionally carrying daily bars so a single
// file serves both the fundamentals and the price cascade.
type Snapshot struct {
	dir string
}

// NewSnapshot creates the local snapshot source. An empty dir disables it;
// every lookup then errors and the cascade advances.
func NewSnapshot(dir string) *Snapshot {
	return &Snapshot{dir: dir}
}

// Name returns the data source name.
func (s *Snapshot) Name() string { return "Local snapshot" }

// Fundamentals loads the snapshot envelope for the symbol.
func (s *Snapshot) Fundamentals(_ context.Context, symbol string) (*models.FieldMap, error) {
	_, fm, err := s.load(symbol)
	return fm, err
}

// PriceHistory returns the snapshot's bars clipped to the requested range.
func (s *Snapshot) PriceHistory(_ context.Context, symbol string, from, to time.Time) ([]models.OHLCV, error) {
	payload, _, err := s.load(symbol)
	if err != nil {
		return nil, err
	}
	bars := filterBars(decodeBars(payload.Bars), from, to)
	if len(bars) == 0 {
		return nil, fmt.Errorf("snapshot for %s has no bars in range", symbol)
	}
	return bars, nil
}

func (s *Snapshot) load(symbol string) (*fundamentalsPayload, *models.FieldMap, error) {
	if s.dir == "" {
		return nil, nil, fmt.Errorf("snapshot directory not configured")
	}
	symbol = utils.NormalizeTicker(symbol)

	f, err := os.Open(filepath.Join(s.dir, symbol+".json"))
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot %s: %w", symbol, err)
	}
	defer f.Close()

	return decodeFundamentals(f, symbol)
}
