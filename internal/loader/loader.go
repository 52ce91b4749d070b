// Package loader reads the input extracts into immutable typed tables.
package loader

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/sitpulse/internal/contract"
	"github.com/huangsam/sitpulse/internal/parquet"
	"github.com/huangsam/sitpulse/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Load reads every table named by src, at most workers files at a time.
// Any failure cancels the remaining reads and is returned. The verification
// table is optional: a missing file leaves Dataset.Verifications empty.
func Load(ctx context.Context, src contract.TableSources, workers int) (*schema.Dataset, error) {
	if workers <= 0 {
		workers = 1
	}
	log := contract.Logger()
	started := time.Now()

	ds := &schema.Dataset{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	g.Go(func() error {
		return loadTable(gctx, src.Memberships, "memberships", &ds.Memberships, membershipsFromCSV, membershipsFromParquet)
	})
	g.Go(func() error {
		return loadTable(gctx, src.Applications, "applications", &ds.Applications, applicationsFromCSV, applicationsFromParquet)
	})
	g.Go(func() error {
		return loadTable(gctx, src.Sitters, "sitters", &ds.Sitters, sittersFromCSV, sittersFromParquet)
	})
	g.Go(func() error {
		return loadTable(gctx, src.Assignments, "assignments", &ds.Assignments, assignmentsFromCSV, assignmentsFromParquet)
	})
	g.Go(func() error {
		return loadTable(gctx, src.Owners, "owners", &ds.Owners, ownersFromCSV, ownersFromParquet)
	})
	if src.Verifications != "" {
		g.Go(func() error {
			if _, err := os.Stat(src.Verifications); errors.Is(err, fs.ErrNotExist) {
				log.Debug("verification table not found, skipping", zap.String("path", src.Verifications))
				return nil
			}
			return loadTable(gctx, src.Verifications, "verifications", &ds.Verifications, verificationsFromCSV, verificationsFromParquet)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	fp, err := Fingerprint(src)
	if err != nil {
		return nil, err
	}
	ds.Fingerprint = fp

	log.Info("loaded dataset",
		zap.Int("memberships", len(ds.Memberships)),
		zap.Int("applications", len(ds.Applications)),
		zap.Int("sitters", len(ds.Sitters)),
		zap.Int("assignments", len(ds.Assignments)),
		zap.Int("owners", len(ds.Owners)),
		zap.Int("verifications", len(ds.Verifications)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return ds, nil
}

// loadTable reads one file into dst, choosing the decoder by file extension.
func loadTable[T any, R any](
	ctx context.Context,
	path, name string,
	dst *[]T,
	fromCSV func(*csvTable) ([]T, error),
	fromParquet func([]R) []T,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("no file configured for the %s table", name)
	}

	var rows []T
	if isParquet(path) {
		raw, err := parquet.ReadRows[R](path)
		if err != nil {
			return fmt.Errorf("failed to load %s table: %w", name, err)
		}
		rows = fromParquet(raw)
	} else {
		t, err := readCSV(path)
		if err != nil {
			return fmt.Errorf("failed to load %s table: %w", name, err)
		}
		rows, err = fromCSV(t)
		if err != nil {
			return fmt.Errorf("failed to load %s table: %w", name, err)
		}
	}

	contract.Logger().Debug("loaded table", zap.String("table", name), zap.String("path", path), zap.Int("rows", len(rows)))
	*dst = rows
	return nil
}

func isParquet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".parquet")
}

// Fingerprint hashes the path, size and modification time of every source file.
// A missing optional verification file contributes a fixed marker.
func Fingerprint(src contract.TableSources) (string, error) {
	h := sha256.New()
	for _, p := range []string{src.Memberships, src.Applications, src.Sitters, src.Assignments, src.Owners, src.Verifications} {
		if p == "" {
			_, _ = fmt.Fprint(h, "-|")
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if p == src.Verifications && errors.Is(err, fs.ErrNotExist) {
				_, _ = fmt.Fprintf(h, "%s:absent|", p)
				continue
			}
			return "", fmt.Errorf("failed to stat %s: %w", p, err)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		_, _ = fmt.Fprintf(h, "%s:%d:%d|", abs, info.Size(), info.ModTime().UnixNano())
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
