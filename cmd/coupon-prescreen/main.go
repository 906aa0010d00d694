// Command coupon-prescreen builds the gateway's coupon prescreen filter from
// the gzipped code dumps the coupon team publishes. Each dump is one code per
// line; the tool streams every dump concurrently into per-file bloom filters
// and merges them into a single filter file the gateway loads at startup.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/scentcart/internal/prescreen"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
	minCodeLen    = 4
	maxCodeLen    = 32
)

func main() {
	var (
		dataDir string
		outPath string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.gz code dumps")
	flag.StringVar(&outPath, "out", "prescreen.bloom", "output filter file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, outPath); err != nil {
		slog.Error("prescreen build failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("prescreen build completed successfully")
}

func run(ctx context.Context, dataDir, outPath string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "list code dumps")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.gz code dumps in %s", dataDir)
	}

	slog.Info("building prescreen filter", slog.Int("files", len(files)))

	filters := make([]*prescreen.Filter, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(gctx, i, f, filters))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	merged := filters[0]
	for _, f := range filters[1:] {
		if err := merged.Merge(f); err != nil {
			return err
		}
	}

	slog.Info("writing filter",
		slog.String("path", outPath),
		slog.Uint64("approx_codes", uint64(merged.ApproximateCount())),
	)
	return merged.Save(outPath)
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*prescreen.Filter) func() error {
	return func() error {
		filter := prescreen.NewFilter(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(code string) {
			if len(code) < minCodeLen || len(code) > maxCodeLen {
				return
			}
			filter.Add(code)
			count++
			if count%progressEvery == 0 {
				slog.Info("progress",
					slog.Int("file", idx+1),
					slog.Uint64("codes", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for %s", path)
		}

		slog.Info("file complete",
			slog.String("file", path),
			slog.Uint64("total_codes", count),
		)

		filters[idx] = filter
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(code string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
