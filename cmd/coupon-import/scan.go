package main

import (
	"bufio"
	"context"
	"log/slog"
	"math/bits"
	"os"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/coupon"
)

const (
	bloomFPR      = 0.001
	progressEvery = 1_000_000
	minCodeLen    = 3
	maxCodeLen    = 32
	maxFiles      = 64
)

// entry is one parsed export line.
type entry struct {
	Code    string
	Percent decimal.Decimal
}

// plan is the outcome of scanning the exports.
type plan struct {
	// Import holds codes found in exactly one export.
	Import []entry
	// Conflicts holds codes found in more than one export. They are skipped.
	Conflicts []string
	// Rejected counts unparsable lines.
	Rejected int
}

// parseLine parses "CODE" or "CODE,PERCENT". Lines without a percent get
// fallback. Codes are normalized; blank lines and comments are skipped.
func parseLine(line string, fallback decimal.Decimal) (entry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return entry{}, false
	}

	rawCode, rawPercent, hasPercent := strings.Cut(line, ",")
	code := coupon.NormalizeCode(rawCode)
	if len(code) < minCodeLen || len(code) > maxCodeLen {
		return entry{}, false
	}

	percent := fallback
	if hasPercent {
		p, err := decimal.NewFromString(strings.TrimSpace(rawPercent))
		if err != nil || p.LessThan(decimal.NewFromInt(1)) || p.GreaterThan(decimal.NewFromInt(100)) {
			return entry{}, false
		}
		percent = p
	}
	return entry{Code: code, Percent: percent}, true
}

// scanExports finds the codes that appear in exactly one export. Pass 1
// builds a bloom filter per file; pass 2 re-reads every file, flags codes
// that may be present in another file and confirms the flags exactly.
func scanExports(ctx context.Context, files []string, fallback decimal.Decimal) (*plan, error) {
	if len(files) == 0 {
		return nil, errors.New("no export files given")
	}
	if len(files) > maxFiles {
		return nil, errors.Errorf("too many export files: %d (max %d)", len(files), maxFiles)
	}

	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))
	filters, err := buildFilters(ctx, files, fallback)
	if err != nil {
		return nil, errors.Wrap(err, "build bloom filters")
	}

	slog.Info("pass 2: collecting codes")
	results := make([]fileScan, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			r, err := collectFile(gctx, i, f, filters, fallback)
			if err != nil {
				return errors.Wrapf(err, "scan %s", f)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeScans(results), nil
}

// fileScan is the pass 2 result for one file.
type fileScan struct {
	bit        uint64
	entries    map[string]decimal.Decimal
	candidates map[string]struct{}
	rejected   int
}

func buildFilters(ctx context.Context, files []string, fallback decimal.Decimal) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			var codes []string
			if err := streamGzFile(ctx, f, func(line string) {
				if e, ok := parseLine(line, fallback); ok {
					codes = append(codes, e.Code)
				}
			}); err != nil {
				return errors.Wrapf(err, "read %s", f)
			}

			filter := bloom.NewWithEstimates(uint(max(len(codes), 1)), bloomFPR)
			for _, c := range codes {
				filter.AddString(c)
			}
			filters[i] = filter

			slog.Info("pass 1 complete", slog.String("file", f), slog.Int("codes", len(codes)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

func collectFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter, fallback decimal.Decimal) (fileScan, error) {
	r := fileScan{
		bit:        uint64(1) << uint(idx),
		entries:    make(map[string]decimal.Decimal),
		candidates: make(map[string]struct{}),
	}
	var lines int

	err := streamGzFile(ctx, path, func(line string) {
		lines++
		if lines%progressEvery == 0 {
			slog.Info("pass 2 progress", slog.String("file", path), slog.Int("lines", lines))
		}

		e, ok := parseLine(line, fallback)
		if !ok {
			if strings.TrimSpace(line) != "" && !strings.HasPrefix(strings.TrimSpace(line), "#") {
				r.rejected++
			}
			return
		}
		r.entries[e.Code] = e.Percent

		for j, f := range filters {
			if j != idx && f.TestString(e.Code) {
				r.candidates[e.Code] = struct{}{}
				break
			}
		}
	})
	return r, err
}

// mergeScans confirms bloom candidates exactly. Every file holding a shared
// code flags it, so a candidate flagged by a single file was a false positive.
func mergeScans(results []fileScan) *plan {
	seen := make(map[string]uint64)
	for _, r := range results {
		for code := range r.candidates {
			seen[code] |= r.bit
		}
	}

	p := &plan{}
	conflicts := make(map[string]struct{})
	for code, mask := range seen {
		if bits.OnesCount64(mask) >= 2 {
			conflicts[code] = struct{}{}
			p.Conflicts = append(p.Conflicts, code)
		}
	}

	for _, r := range results {
		p.Rejected += r.rejected
		for code, percent := range r.entries {
			if _, bad := conflicts[code]; !bad {
				p.Import = append(p.Import, entry{Code: code, Percent: percent})
			}
		}
	}
	sort.Slice(p.Import, func(i, j int) bool { return p.Import[i].Code < p.Import[j].Code })
	sort.Strings(p.Conflicts)
	return p
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line string)) error {
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
