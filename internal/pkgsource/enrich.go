// SPDX-License-Identifier: Apache-2.0

package pkgsource

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/automa-saga/logx"
	"github.com/dustin/go-humanize"
	"github.com/hashgraph/pkgview/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	// UnknownSize is shown when the size of a package could not be determined.
	UnknownSize = "-"

	enrichConcurrency = 8
)

// Enrich fills in size and installation date for every package with an install path.
// It never fails: whatever cannot be determined is left absent.
func Enrich(ctx context.Context, pkgs []*models.Package) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	for _, p := range pkgs {
		if p == nil || p.InstallPath == "" {
			continue
		}
		p := p
		g.Go(func() error {
			enrichPackage(ctx, p)
			return nil
		})
	}

	_ = g.Wait()
}

func enrichPackage(ctx context.Context, p *models.Package) {
	p.SizeText = UnknownSize

	info, err := os.Stat(p.InstallPath)
	if err != nil {
		logx.As().Debug().Err(err).Str("package", p.ID.String()).Msg("Install path is not accessible")
		return
	}

	modified := info.ModTime()
	p.InstallationDate = &modified

	size := DirectorySize(ctx, p.InstallPath)
	p.Size = size
	p.SizeText = FormatSize(size)
}

// DirectorySize sums the sizes of all regular files below path. Unreadable entries are skipped.
func DirectorySize(ctx context.Context, path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

// FormatSize renders a byte count for display; zero means unknown.
func FormatSize(size int64) string {
	if size <= 0 {
		return UnknownSize
	}
	return humanize.Bytes(uint64(size))
}
