package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/agrilens/dashboard/internal/analytics"
)

// VersionBumper advances the chart cache version.
type VersionBumper interface {
	Bump(ctx context.Context) (int64, error)
}

var _ VersionBumper = (*analytics.Cache)(nil)

// FlushCharts invalidates every cached chart set and prints the new version.
func FlushCharts(ctx context.Context, cache VersionBumper, stdout, stderr io.Writer) int {
	ver, err := cache.Bump(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "charts flush: %v\n", err)
		return ExitUnavailable
	}
	_, _ = fmt.Fprintf(stdout, "chart cache version is now %d\n", ver)
	return ExitOK
}
