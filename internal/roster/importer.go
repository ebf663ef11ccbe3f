package roster

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// maxReportedErrors bounds the error list returned to the caller. Full
// detail stays in the server logs.
const maxReportedErrors = 20

// maxSampleRows is how many data rows a preview includes.
const maxSampleRows = 5

// Importer drives a full reconciliation pass over a raw roster document.
// The cache invalidator and run store are optional collaborators; a nil
// value disables that side effect.
type Importer struct {
	registry Registry
	cache    CacheInvalidator
	runs     RunStore
}

// NewImporter creates an Importer. cache and runs may be nil.
func NewImporter(registry Registry, cache CacheInvalidator, runs RunStore) *Importer {
	return &Importer{
		registry: registry,
		cache:    cache,
		runs:     runs,
	}
}

// Import ingests a raw delimited-text document and merges it into the
// registry. The pass never fails atomically: per-row failures are recorded
// as "Row <n>: <message>" and processing continues, so partial success is
// expected and reported rather than rolled back. The returned result is
// always well formed.
func (im *Importer) Import(ctx context.Context, raw, defaultRole string) *ImportResult {
	startedAt := time.Now()
	result := &ImportResult{
		Errors:          []string{},
		UncertainFields: []UncertainField{},
	}

	lines := stripTitleRow(splitLines(raw))
	if len(lines) < 2 {
		result.Errors = append(result.Errors, "document must contain a header row and at least one data row")
		return result
	}

	cols := ResolveHeaders(SplitLine(lines[0]))

	errorCount := 0
	for n, line := range lines[1:] {
		// The row loop is the cancellation point; each row's
		// lookup-then-write is never interrupted mid-flight.
		if err := ctx.Err(); err != nil {
			result.Errors = appendCapped(result.Errors, fmt.Sprintf("import aborted: %v", err))
			slog.Warn("roster import aborted", "error", err, "rows_done", n)
			return result
		}

		res, err := im.reconcileRow(ctx, SplitLine(line), cols, defaultRole)
		if err != nil {
			errorCount++
			result.Errors = appendCapped(result.Errors, fmt.Sprintf("Row %d: %v", n+1, err))
			continue
		}

		result.UncertainFields = append(result.UncertainFields, res.uncertain...)
		switch res.outcome {
		case RowCreated:
			result.Created++
		case RowUpdated:
			result.Updated++
		default:
			result.Skipped++
		}
	}
	result.Success = true

	im.finishRun(ctx, result, errorCount, defaultRole, startedAt)
	return result
}

// appendCapped appends a message unless the error list is already at its
// reporting cap.
func appendCapped(errs []string, msg string) []string {
	if len(errs) >= maxReportedErrors {
		return errs
	}
	return append(errs, msg)
}

// finishRun performs the completion side effects: invalidate cached roster
// views and record the run summary. Neither failure affects the result the
// caller sees.
func (im *Importer) finishRun(ctx context.Context, result *ImportResult, errorCount int, defaultRole string, startedAt time.Time) {
	if im.cache != nil {
		if err := im.cache.InvalidateRoster(ctx); err != nil {
			slog.Warn("roster cache invalidation failed", "error", err)
		}
	}

	if im.runs != nil {
		run := ImportRun{
			ID:             uuid.New(),
			DefaultRole:    defaultRole,
			Created:        result.Created,
			Updated:        result.Updated,
			Skipped:        result.Skipped,
			ErrorCount:     errorCount,
			UncertainCount: len(result.UncertainFields),
			Duration:       time.Since(startedAt),
			StartedAt:      startedAt,
		}
		if err := im.runs.RecordRun(ctx, run); err != nil {
			slog.Warn("import run not recorded", "error", err)
		}
	}

	slog.Info("roster import finished",
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", errorCount,
		"uncertain", len(result.UncertainFields),
		"duration", time.Since(startedAt),
	)
}

// Preview is the read-only pass used to let an operator confirm a file
// before committing an import: same title-row stripping and tokenization,
// no normalization, no registry access.
func (im *Importer) Preview(raw string) (*PreviewResult, error) {
	lines := stripTitleRow(splitLines(raw))
	if len(lines) == 0 {
		return nil, fmt.Errorf("document contains no rows")
	}

	headers := SplitLine(lines[0])
	data := lines[1:]

	samples := make([][]string, 0, maxSampleRows)
	for _, line := range data {
		if len(samples) >= maxSampleRows {
			break
		}
		samples = append(samples, SplitLine(line))
	}

	return &PreviewResult{
		Headers:    headers,
		RowCount:   len(data),
		SampleRows: samples,
	}, nil
}
