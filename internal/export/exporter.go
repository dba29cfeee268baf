// Package export renders a persisted bill into a shareable document and
// hands it to the platform share mechanism.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Matheesha-Abiman/EasyInvoice/internal/models"
)

// Document is the renderable view of one bill with its items.
type Document struct {
	Bill  models.Bill
	Items []models.Item
}

// Renderer turns a document into a file on disk and returns its path.
type Renderer interface {
	Render(ctx context.Context, doc Document) (path string, mimeType string, err error)
}

// Sharer invokes the platform share/export capability with a rendered file.
type Sharer interface {
	Share(ctx context.Context, path, mimeType string) error
}

// ExportError wraps a render or share failure. No partial artifact survives
// a failed export.
type ExportError struct {
	Stage string // "render" or "share"
	Err   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export failed during %s: %v", e.Stage, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Exporter renders a bill and shares the resulting file.
type Exporter struct {
	renderer Renderer
	sharer   Sharer
}

// NewExporter creates an Exporter over the given render and share boundaries.
func NewExporter(renderer Renderer, sharer Sharer) *Exporter {
	return &Exporter{renderer: renderer, sharer: sharer}
}

// Export renders the bill into a file and invokes the share mechanism. If
// sharing fails (including user cancellation) the rendered artifact is
// discarded.
func (e *Exporter) Export(ctx context.Context, bill models.Bill, items []models.Item) error {
	path, mimeType, err := e.renderer.Render(ctx, Document{Bill: bill, Items: items})
	if err != nil {
		slog.Error("invoice render failed", "bill_id", bill.ID, "error", err)
		return &ExportError{Stage: "render", Err: err}
	}

	if err := e.sharer.Share(ctx, path, mimeType); err != nil {
		slog.Error("invoice share failed", "bill_id", bill.ID, "path", path, "error", err)
		os.Remove(path)
		return &ExportError{Stage: "share", Err: err}
	}

	slog.Info("invoice exported", "bill_id", bill.ID, "path", path)
	return nil
}
