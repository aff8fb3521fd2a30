// Package renderlog implements the render tracking store: an
// append-only analytical log of render operations, queried by
// recency, by template name, and by calendar-date aggregates.
package renderlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one append-only entry describing a render attempt. It is
// never mutated after Store.Append returns.
type Record struct {
	RenderID       string
	Timestamp      time.Time
	ReferenceText  string
	TemplateName   string
	TemplateTag    string
	ManifestDigest string
	DataDigest     string
	PDFDigest      string // empty on failure
	Success        bool
	DurationMS     uint32
	PDFBytesSize   uint32
	ErrorText      string // empty on success
}

// NewSuccess builds a Record for a successful render. RenderID is a
// fresh UUIDv7, which stays time-sortable under distributed
// insertion.
func NewSuccess(referenceText, templateName, templateTag, manifestDigest, dataDigest, pdfDigest string, durationMS, pdfBytesSize uint32) Record {
	return Record{
		RenderID:       uuid.Must(uuid.NewV7()).String(),
		Timestamp:      time.Now().UTC(),
		ReferenceText:  referenceText,
		TemplateName:   templateName,
		TemplateTag:    templateTag,
		ManifestDigest: manifestDigest,
		DataDigest:     dataDigest,
		PDFDigest:      pdfDigest,
		Success:        true,
		DurationMS:     durationMS,
		PDFBytesSize:   pdfBytesSize,
	}
}

// NewFailure builds a Record for a failed render. PDFDigest and
// PDFBytesSize are zero-valued; ErrorText carries the failure reason.
func NewFailure(referenceText, templateName, templateTag, manifestDigest, dataDigest, errorText string, durationMS uint32) Record {
	return Record{
		RenderID:       uuid.Must(uuid.NewV7()).String(),
		Timestamp:      time.Now().UTC(),
		ReferenceText:  referenceText,
		TemplateName:   templateName,
		TemplateTag:    templateTag,
		ManifestDigest: manifestDigest,
		DataDigest:     dataDigest,
		Success:        false,
		DurationMS:     durationMS,
		ErrorText:      errorText,
	}
}

// VolumePoint is one day's render count, for VolumeOverTime.
type VolumePoint struct {
	Date    time.Time // truncated to UTC midnight
	Renders uint64
}

// TemplateCount is one template's total render count, for
// PerTemplateCounts.
type TemplateCount struct {
	TemplateName string
	TotalRenders uint64
}

// DurationPoint is one day's mean render duration over successful
// renders, for AvgDurationOverTime.
type DurationPoint struct {
	Date          time.Time
	AvgDurationMS float64
}

// Store is the render log contract: append-only inserts plus lookup
// and analytical queries.
type Store interface {
	Append(ctx context.Context, record Record) error
	Get(ctx context.Context, renderID string) (*Record, error)
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	ListForName(ctx context.Context, name string, limit int) ([]Record, error)
	VolumeOverTime(ctx context.Context, days int) ([]VolumePoint, error)
	PerTemplateCounts(ctx context.Context) ([]TemplateCount, error)
	AvgDurationOverTime(ctx context.Context, days int) ([]DurationPoint, error)
}
