// Package report assembles the machine-readable summary of a prepare run.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lherron/datasetprep/internal/domain"
	"github.com/lherron/datasetprep/internal/render"
	"github.com/lherron/datasetprep/internal/store"
)

// MissingSampleSize caps missing_attachment_images_sample.
const MissingSampleSize = 25

// Counts holds row counts in report order.
type Counts struct {
	Questions      int `json:"questions" yaml:"questions"`
	Categories     int `json:"categories" yaml:"categories"`
	Attachments    int `json:"attachments" yaml:"attachments"`
	CategoryGroups int `json:"category_groups" yaml:"category_groups"`
}

// Report is the summary printed after a prepare run.
type Report struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	SourceDB        string `json:"source_db" yaml:"source_db"`
	SourceImagesDir string `json:"source_images_dir" yaml:"source_images_dir"`
	OutputDB        string `json:"output_db" yaml:"output_db"`
	OutputImagesDir string `json:"output_images_dir" yaml:"output_images_dir"`

	Counts Counts `json:"counts" yaml:"counts"`

	CanonicalizedTopLevelCount int            `json:"canonicalized_top_level_count" yaml:"canonicalized_top_level_count"`
	CanonicalizedTopLevels     []domain.Remap `json:"canonicalized_top_levels" yaml:"canonicalized_top_levels"`
	IconAliasesCreated         int            `json:"icon_aliases_created" yaml:"icon_aliases_created"`
	GuideHTMLRemoved           bool           `json:"guide_html_removed" yaml:"guide_html_removed"`

	MissingAttachmentImagesCount  int      `json:"missing_attachment_images_count" yaml:"missing_attachment_images_count"`
	MissingAttachmentImagesSample []string `json:"missing_attachment_images_sample" yaml:"missing_attachment_images_sample"`
}

// New starts a report with a fresh run id and timestamp.
func New(now time.Time) *Report {
	return &Report{
		RunID:                         uuid.NewString(),
		GeneratedAt:                   now.UTC().Truncate(time.Second),
		CanonicalizedTopLevels:        []domain.Remap{},
		MissingAttachmentImagesSample: []string{},
	}
}

// SetCounts copies table counts into the report.
func (r *Report) SetCounts(counts []store.Count) {
	for _, c := range counts {
		switch c.Table {
		case domain.TableQuestions:
			r.Counts.Questions = c.Rows
		case domain.TableCategories:
			r.Counts.Categories = c.Rows
		case domain.TableAttachments:
			r.Counts.Attachments = c.Rows
		case domain.TableCategoryGroups:
			r.Counts.CategoryGroups = c.Rows
		}
	}
}

// SetRemaps records the applied plan.
func (r *Report) SetRemaps(plan []domain.Remap) {
	r.CanonicalizedTopLevels = append([]domain.Remap{}, plan...)
	r.CanonicalizedTopLevelCount = len(plan)
}

// SetMissing records the missing image filenames, keeping the first
// MissingSampleSize as the sample.
func (r *Report) SetMissing(missing []string) {
	r.MissingAttachmentImagesCount = len(missing)
	n := min(len(missing), MissingSampleSize)
	r.MissingAttachmentImagesSample = append([]string{}, missing[:n]...)
}

// Encode renders the report in format.
func (r *Report) Encode(format render.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := render.NewRenderer(&buf).Render(format, r); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the report as JSON to path, creating parent directories.
func (r *Report) WriteFile(path string) error {
	data, err := r.Encode(render.FormatJSON)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
