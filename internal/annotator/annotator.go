package annotator

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/username/opening-times/internal/closures"
	"github.com/username/opening-times/internal/config"
	"github.com/username/opening-times/internal/htmltable"
	"github.com/username/opening-times/internal/render"
	"go.uber.org/zap"
)

// Result describes one annotation run
type Result struct {
	SectionFound bool
	Config       closures.Config
	Closures     closures.WeekdayClosureMap
	Rows         []render.Row // table rows after marking
	RowsMarked   int
	Note         string
	NoteFound    bool // false when the section has no note element
	Output       string
	Written      bool
}

// Annotator marks closures on an opening-times page
type Annotator struct {
	config   *config.Config
	resolver *closures.Resolver
	logger   *zap.Logger
}

// NewAnnotator creates a new annotator
func NewAnnotator(cfg *config.Config, resolver *closures.Resolver, logger *zap.Logger) *Annotator {
	return &Annotator{
		config:   cfg,
		resolver: resolver,
		logger:   logger,
	}
}

// Run annotates the configured document for the week containing now. With
// dryRun set nothing is written.
func (a *Annotator) Run(ctx context.Context, now time.Time, dryRun bool) (*Result, error) {
	docCfg := a.config.Document
	now = now.In(a.config.Closures.GetLocation())

	a.logger.Info("Starting annotation",
		zap.String("input", docCfg.Input),
		zap.Time("now", now),
		zap.Bool("dry_run", dryRun))

	src, err := os.ReadFile(docCfg.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	doc, err := htmltable.Parse(bytes.NewReader(src), docCfg.Fragment)
	if err != nil {
		return nil, err
	}

	section := doc.Section(a.config.Selectors.Section)
	if section == nil {
		a.logger.Info("Opening times section not found, nothing to do",
			zap.String("section", a.config.Selectors.Section))
		return &Result{}, nil
	}

	cfg := closures.ConfigFromDataset(section.Dataset())
	if a.config.Closures.Window != "" {
		cfg.Window = closures.Window(a.config.Closures.Window)
	}

	m := a.resolver.Resolve(ctx, cfg, now)

	table := section.Table(a.config.Selectors.Table, a.config.Selectors.Note)
	marked := render.ApplyClosuresToTable(table, m)
	render.RenderExceptionsNote(table, m, cfg.Window)
	if !table.HasNote() {
		a.logger.Warn("Exceptions note element not found, note not rendered",
			zap.String("note", a.config.Selectors.Note))
	}

	result := &Result{
		SectionFound: true,
		Config:       cfg,
		Closures:     m,
		Rows:         table.Rows(),
		RowsMarked:   marked,
		Note:         closures.NoteText(m, cfg.Window),
		NoteFound:    table.HasNote(),
		Output:       docCfg.OutputPath(),
	}

	a.logger.Info("Closures applied",
		zap.Int("weekdays_closed", len(m)),
		zap.Int("rows_marked", marked),
		zap.String("note", result.Note))

	if dryRun {
		return result, nil
	}

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(result.Output, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	result.Written = true

	a.logger.Info("Document written", zap.String("output", result.Output))

	return result, nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place so readers never see a partial page.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
