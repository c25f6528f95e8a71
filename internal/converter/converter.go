// Package converter runs the per-component pipeline: fetch, parse, build,
// export and persist into the shared library.
package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lcsc2kicad/internal/apperr"
	"github.com/starford/lcsc2kicad/internal/checksum"
	"github.com/starford/lcsc2kicad/internal/kicad"
	"github.com/starford/lcsc2kicad/internal/library"
	"github.com/starford/lcsc2kicad/internal/metrics"
	"github.com/starford/lcsc2kicad/internal/models"
	"github.com/starford/lcsc2kicad/internal/shape"
)

// Source provides remote component data.
type Source interface {
	FetchComponent(ctx context.Context, id string) (*models.ComponentRecord, error)
	DownloadOBJ(ctx context.Context, uuid string) ([]byte, error)
	DownloadSTEP(ctx context.Context, uuid string) ([]byte, error)
}

// Library is the artifact store conversions write into.
type Library interface {
	Name() string
	AddOrUpdate(ctx context.Context, key, payload string, overwrite bool) error
	WriteFootprint(ctx context.Context, name, content string) error
	WriteModel(ctx context.Context, name, ext string, data []byte) error
	Lookup(ctx context.Context, id string) (library.Artifacts, error)
}

// Catalog records converted components.
type Catalog interface {
	UpsertComponent(ctx context.Context, c models.ComponentSummary) error
}

// Options selects what to convert and how.
type Options struct {
	Symbol    bool
	Footprint bool
	Model3D   bool
	// Overwrite replaces an existing symbol entry with the same name.
	Overwrite       bool
	ProjectRelative bool
	GlobalEnv       string
}

// Validate checks that at least one artifact class is selected.
func (o Options) Validate() error {
	if !o.Symbol && !o.Footprint && !o.Model3D {
		return fmt.Errorf("%w: select at least one of symbol, footprint or 3d model", apperr.ErrInvalidInput)
	}
	return nil
}

// Result summarizes one successful conversion.
type Result struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	Symbol       bool     `json:"symbol"`
	Footprint    bool     `json:"footprint"`
	ModelFormats []string `json:"model_formats"`
}

var idPattern = regexp.MustCompile(`^C\d+$`)

// ValidateID checks an LCSC part number such as "C2040".
func ValidateID(id string) error {
	if err := validation.Validate(id,
		validation.Required,
		validation.Match(idPattern).Error("must be C followed by digits"),
	); err != nil {
		return fmt.Errorf("%w: component id %q: %w", apperr.ErrInvalidInput, id, err)
	}
	return nil
}

// Converter converts components into a library.
type Converter struct {
	src     Source
	lib     Library
	catalog Catalog
	logger  *slog.Logger
}

// New creates a Converter. catalog may be nil.
func New(src Source, lib Library, catalog Catalog, logger *slog.Logger) *Converter {
	return &Converter{src: src, lib: lib, catalog: catalog, logger: logger}
}

// Convert runs the full pipeline for id. Steps run strictly in order.
func (c *Converter) Convert(ctx context.Context, id string, opts Options) (res *Result, err error) {
	start := time.Now()
	defer func() { metrics.RecordConversion(err, time.Since(start)) }()

	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rec, err := c.src.FetchComponent(ctx, id)
	if err != nil {
		return nil, err
	}
	logger := c.logger.With(slog.String("id", id))
	logger.Info("converter: fetched component", slog.String("title", rec.Title))

	res = &Result{ID: id, Name: kicad.ComponentName(rec.Title, id), Title: rec.Title}
	var parts [][]byte

	if opts.Symbol {
		payload, err := c.convertSymbol(ctx, rec, opts, logger)
		if err != nil {
			return nil, err
		}
		res.Symbol = true
		parts = append(parts, []byte(payload))
	}
	if opts.Footprint {
		content, err := c.convertFootprint(ctx, rec, opts, logger)
		if err != nil {
			return nil, err
		}
		res.Footprint = true
		parts = append(parts, []byte(content))
	}
	if opts.Model3D {
		formats, err := c.convertModel(ctx, rec, logger)
		if err != nil {
			return nil, err
		}
		res.ModelFormats = formats
	}

	c.record(ctx, rec, res, checksum.Parts(parts...), logger)
	logger.Info("converter: done",
		slog.String("name", res.Name),
		slog.Bool("symbol", res.Symbol),
		slog.Bool("footprint", res.Footprint),
		slog.Any("models", res.ModelFormats))
	return res, nil
}

func (c *Converter) convertSymbol(ctx context.Context, rec *models.ComponentRecord, opts Options, logger *slog.Logger) (string, error) {
	parsed, err := shape.ParseSymbol(rec.SymbolShapes, logger)
	if err != nil {
		return "", fmt.Errorf("symbol %s: %w", rec.ID, err)
	}
	sym := kicad.BuildSymbol(rec, parsed, c.lib.Name())
	payload := kicad.ExportSymbol(sym)
	if err := c.lib.AddOrUpdate(ctx, sym.Name, payload, opts.Overwrite); err != nil {
		return "", fmt.Errorf("symbol %s: %w", rec.ID, err)
	}
	logger.Info("converter: symbol stored", slog.String("name", sym.Name), slog.Int("dropped", parsed.Dropped))
	return payload, nil
}

func (c *Converter) convertFootprint(ctx context.Context, rec *models.ComponentRecord, opts Options, logger *slog.Logger) (string, error) {
	parsed, err := shape.ParseFootprint(rec.FootprintShapes, logger)
	if err != nil {
		return "", fmt.Errorf("footprint %s: %w", rec.ID, err)
	}
	fp := kicad.BuildFootprint(rec, parsed, kicad.FootprintOptions{
		LibName:         c.lib.Name(),
		ProjectRelative: opts.ProjectRelative,
		GlobalEnv:       opts.GlobalEnv,
		WithModel:       opts.Model3D,
	}, logger)
	content := kicad.ExportFootprint(fp)
	if err := c.lib.WriteFootprint(ctx, fp.Name, content); err != nil {
		return "", fmt.Errorf("footprint %s: %w", rec.ID, err)
	}
	logger.Info("converter: footprint stored", slog.String("name", fp.Name), slog.Int("dropped", parsed.Dropped))
	return content, nil
}

// convertModel fetches both mesh encodings independently. One failing
// encoding is logged; only losing both fails the component. A component
// without a 3D model is not an error.
func (c *Converter) convertModel(ctx context.Context, rec *models.ComponentRecord, logger *slog.Logger) ([]string, error) {
	if rec.Model3D == nil {
		logger.Warn("converter: no 3D model available")
		return nil, nil
	}
	name := kicad.ComponentName(rec.Model3D.Title, rec.ID)

	var (
		formats []string
		errs    []error
	)
	if err := c.storeWRL(ctx, rec.Model3D.UUID, name); err != nil {
		logger.Warn("converter: wrl model failed", slog.String("error", err.Error()))
		errs = append(errs, err)
	} else {
		formats = append(formats, library.ExtWRL)
	}
	if err := c.storeSTEP(ctx, rec.Model3D.UUID, name); err != nil {
		logger.Warn("converter: step model failed", slog.String("error", err.Error()))
		errs = append(errs, err)
	} else {
		formats = append(formats, library.ExtSTEP)
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("%w: 3d model %s: %w", apperr.ErrRemote, rec.ID, errors.Join(errs...))
	}
	return formats, nil
}

func (c *Converter) storeWRL(ctx context.Context, uuid, name string) error {
	obj, err := c.src.DownloadOBJ(ctx, uuid)
	metrics.RecordMeshDownload(library.ExtWRL, err)
	if err != nil {
		return err
	}
	wrl, err := kicad.ConvertOBJToWRL(obj)
	if err != nil {
		return err
	}
	return c.lib.WriteModel(ctx, name, library.ExtWRL, wrl)
}

func (c *Converter) storeSTEP(ctx context.Context, uuid, name string) error {
	step, err := c.src.DownloadSTEP(ctx, uuid)
	metrics.RecordMeshDownload(library.ExtSTEP, err)
	if err != nil {
		return err
	}
	if err := kicad.CheckSTEP(step); err != nil {
		return err
	}
	return c.lib.WriteModel(ctx, name, library.ExtSTEP, step)
}

// record upserts the catalog row from what the library now holds. Failures
// are logged; the artifacts are already persisted.
func (c *Converter) record(ctx context.Context, rec *models.ComponentRecord, res *Result, sum string, logger *slog.Logger) {
	if c.catalog == nil {
		return
	}
	art, err := c.lib.Lookup(ctx, rec.ID)
	if err != nil {
		logger.Warn("converter: lookup failed", slog.String("error", err.Error()))
		art = library.Artifacts{Symbol: res.Symbol, Footprint: res.Footprint, ModelFormats: res.ModelFormats}
	}
	summary := models.ComponentSummary{
		ID:           rec.ID,
		Name:         res.Name,
		Title:        rec.Title,
		Manufacturer: rec.Manufacturer,
		Datasheet:    rec.Datasheet,
		Package:      rec.Package,
		HasSymbol:    art.Symbol,
		HasFootprint: art.Footprint,
		ModelFormats: art.ModelFormats,
		Checksum:     sum,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := c.catalog.UpsertComponent(ctx, summary); err != nil {
		logger.Warn("converter: catalog update failed", slog.String("error", err.Error()))
	}
}
