package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hufschlaeger.net/basecamp-cardtables/internal/config"
	bc "hufschlaeger.net/basecamp-cardtables/internal/domain/basecamp"
	"hufschlaeger.net/basecamp-cardtables/internal/logger"
	"hufschlaeger.net/basecamp-cardtables/internal/repository/basecamp"
	"hufschlaeger.net/basecamp-cardtables/internal/storage/s3"
	"hufschlaeger.net/basecamp-cardtables/pkg/utils"
)

// maxParallelColumns begrenzt gleichzeitige Requests gegen die API
const maxParallelColumns = 4

var ErrNoCardTable = errors.New("no card table enabled")

type Exporter struct {
	config   *config.Config
	source   BoardSource
	uploader s3.Uploader
	mapper   *Mapper
	logger   *logger.Logger
	out      io.Writer
	now      func() time.Time
}

// NewExporter erstellt einen Exporter. uploader darf nil sein, dann wird nur lokal geschrieben.
func NewExporter(cfg *config.Config, source BoardSource, uploader s3.Uploader) *Exporter {
	return &Exporter{
		config:   cfg,
		source:   source,
		uploader: uploader,
		mapper:   NewMapper(cfg),
		logger:   logger.Default(),
		out:      os.Stdout,
		now:      time.Now,
	}
}

// SetOutput lenkt die Fortschrittsausgabe um
func (e *Exporter) SetOutput(w io.Writer) {
	e.out = w
}

// Export startet den Export und gibt den Namen der geschriebenen Datei zurück.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	// 1. Konfiguration validieren
	if err := e.config.Validate(); err != nil {
		return "", fmt.Errorf("konfiguration ungültig: %w", err)
	}
	if e.config.ProjectID == 0 {
		return "", errors.New("konfiguration ungültig: Projekt-ID fehlt (BASECAMP_PROJECT_ID)")
	}

	log := e.logger.WithProject(e.config.ProjectID)
	fmt.Fprintf(e.out, "🔍 Lade Card Table aus Projekt %d\n", e.config.ProjectID)

	// 2. Projekt und Card Table laden
	project, table, err := e.loadCardTable(ctx)
	if err != nil {
		return "", err
	}

	columns := basecamp.ColumnsOf(table)
	fmt.Fprintf(e.out, "📋 %s: %d Spalten\n", table.Title, len(columns))

	// 3. Karten aller Spalten laden
	cards, err := e.loadCards(ctx, columns)
	if err != nil {
		return "", fmt.Errorf("fehler beim Laden der Karten: %w", err)
	}

	snapshot := e.mapper.BuildSnapshot(project, table, cards)
	fmt.Fprintf(e.out, "📊 Gefunden: %d Karten\n", snapshot.CardCount())

	// 4. Rendern und schreiben
	rendered, err := Render(snapshot, e.config.ExportFormat)
	if err != nil {
		return "", err
	}

	filename := e.generateFilename(rendered.Extension)
	if err := os.WriteFile(filename, rendered.Data, 0644); err != nil {
		return "", fmt.Errorf("datei-Export fehlgeschlagen: %w", err)
	}
	log.Info("export written", zap.String("file", filename), zap.Int("bytes", len(rendered.Data)))
	fmt.Fprintf(e.out, "✅ Datei erstellt: %s (%d Karten)\n", filename, snapshot.CardCount())

	// 5. Optional nach S3
	if e.uploader != nil {
		key, err := e.uploader.Put(ctx, filepath.Base(filename), rendered.Data, rendered.ContentType)
		if err != nil {
			return filename, fmt.Errorf("upload fehlgeschlagen: %w", err)
		}
		fmt.Fprintf(e.out, "☁️  Hochgeladen: %s\n", key)
	}

	return filename, nil
}

func (e *Exporter) loadCardTable(ctx context.Context) (*bc.Project, *bc.CardTable, error) {
	project, err := e.source.Project(ctx, e.config.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("fehler beim Laden des Projekts: %w", err)
	}

	tableID := e.config.CardTableID
	if tableID == 0 {
		id, ok := project.CardTableID()
		if !ok {
			return nil, nil, fmt.Errorf("projekt %d (%s): %w", project.ID, project.Name, ErrNoCardTable)
		}
		tableID = id
	}

	table, err := e.source.CardTable(ctx, project.ID, tableID)
	if err != nil {
		return nil, nil, fmt.Errorf("fehler beim Laden der Card Table: %w", err)
	}
	return project, table, nil
}

// loadCards legt das Ergebnis je Spalte an deren Index ab, die Reihenfolge bleibt erhalten.
func (e *Exporter) loadCards(ctx context.Context, columns []bc.CardTableColumn) ([][]bc.Card, error) {
	results := make([][]bc.Card, len(columns))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelColumns)

	for i := range columns {
		column := &columns[i]
		g.Go(func() error {
			cards, err := e.source.Cards(ctx, column)
			if err != nil {
				return fmt.Errorf("spalte %q: %w", column.Title, err)
			}
			e.logger.Debug("column loaded", zap.Int64("column_id", column.ID), zap.Int("cards", len(cards)))
			results[i] = cards
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// generateFilename erstellt einen Dateinamen
func (e *Exporter) generateFilename(ext string) string {
	if e.config.OutputFile != "" {
		return e.config.OutputFile
	}

	// Standard-Format: project-<id>-cardtable-YYYY-MM-DD.<ext>
	return fmt.Sprintf("project-%d-cardtable-%s.%s", e.config.ProjectID, utils.DateOf(e.now()), ext)
}
