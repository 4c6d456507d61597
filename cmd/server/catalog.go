package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rpattn/productfilter/internal/config"
	"github.com/rpattn/productfilter/internal/db"
	"github.com/rpattn/productfilter/internal/domain"
	"github.com/rpattn/productfilter/internal/ingestion"
	"github.com/rpattn/productfilter/internal/repository"
)

// catalogSource is the loaded snapshot plus whatever backs product lookups.
type catalogSource struct {
	catalog domain.Catalog
	reader  repository.ProductReader
	conn    *db.Connection
}

func (s *catalogSource) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

func openCatalog(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*catalogSource, error) {
	opts := ingestion.Options{Enumerated: cfg.Catalog.Enumerated}

	switch cfg.Catalog.Source {
	case config.SourceFile, config.SourceSpreadsheet:
		repo, err := openFileCatalog(cfg.Catalog.Source, cfg.Catalog.Path, opts)
		if err != nil {
			return nil, err
		}
		catalog, err := repository.LoadCatalog(ctx, repo, cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
		return &catalogSource{catalog: catalog, reader: repository.NewSnapshotRepository(catalog)}, nil

	case config.SourcePostgres:
		if err := db.RunMigrations(cfg.Database); err != nil {
			return nil, err
		}
		conn, err := db.NewConnection(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		repo := repository.NewPostgresRepository(conn)

		if cfg.Catalog.SeedPath != "" {
			if err := seedCatalog(ctx, repo, cfg.Catalog.SeedPath, opts, log); err != nil {
				conn.Close()
				return nil, err
			}
		}

		catalog, err := repository.LoadCatalog(ctx, repo, "postgres")
		if err != nil {
			conn.Close()
			return nil, err
		}
		return &catalogSource{catalog: catalog, reader: repo, conn: conn}, nil

	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}

func openFileCatalog(source, path string, opts ingestion.Options) (repository.CatalogRepository, error) {
	if source == config.SourceSpreadsheet {
		return repository.NewSpreadsheetRepository(path, opts)
	}
	return repository.NewFileRepository(path)
}

// seedCatalog replaces the stored catalog with the contents of path.
// Spreadsheets go through the ingestion service; documents are loaded and
// validated directly.
func seedCatalog(ctx context.Context, writer repository.CatalogWriter, path string, opts ingestion.Options, log logrus.FieldLogger) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open seed file: %w", err)
		}
		defer f.Close()

		summary, err := ingestion.NewService(writer, opts, log).Ingest(ctx, ingestion.Request{FileName: filepath.Base(path), Data: f})
		if err != nil {
			return err
		}
		if !summary.Valid {
			return fmt.Errorf("seed catalog %s is invalid: %s", path, strings.Join(summary.Problems, "; "))
		}
		return nil
	default:
		repo, err := repository.NewFileRepository(path)
		if err != nil {
			return err
		}
		catalog, err := repository.LoadCatalog(ctx, repo, path)
		if err != nil {
			return err
		}
		if err := writer.ReplaceCatalog(ctx, catalog); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		log.WithField("file", path).Info("catalog seeded")
		return nil
	}
}
