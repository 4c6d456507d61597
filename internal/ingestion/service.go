package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rpattn/productfilter/internal/domain"
	"github.com/rpattn/productfilter/internal/schema/validator"
)

// CatalogWriter replaces a stored catalog.
type CatalogWriter interface {
	ReplaceCatalog(ctx context.Context, catalog domain.Catalog) error
}

// Service turns uploaded spreadsheets into validated catalogs.
type Service struct {
	writer CatalogWriter
	opts   Options
	logger logrus.FieldLogger
}

// NewService creates a new ingestion service. writer may be nil when only
// previews are needed.
func NewService(writer CatalogWriter, opts Options, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{writer: writer, opts: opts, logger: logger}
}

// Request is one uploaded catalog file.
type Request struct {
	FileName string
	Data     io.Reader
}

// Summary describes a parsed catalog.
type Summary struct {
	FileName      string            `json:"file_name"`
	Properties    []domain.Property `json:"properties"`
	OperatorCount int               `json:"operator_count"`
	ProductCount  int               `json:"product_count"`
	Inferred      bool              `json:"inferred"`
	Valid         bool              `json:"valid"`
	Problems      []string          `json:"problems,omitempty"`
	Warnings      []string          `json:"warnings,omitempty"`
	Stored        bool              `json:"stored"`
}

// Preview parses and validates a file without storing it.
func (s *Service) Preview(ctx context.Context, req Request) (Summary, error) {
	_, summary, err := s.parse(ctx, req)
	return summary, err
}

// Ingest parses, validates and stores a file through the configured writer.
// Invalid catalogs are reported in the summary and not stored.
func (s *Service) Ingest(ctx context.Context, req Request) (Summary, error) {
	if s.writer == nil {
		return Summary{}, errors.New("ingestion service has no catalog writer")
	}
	catalog, summary, err := s.parse(ctx, req)
	if err != nil {
		return Summary{}, err
	}
	if !summary.Valid {
		return summary, nil
	}
	if err := s.writer.ReplaceCatalog(ctx, catalog); err != nil {
		return Summary{}, fmt.Errorf("failed to store catalog: %w", err)
	}
	summary.Stored = true
	s.logger.WithFields(logrus.Fields{
		"file":       req.FileName,
		"properties": len(summary.Properties),
		"products":   summary.ProductCount,
	}).Info("catalog ingested")
	return summary, nil
}

func (s *Service) parse(ctx context.Context, req Request) (domain.Catalog, Summary, error) {
	if err := ctx.Err(); err != nil {
		return domain.Catalog{}, Summary{}, err
	}
	if req.Data == nil {
		return domain.Catalog{}, Summary{}, errors.New("no data provided")
	}
	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return domain.Catalog{}, Summary{}, fmt.Errorf("failed to read upload: %w", err)
	}

	result, err := Parse(req.FileName, payload, s.opts)
	if err != nil {
		return domain.Catalog{}, Summary{}, err
	}

	catalog := domain.NewCatalog(req.FileName, result.Properties, result.Operators, result.Products)
	summary := Summary{
		FileName:      req.FileName,
		Properties:    catalog.Properties(),
		OperatorCount: len(catalog.Operators()),
		ProductCount:  len(result.Products),
		Inferred:      result.Inferred,
		Valid:         true,
	}
	if err := validator.ValidateCatalog(catalog.Properties(), catalog.Operators(), catalog.Products()); err != nil {
		summary.Valid = false
		summary.Problems = splitProblems(err)
		s.logger.WithError(err).WithField("file", req.FileName).Warn("uploaded catalog failed validation")
	}
	summary.Warnings = validator.CheckValues(catalog.Properties(), catalog.Products())
	return catalog, summary, nil
}

func splitProblems(err error) []string {
	var problems []string
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimPrefix(line, validator.ErrInvalidCatalog.Error()+": ")
		for _, problem := range strings.Split(line, "; ") {
			if problem = strings.TrimSpace(problem); problem != "" {
				problems = append(problems, problem)
			}
		}
	}
	return problems
}
