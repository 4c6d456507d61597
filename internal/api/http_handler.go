// Package api serves the catalog, the operator selector data and filtered
// product tables over HTTP.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/productfilter/internal/domain"
	"github.com/rpattn/productfilter/internal/export"
	"github.com/rpattn/productfilter/internal/filtering"
	"github.com/rpattn/productfilter/internal/middleware"
	"github.com/rpattn/productfilter/internal/repository"
	"github.com/rpattn/productfilter/internal/schema/registry"
)

// Handler serves the read-only catalog API.
type Handler struct {
	catalog  domain.Catalog
	registry *registry.Registry
	engine   *filtering.Engine
	reader   repository.ProductReader
	logger   logrus.FieldLogger
	router   chi.Router
}

// NewHTTPHandler builds the API routes over one catalog snapshot. reader
// backs product lookups when no per-request loader is installed.
func NewHTTPHandler(
	catalog domain.Catalog,
	reg *registry.Registry,
	engine *filtering.Engine,
	reader repository.ProductReader,
	logger logrus.FieldLogger,
) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	h := &Handler{
		catalog:  catalog,
		registry: reg,
		engine:   engine,
		reader:   reader,
		logger:   logger,
		router:   chi.NewRouter(),
	}
	h.router.Route("/api", func(r chi.Router) {
		r.Get("/properties", h.handleProperties)
		r.Get("/operators", h.handleOperators)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.handleProducts)
			r.Get("/export", h.handleExport)
			r.Get("/lookup", h.handleLookup)
		})
	})
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

type propertiesResponse struct {
	CatalogID  string            `json:"catalog_id"`
	Properties []domain.Property `json:"properties"`
}

func (h *Handler) handleProperties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, propertiesResponse{
		CatalogID:  h.catalog.ID.String(),
		Properties: h.registry.Properties(),
	})
}

type operatorsResponse struct {
	Operators []domain.Operator `json:"operators"`
}

func (h *Handler) handleOperators(w http.ResponseWriter, r *http.Request) {
	propertyID, err := parsePropertyID(r.URL.Query().Get("propertyId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, operatorsResponse{Operators: h.registry.OperatorsFor(propertyID)})
}

type productsResponse struct {
	InputKind registry.InputKind `json:"input_kind"`
	Total     int                `json:"total"`
	Matched   int                `json:"matched"`
	Table     export.Table       `json:"table"`
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	request, err := parseFilterRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	products := h.catalog.Products()
	matched := h.engine.Filter(products, request)

	writeJSON(w, http.StatusOK, productsResponse{
		InputKind: h.registry.InputKind(request.PropertyID, request.OperatorID),
		Total:     len(products),
		Matched:   len(matched),
		Table:     export.BuildTable(h.registry.Properties(), matched),
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	request, err := parseFilterRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	table := export.BuildTable(h.registry.Properties(), h.engine.Filter(h.catalog.Products(), request))

	var buf bytes.Buffer
	if err := export.Write(&buf, format, table); err != nil {
		h.logger.WithError(err).Error("failed to render export")
		http.Error(w, "failed to render export", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type lookupResponse struct {
	Products []domain.Product `json:"products"`
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ids, err := parseProductIDs(r.URL.Query().Get("ids"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	products, err := middleware.LoadProducts(r.Context(), h.reader, ids)
	if err != nil {
		h.logger.WithError(err).Error("product lookup failed")
		http.Error(w, "product lookup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, lookupResponse{Products: products})
}

func parsePropertyID(raw string) (*domain.PropertyID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid propertyId %q", raw)
	}
	propertyID := domain.PropertyID(id)
	return &propertyID, nil
}

// parseFilterRequest reads propertyId, operatorId, value and repeated values
// query parameters. Absent ids leave the request inert.
func parseFilterRequest(r *http.Request) (domain.FilterRequest, error) {
	query := r.URL.Query()

	propertyID, err := parsePropertyID(query.Get("propertyId"))
	if err != nil {
		return domain.FilterRequest{}, err
	}

	request := domain.FilterRequest{}
	if propertyID != nil {
		request = request.WithProperty(*propertyID)
	}
	if operator := strings.TrimSpace(query.Get("operatorId")); operator != "" {
		request = request.WithOperator(domain.OperatorID(operator))
	}
	request = request.WithInput(query.Get("value"))
	if values := query["values"]; len(values) > 0 {
		request = request.WithSelections(values...)
	}
	return request, nil
}

func parseProductIDs(raw string) ([]domain.ProductID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("ids is required")
	}
	parts := strings.Split(raw, ",")
	ids := make([]domain.ProductID, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q", part)
		}
		ids = append(ids, domain.ProductID(id))
	}
	return ids, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
