package filtering

import (
	"github.com/sirupsen/logrus"

	"github.com/rpattn/productfilter/internal/domain"
	"github.com/rpattn/productfilter/internal/schema/registry"
)

// Engine evaluates filter requests. It holds no per-request state and is safe
// for concurrent use.
type Engine struct {
	registry *registry.Registry
	strict   bool
	logger   logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrictOperators makes requests whose operator is not legal for the
// property type match nothing instead of being evaluated anyway.
func WithStrictOperators() Option {
	return func(e *Engine) {
		e.strict = true
	}
}

// WithLogger sets the logger used for legality warnings and debug output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine. reg may be nil, in which case no legality
// checks are made.
func NewEngine(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: reg,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile builds the predicate for request. active is false for an inert
// request, which matches every product.
func (e *Engine) Compile(request domain.FilterRequest) (Predicate, bool) {
	if request.IsInert() {
		return nil, false
	}
	propertyID := *request.PropertyID
	operatorID := *request.OperatorID

	if !operatorID.IsKnown() {
		e.logger.WithFields(logrus.Fields{
			"property_id": propertyID,
			"operator_id": operatorID,
		}).Warn("unknown operator, no product will match")
		return matchNone, true
	}

	if e.registry != nil {
		if property, ok := e.registry.GetProperty(propertyID); ok && !property.Type.Allows(operatorID) {
			entry := e.logger.WithFields(logrus.Fields{
				"property_id":   propertyID,
				"property_type": property.Type,
				"operator_id":   operatorID,
			})
			if e.strict {
				entry.Warn("operator not legal for property type, rejecting request")
				return matchNone, true
			}
			entry.Warn("operator not legal for property type, evaluating anyway")
		}
	}

	return compilePredicate(propertyID, operatorID, request.InputValue, request.MultiValue), true
}

// Filter returns the products matching request, in their original order. An
// inert request returns products unchanged.
//
// Multi-valued attributes must already be decoded into list values, as
// domain.PropertyType.DecodeValue does at load time. A ", "-joined text value
// is compared as one string, so equals and in selections never match its
// individual items.
func (e *Engine) Filter(products []domain.Product, request domain.FilterRequest) []domain.Product {
	predicate, active := e.Compile(request)
	if !active {
		return products
	}

	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if predicate(p) {
			filtered = append(filtered, p)
		}
	}

	e.logger.WithFields(logrus.Fields{
		"property_id": *request.PropertyID,
		"operator_id": *request.OperatorID,
		"in":          len(products),
		"out":         len(filtered),
	}).Debug("filtered products")

	return filtered
}

var defaultEngine = NewEngine(nil)

// Filter evaluates request without a registry, so operator legality is not
// checked. Products must carry decoded list values, see Engine.Filter.
func Filter(products []domain.Product, request domain.FilterRequest) []domain.Product {
	return defaultEngine.Filter(products, request)
}
