package filtering

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/productfilter/internal/domain"
	"github.com/rpattn/productfilter/internal/schema/registry"
)

const (
	propName     domain.PropertyID = 0
	propColor    domain.PropertyID = 1
	propWeight   domain.PropertyID = 2
	propCategory domain.PropertyID = 3
	propWireless domain.PropertyID = 4
)

func sampleProperties() []domain.Property {
	return []domain.Property{
		domain.NewProperty(propName, "Product Name", domain.PropertyTypeString),
		domain.NewProperty(propColor, "color", domain.PropertyTypeString),
		domain.NewProperty(propWeight, "weight (oz)", domain.PropertyTypeNumber),
		domain.NewProperty(propCategory, "category", domain.PropertyTypeEnumerated, "tools", "electronics", "kitchenware"),
		domain.NewProperty(propWireless, "wireless", domain.PropertyTypeEnumerated, "true", "false"),
	}
}

func product(id domain.ProductID, name, color string, weight float64, category domain.Value, wireless string) domain.Product {
	values := []domain.PropertyValue{
		{PropertyID: propName, Value: domain.TextValue(name)},
		{PropertyID: propColor, Value: domain.TextValue(color)},
		{PropertyID: propWeight, Value: domain.NumberValue(weight)},
		{PropertyID: propCategory, Value: category},
	}
	if wireless != "" {
		values = append(values, domain.PropertyValue{PropertyID: propWireless, Value: domain.TextValue(wireless)})
	}
	return domain.NewProduct(id, values...)
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		product(1, "Headphones", "black", 5, domain.TextValue("electronics"), "true"),
		product(2, "Cell Phone", "silver", 3, domain.TextValue("electronics"), "true"),
		product(3, "Keyboard", "grey", 5, domain.TextValue("electronics"), "false"),
		product(4, "Cup", "white", 3, domain.TextValue("kitchenware"), ""),
		product(5, "Key", "silver", 1, domain.TextValue("tools"), ""),
		product(6, "Hammer", "brown", 19, domain.TextValue("tools"), ""),
	}
}

func sampleEngine(opts ...Option) *Engine {
	logger, _ := test.NewNullLogger()
	opts = append([]Option{WithLogger(logger)}, opts...)
	return NewEngine(registry.New(sampleProperties(), domain.DefaultOperators()), opts...)
}

func names(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		v, _ := p.Lookup(propName)
		out = append(out, v.String())
	}
	return out
}

func ids(products []domain.Product) []domain.ProductID {
	out := make([]domain.ProductID, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterInertRequestReturnsInput(t *testing.T) {
	e := sampleEngine()
	products := sampleProducts()

	tests := []struct {
		name    string
		request domain.FilterRequest
	}{
		{name: "empty request", request: domain.FilterRequest{}},
		{name: "property only", request: domain.FilterRequest{}.WithProperty(propColor).WithInput("silver")},
		{name: "operator only", request: domain.FilterRequest{}.WithOperator(domain.OperatorEquals).WithInput("silver")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Filter(products, tt.request)
			require.Len(t, got, len(products))
			assert.Same(t, &products[0], &got[0], "inert request must return the input slice itself")
		})
	}
}

func TestFilterEquals(t *testing.T) {
	e := sampleEngine()

	got := e.Filter(sampleProducts(), domain.NewFilterRequest(propColor, domain.OperatorEquals, "silver"))
	assert.Equal(t, []string{"Cell Phone", "Key"}, names(got))

	got = e.Filter(sampleProducts(), domain.NewFilterRequest(propColor, domain.OperatorEquals, "sil"))
	assert.Empty(t, got, "equals never matches a prefix")

	got = e.Filter(sampleProducts(), domain.NewFilterRequest(propColor, domain.OperatorEquals, "Silver"))
	assert.Empty(t, got, "equals is case sensitive")

	got = e.Filter(sampleProducts(), domain.NewFilterRequest(propColor, domain.OperatorEquals, " silver"))
	assert.Empty(t, got, "equals does not trim input")

	got = e.Filter(sampleProducts(), domain.NewFilterRequest(propWeight, domain.OperatorEquals, "19"))
	assert.Equal(t, []string{"Hammer"}, names(got))
}

func TestFilterEqualsWithoutInputNeverMatches(t *testing.T) {
	e := sampleEngine()

	got := e.Filter(sampleProducts(), domain.NewFilterRequest(propCategory, domain.OperatorEquals, ""))
	assert.Empty(t, got)
}

func TestFilterEqualsSelectionsAreAllOf(t *testing.T) {
	e := sampleEngine()
	products := []domain.Product{
		domain.NewProduct(1, domain.PropertyValue{PropertyID: propCategory, Value: domain.ListValue("tools", "electronics")}),
		domain.NewProduct(2, domain.PropertyValue{PropertyID: propCategory, Value: domain.TextValue("electronics")}),
		domain.NewProduct(3),
	}

	got := e.Filter(products, domain.NewFilterRequest(propCategory, domain.OperatorEquals, "", "electronics"))
	assert.Equal(t, []domain.ProductID{1, 2}, ids(got))

	got = e.Filter(products, domain.NewFilterRequest(propCategory, domain.OperatorEquals, "", "tools", "electronics"))
	assert.Equal(t, []domain.ProductID{1}, ids(got))

	got = e.Filter(products, domain.NewFilterRequest(propCategory, domain.OperatorEquals, "", "electronics", "kitchenware"))
	assert.Empty(t, got)
}

func TestFilterEqualsInputWinsOverSelections(t *testing.T) {
	e := sampleEngine()

	got := e.Filter(sampleProducts(), domain.NewFilterRequest(propCategory, domain.OperatorEquals, "tools", "electronics"))
	assert.Equal(t, []string{"Key", "Hammer"}, names(got))
}

func TestFilterInVersusEquals(t *testing.T) {
	e := sampleEngine()
	records := []domain.Product{
		domain.NewProduct(1, domain.PropertyValue{PropertyID: propCategory, Value: domain.DecodeList("tools, electronics")}),
	}

	tests := []struct {
		name       string
		operator   domain.OperatorID
		selections []string
		matches    bool
	}{
		{name: "in single selection", operator: domain.OperatorIn, selections: []string{"electronics"}, matches: true},
		{name: "equals single selection", operator: domain.OperatorEquals, selections: []string{"electronics"}, matches: true},
		{name: "in two selections", operator: domain.OperatorIn, selections: []string{"electronics", "kitchenware"}, matches: true},
		{name: "equals two selections", operator: domain.OperatorEquals, selections: []string{"electronics", "kitchenware"}, matches: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Filter(records, domain.NewFilterRequest(propCategory, tt.operator, "", tt.selections...))
			if tt.matches {
				assert.Len(t, got, 1)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestFilterIn(t *testing.T) {
	e := sampleEngine()

	got := e.Filter(sampleProducts(), domain.NewFilterRequest(propCategory, domain.OperatorIn, "", "tools", "kitchenware"))
	assert.Equal(t, []string{"Cup", "Key", "Hammer"}, names(got))

	got = e.Filter(sampleProducts(), domain.NewFilterRequest(propColor, domain.OperatorIn, "black, white"))
	assert.Equal(t, []string{"Headphones", "Cup"}, names(got), "free-text input is split on the list separator")

	got = e.Filter(sampleProducts(), domain.NewFilterRequest(propColor, domain.OperatorIn, "black,white"))
	assert.Empty(t, got, "only comma-space separates candidates")

	got = e.Filter(sampleProducts(), domain.NewFilterRequest(propColor, domain.OperatorIn, "black", "white"))
	assert.Equal(t, []string{"Cup"}, names(got), "selections take precedence over input")

	got = e.Filter(sampleProducts(), domain.NewFilterRequest(propColor, domain.OperatorIn, ""))
	assert.Empty(t, got, "empty candidate set never matches")

	got = e.Filter(sampleProducts(), domain.NewFilterRequest(propWireless, domain.OperatorIn, "", "true", "false"))
	assert.Equal(t, []string{"Headphones", "Cell Phone", "Keyboard"}, names(got), "missing attributes never match")
}

func TestFilterNumericComparison(t *testing.T) {
	e := sampleEngine()
	products := []domain.Product{
		domain.NewProduct(1, domain.PropertyValue{PropertyID: propWeight, Value: domain.NumberValue(2)}),
		domain.NewProduct(2, domain.PropertyValue{PropertyID: propWeight, Value: domain.NumberValue(4)}),
		domain.NewProduct(3, domain.PropertyValue{PropertyID: propWeight, Value: domain.NumberValue(5)}),
	}

	got := e.Filter(products, domain.NewFilterRequest(propWeight, domain.OperatorGreaterThan, "3"))
	assert.Equal(t, []domain.ProductID{2, 3}, ids(got))

	got = e.Filter(products, domain.NewFilterRequest(propWeight, domain.OperatorLessThan, "3"))
	assert.Equal(t, []domain.ProductID{1}, ids(got))

	for _, input := range []string{"abc", "NaN", "Inf", "-Inf", "1_000"} {
		assert.Empty(t, e.Filter(products, domain.NewFilterRequest(propWeight, domain.OperatorGreaterThan, input)), "greater_than %q", input)
		assert.Empty(t, e.Filter(products, domain.NewFilterRequest(propWeight, domain.OperatorLessThan, input)), "less_than %q", input)
	}

	got = e.Filter(products, domain.NewFilterRequest(propWeight, domain.OperatorGreaterThan, " 4 "))
	assert.Equal(t, []domain.ProductID{3}, ids(got), "surrounding whitespace is ignored for numbers")

	got = e.Filter(products, domain.NewFilterRequest(propWeight, domain.OperatorLessThan, "4.5"))
	assert.Equal(t, []domain.ProductID{1, 2}, ids(got))
}

func TestFilterNumericComparisonBlankInputIsZero(t *testing.T) {
	e := sampleEngine()
	products := []domain.Product{
		domain.NewProduct(1, domain.PropertyValue{PropertyID: propWeight, Value: domain.NumberValue(2)}),
		domain.NewProduct(2, domain.PropertyValue{PropertyID: propWeight, Value: domain.NumberValue(4)}),
		domain.NewProduct(3, domain.PropertyValue{PropertyID: propWeight, Value: domain.NumberValue(-1)}),
		domain.NewProduct(4),
	}

	for _, input := range []string{"", "   "} {
		got := e.Filter(products, domain.NewFilterRequest(propWeight, domain.OperatorGreaterThan, input))
		assert.Equal(t, []domain.ProductID{1, 2}, ids(got), "greater_than %q", input)

		got = e.Filter(products, domain.NewFilterRequest(propWeight, domain.OperatorLessThan, input))
		assert.Equal(t, []domain.ProductID{3}, ids(got), "less_than %q", input)
	}
}

func TestFilterNumericComparisonRejectsDigitSeparators(t *testing.T) {
	e := sampleEngine()
	products := []domain.Product{
		domain.NewProduct(1, domain.PropertyValue{PropertyID: propWeight, Value: domain.NumberValue(2)}),
		domain.NewProduct(2, domain.PropertyValue{PropertyID: propName, Value: domain.TextValue("1_000")}),
	}

	assert.Empty(t, e.Filter(products, domain.NewFilterRequest(propWeight, domain.OperatorLessThan, "1_000")))
	assert.Empty(t, e.Filter(products, domain.NewFilterRequest(propName, domain.OperatorGreaterThan, "1")))
}

func TestFilterMatchesItemsOnlyForDecodedLists(t *testing.T) {
	decoded, err := domain.PropertyTypeEnumerated.DecodeValue("tools, electronics")
	require.NoError(t, err)

	products := []domain.Product{
		domain.NewProduct(1, domain.PropertyValue{PropertyID: propCategory, Value: domain.TextValue("tools, electronics")}),
		domain.NewProduct(2, domain.PropertyValue{PropertyID: propCategory, Value: decoded}),
	}

	for _, operator := range []domain.OperatorID{domain.OperatorEquals, domain.OperatorIn} {
		got := Filter(products, domain.NewFilterRequest(propCategory, operator, "", "electronics"))
		assert.Equal(t, []domain.ProductID{2}, ids(got), "operator %s", operator)
	}
}

func TestFilterNumericComparisonOnTextValues(t *testing.T) {
	e := sampleEngine()
	products := []domain.Product{
		domain.NewProduct(1, domain.PropertyValue{PropertyID: propName, Value: domain.TextValue("12")}),
		domain.NewProduct(2, domain.PropertyValue{PropertyID: propName, Value: domain.TextValue("Hammer")}),
		domain.NewProduct(3, domain.PropertyValue{PropertyID: propName, Value: domain.ListValue("1", "2")}),
		domain.NewProduct(4, domain.PropertyValue{PropertyID: propName, Value: domain.TextValue("")}),
	}

	got := e.Filter(products, domain.NewFilterRequest(propName, domain.OperatorGreaterThan, "3"))
	assert.Equal(t, []domain.ProductID{1}, ids(got))

	got = e.Filter(products, domain.NewFilterRequest(propName, domain.OperatorLessThan, "1"))
	assert.Equal(t, []domain.ProductID{4}, ids(got), "blank stored text counts as zero")
}

func TestFilterSampleCatalogWeight(t *testing.T) {
	e := sampleEngine()

	got := e.Filter(sampleProducts(), domain.NewFilterRequest(propWeight, domain.OperatorGreaterThan, "3"))
	assert.Equal(t, []string{"Headphones", "Keyboard", "Hammer"}, names(got))
}

func TestFilterAnyNoneAreComplements(t *testing.T) {
	e := sampleEngine()
	products := sampleProducts()

	for _, property := range []domain.PropertyID{propName, propWireless, domain.PropertyID(42)} {
		anyOf := e.Filter(products, domain.NewFilterRequest(property, domain.OperatorAny, ""))
		noneOf := e.Filter(products, domain.NewFilterRequest(property, domain.OperatorNone, ""))

		assert.Len(t, append(ids(anyOf), ids(noneOf)...), len(products), "property %d", property)
		seen := make(map[domain.ProductID]bool)
		for _, id := range ids(anyOf) {
			seen[id] = true
		}
		for _, id := range ids(noneOf) {
			assert.False(t, seen[id], "product %d in both any and none for property %d", id, property)
		}
	}

	wireless := e.Filter(products, domain.NewFilterRequest(propWireless, domain.OperatorNone, ""))
	assert.Equal(t, []string{"Cup", "Key", "Hammer"}, names(wireless))
}

func TestFilterContains(t *testing.T) {
	e := sampleEngine()

	got := e.Filter(sampleProducts(), domain.NewFilterRequest(propName, domain.OperatorContains, "PHONE"))
	assert.Equal(t, []string{"Headphones", "Cell Phone"}, names(got))

	got = e.Filter(sampleProducts(), domain.NewFilterRequest(propWireless, domain.OperatorContains, ""))
	assert.Equal(t, []string{"Headphones", "Cell Phone", "Keyboard"}, names(got), "empty input matches every present attribute")
}

func TestFilterUnknownOperatorMatchesNothing(t *testing.T) {
	e := sampleEngine()

	got := e.Filter(sampleProducts(), domain.NewFilterRequest(propColor, domain.OperatorID("starts_with"), "s"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterIllegalOperatorTolerated(t *testing.T) {
	logger, hook := test.NewNullLogger()
	e := NewEngine(registry.New(sampleProperties(), domain.DefaultOperators()), WithLogger(logger))

	got := e.Filter(sampleProducts(), domain.NewFilterRequest(propWeight, domain.OperatorContains, "9"))
	assert.Equal(t, []string{"Hammer"}, names(got))

	require.NotNil(t, hook.LastEntry())
	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "illegal operator should be logged")
}

func TestFilterIllegalOperatorStrict(t *testing.T) {
	e := sampleEngine(WithStrictOperators())

	got := e.Filter(sampleProducts(), domain.NewFilterRequest(propWeight, domain.OperatorContains, "9"))
	assert.Empty(t, got)

	got = e.Filter(sampleProducts(), domain.NewFilterRequest(propWeight, domain.OperatorGreaterThan, "9"))
	assert.Equal(t, []string{"Hammer"}, names(got), "legal operators are unaffected by strict mode")
}

func TestFilterIsIdempotent(t *testing.T) {
	e := sampleEngine()
	products := sampleProducts()

	requests := []domain.FilterRequest{
		{},
		domain.NewFilterRequest(propColor, domain.OperatorEquals, "silver"),
		domain.NewFilterRequest(propWeight, domain.OperatorGreaterThan, "3"),
		domain.NewFilterRequest(propWeight, domain.OperatorLessThan, "abc"),
		domain.NewFilterRequest(propWireless, domain.OperatorAny, ""),
		domain.NewFilterRequest(propWireless, domain.OperatorNone, ""),
		domain.NewFilterRequest(propCategory, domain.OperatorIn, "", "tools"),
		domain.NewFilterRequest(propName, domain.OperatorContains, "e"),
		domain.NewFilterRequest(propName, domain.OperatorID("bogus"), "e"),
	}

	for _, request := range requests {
		once := e.Filter(products, request)
		twice := e.Filter(once, request)
		assert.Equal(t, ids(once), ids(twice))
		assert.Equal(t, ids(once), ids(e.Filter(products, request)), "repeated calls return the same result")
	}
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	e := sampleEngine()
	products := sampleProducts()
	before := ids(products)

	_ = e.Filter(products, domain.NewFilterRequest(propColor, domain.OperatorEquals, "silver"))
	assert.Equal(t, before, ids(products))
}

func TestFilterConcurrentCalls(t *testing.T) {
	e := sampleEngine()
	products := sampleProducts()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := e.Filter(products, domain.NewFilterRequest(propColor, domain.OperatorEquals, "silver"))
			assert.Equal(t, []string{"Cell Phone", "Key"}, names(got))
		}()
	}
	wg.Wait()
}

func TestPackageFilterSkipsLegalityChecks(t *testing.T) {
	got := Filter(sampleProducts(), domain.NewFilterRequest(propWeight, domain.OperatorContains, "9"))
	assert.Equal(t, []string{"Hammer"}, names(got))
}

func TestCompile(t *testing.T) {
	e := sampleEngine()

	_, active := e.Compile(domain.FilterRequest{})
	assert.False(t, active)

	predicate, active := e.Compile(domain.NewFilterRequest(propColor, domain.OperatorEquals, "silver"))
	require.True(t, active)
	assert.True(t, predicate(sampleProducts()[1]))
	assert.False(t, predicate(sampleProducts()[0]))
	assert.False(t, predicate(domain.NewProduct(99)))
}
