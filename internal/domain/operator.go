package domain

// OperatorID names a comparison that can be applied to a property value.
type OperatorID string

const (
	OperatorEquals      OperatorID = "equals"
	OperatorGreaterThan OperatorID = "greater_than"
	OperatorLessThan    OperatorID = "less_than"
	OperatorAny         OperatorID = "any"
	OperatorNone        OperatorID = "none"
	OperatorIn          OperatorID = "in"
	OperatorContains    OperatorID = "contains"
)

// Operator pairs an operator id with the text shown to users.
type Operator struct {
	ID   OperatorID `json:"id"`
	Text string     `json:"text"`
}

var knownOperators = []Operator{
	{ID: OperatorEquals, Text: "Equals"},
	{ID: OperatorGreaterThan, Text: "Is greater than"},
	{ID: OperatorLessThan, Text: "Is less than"},
	{ID: OperatorAny, Text: "Has any value"},
	{ID: OperatorNone, Text: "Has no value"},
	{ID: OperatorIn, Text: "Is any of"},
	{ID: OperatorContains, Text: "Contains"},
}

// DefaultOperators returns the full operator set with its default display
// text. Catalogs that do not ship an operator list use it.
func DefaultOperators() []Operator {
	out := make([]Operator, len(knownOperators))
	copy(out, knownOperators)
	return out
}

// IsKnown reports whether id is one of the seven supported operators.
func (id OperatorID) IsKnown() bool {
	for _, op := range knownOperators {
		if op.ID == id {
			return true
		}
	}
	return false
}

// RequiresInput reports whether the operator compares against a user value.
// Presence tests (any, none) do not.
func (id OperatorID) RequiresInput() bool {
	switch id {
	case OperatorAny, OperatorNone:
		return false
	default:
		return true
	}
}

func copyOperators(operators []Operator) []Operator {
	if operators == nil {
		return nil
	}
	out := make([]Operator, len(operators))
	copy(out, operators)
	return out
}
