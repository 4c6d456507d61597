package domain

// FilterRequest is the current property, operator and value selection driving
// one evaluation pass.
type FilterRequest struct {
	PropertyID *PropertyID
	OperatorID *OperatorID
	// InputValue carries free-text or numeric input.
	InputValue string
	// MultiValue carries the values picked for an enumerated property.
	MultiValue []string
}

// NewFilterRequest creates a complete request for the given selection.
func NewFilterRequest(propertyID PropertyID, operatorID OperatorID, input string, selections ...string) FilterRequest {
	return FilterRequest{
		PropertyID: &propertyID,
		OperatorID: &operatorID,
		InputValue: input,
		MultiValue: copyStrings(selections),
	}
}

// IsInert reports whether the request matches everything because the
// property or operator has not been chosen yet.
func (r FilterRequest) IsInert() bool {
	return r.PropertyID == nil || r.OperatorID == nil
}

// WithProperty returns a new request with the property selected
func (r FilterRequest) WithProperty(id PropertyID) FilterRequest {
	next := r.clone()
	next.PropertyID = &id
	return next
}

// WithOperator returns a new request with the operator selected
func (r FilterRequest) WithOperator(id OperatorID) FilterRequest {
	next := r.clone()
	next.OperatorID = &id
	return next
}

// WithInput returns a new request with updated free-text input
func (r FilterRequest) WithInput(input string) FilterRequest {
	next := r.clone()
	next.InputValue = input
	return next
}

// WithSelections returns a new request with the multi-select values replaced
func (r FilterRequest) WithSelections(selections ...string) FilterRequest {
	next := r.clone()
	next.MultiValue = copyStrings(selections)
	return next
}

// ToggleSelection returns a new request with value removed from the
// multi-select values when present, or appended when absent.
func (r FilterRequest) ToggleSelection(value string) FilterRequest {
	next := r.clone()
	selections := make([]string, 0, len(r.MultiValue)+1)
	removed := false
	for _, selected := range r.MultiValue {
		if selected == value {
			removed = true
			continue
		}
		selections = append(selections, selected)
	}
	if !removed {
		selections = append(selections, value)
	}
	next.MultiValue = selections
	return next
}

// Clear returns the inert request.
func (r FilterRequest) Clear() FilterRequest {
	return FilterRequest{}
}

func (r FilterRequest) clone() FilterRequest {
	next := FilterRequest{InputValue: r.InputValue, MultiValue: copyStrings(r.MultiValue)}
	if r.PropertyID != nil {
		id := *r.PropertyID
		next.PropertyID = &id
	}
	if r.OperatorID != nil {
		id := *r.OperatorID
		next.OperatorID = &id
	}
	return next
}
