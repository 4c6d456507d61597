// Package filtering narrows a product list with a single property, operator
// and value selection.
//
// Evaluation is synchronous and side-effect free. A request without a property
// or operator matches everything and returns the input unchanged. Missing
// attributes, failed numeric coercion and unknown operators all evaluate to
// "no match" rather than an error.
//
// The engine never splits stored strings: multi-valued attributes are list
// values produced by the catalog loader.
package filtering
