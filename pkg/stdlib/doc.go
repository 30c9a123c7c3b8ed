// Package stdlib provides the standard grounded operations: arithmetic,
// comparison and logic, the non-determinism operations superpose, collapse,
// let and empty, space access through match, add-atom, remove-atom and
// get-atoms, expression manipulation and println!.
//
// Register makes the operations and the number and boolean literals known to
// a tokenizer, so programs can refer to them by name.
package stdlib
