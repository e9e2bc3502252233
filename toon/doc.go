// Package toon implements TOON (Token Oriented Object Notation), a
// whitespace-indented, token-efficient alternative to JSON with a
// tabular encoding for uniform lists of records.
//
// TOON is designed to be:
//   - Token-cheap (no braces or quotes where the grammar allows)
//   - Human-readable (indentation-driven structure)
//   - Compact for record lists (CSV-style tables inside the document)
//   - Deterministic (equal trees encode byte-identically)
//   - Round-trippable (decode(encode(v)) == v, including key order)
//
// # Syntax
//
//	key: scalar
//	key:
//	  nestedKey: scalar
//	items[3]: 1, 2, 3
//	users[2]{id,name}:
//	  1,Alice
//	  2,Bob
//	mixed[2]:
//	  - scalar
//	  -
//	    nested: true
//
// Scalars are null, true/false, integers, floats, and strings.
// Strings are bare when unambiguous and double-quoted otherwise, so
// "42" the string and 42 the number stay distinct.
//
// # Tabular Arrays
//
// A list in which every element is a map with the same ordered key set
// and scalar values encodes as a header naming the columns plus one
// comma-joined row per record. On decode, the first data row fixes a
// converter per column (int, float, bool, or string); later rows must
// conform or decoding fails.
//
// # Streaming
//
// Decoding pulls lines lazily through a forward-only line source with
// one line of pushback, so peak memory tracks nesting depth rather
// than document size. TableReader and TableWriter expose the same
// row-at-a-time discipline for large root-level tables.
package toon
