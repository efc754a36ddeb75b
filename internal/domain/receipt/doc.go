// Package receipt turns the recognized text of a photographed receipt into an
// expense draft: amount, date, country and accounting concept.
//
// Every function in this package is pure. Nothing here performs I/O, keeps
// mutable package state or returns an error for malformed input; sparse or
// garbled text degrades to documented defaults so a human reviewer always
// gets an editable draft.
package receipt
