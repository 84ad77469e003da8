// Package abi provides low-level helpers for the native structure ABI.
//
// It holds overflow-checked arithmetic, alignment, pointer width and the
// allocation limits shared by the marshal package. The native ABI is the
// driver's: little-endian, natural alignment, pointer-sized handles.
//
// This package is internal to marshal.
package abi
