// Package jd provides the Johnny Decimal data model for JDex.
//
// This package contains types and pure functions only. Every other internal
// package imports jd; jd imports nothing internal.
//
// The hierarchy has four levels:
//   - Area: a range of category numbers, e.g. 10-19
//   - Category: a unique two-digit number, e.g. 11
//   - Folder: CC.SS, e.g. 11.01
//   - Item: CC.SS.SS, e.g. 11.01.02
//
// Key constraints:
//   - Identifiers are fixed-width, zero-padded two-digit segments
//   - Sequences run 1..MaxSequence per parent and are never reused
//   - Effective sensitivity is derived at read time, never stored
//   - All JSON tags use snake_case matching the SQLite column names
package jd
