// Package engine is the guarded write surface of the JDex index.
//
// Every mutation runs in one store transaction in the same order:
// validate input, check guards (parent exists, number free, no live
// children), write the row together with its activity entry, commit. A failed commit
// rolls the whole call back and surfaces as a PERSISTENCE error, so what a
// caller reads afterwards is exactly what is on disk.
//
// The engine also owns the numbering allocator, the read and search
// queries, whole-database snapshots, the logical export document and the
// reset-to-default operation. Errors are *jd.Error values; branch on them
// with the jd.Is* helpers.
//
// Raw SQL is deliberately not here. See package console.
package engine
