// Package rendercache implements the hierarchical tile cache spec.md §4.5
// describes: a tree of square canvas-space regions, each either recursed
// into or rendered (directly, or onto a pooled backing surface reused
// across frames as long as the set of components it covers hasn't
// changed). Grounded on the teacher's internal/cache package (the
// doubly-linked MRU/LRU list shape, reimplemented locally since
// internal/cache's list node type is unexported) and its backend/native
// tile concept (a node owning a fixed-size square region).
package rendercache
