// Package fst provides the typed entity model for telemetry emitted by the
// battery-aware Steiner-tree solver.
//
// # Reading Guide
//
// Start with these files to understand the model:
//   - optional.go: Optional[T], the present/absent sum type used for every field
//     the solver may or may not have printed
//   - model.go: Terminal, FstRecord, BudgetConfig, ObjectiveSummary, Selection, Snapshot
//   - edge.go: canonical undirected Edge and EdgeSet
//   - recommend.go: feasibility + least-objective recommendation rule
//
// # Architecture
//
// The fst package defines data types and the few rules that only need them;
// the pipeline stages live in sub-packages:
//   - fst/grammar/: stateless line-level record matchers
//   - fst/entity/: builds Terminals, FSTs, budget and selection from one file group
//   - fst/topology/: dump edge reconstruction, symmetric-difference distance, cycle checks
//   - fst/report/: per-iteration and cross-iteration reports
//   - fst/results/: results-directory discovery and batch extraction
//
// Snapshots are immutable once built; every stage reads them and none mutates them.
package fst
