// Package evaluation runs the benchmark: every task against every
// verification strategy, one EvaluationRecord per run written to a Sink.
//
// The loop is sequential by construction. Tasks run in ascending ID order,
// strategies in declaration order, and each record is written as soon as
// its run finishes so a partial batch still leaves usable rows behind.
//
// Sinks:
//
//   - CSVSink: header row plus one flushed row per run
//   - DBSink: one flat gorm table (evaluation_records), one insert per run
package evaluation
