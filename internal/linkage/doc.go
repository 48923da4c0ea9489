// Package linkage matches the rows of one record set against another through
// the tiers of a plan.
//
// Tiers run strictly in order. Each tier resolves its approximate comparators
// into lower-cased proxy columns, equi-joins the remaining A rows with the
// remaining B rows, keeps the first acceptable pairing per row, and removes
// the matched rows from the pools seen by later tiers. Rows that never match
// can be appended as leftovers with a null confidence.
//
// The matching is greedy and order dependent: A rows claim B candidates in
// input order and ties keep the first candidate seen. Callers that need a
// globally optimal assignment must build it elsewhere.
//
// All working state lives inside a single Link call. Inputs are cloned on
// entry and never mutated.
package linkage
