// Package plan describes match plans: the ordered tiers of column comparisons
// the linkage engine walks through.
//
// A Plan holds tiers in processing order. Each tier carries a confidence level
// (lower is more certain, zero is reserved) and the comparators that must all
// hold for two rows to match at that level. Comparators are either exact
// (column equality) or approximate (closest string within a similarity
// cutoff).
//
// Plans are usually produced in one of three ways: Build returns an empty
// skeleton whose slots the caller fills in, Builder assembles a plan fluently,
// and Load/Decode read the TOML form written by Encode.
package plan
