// Package recordset models the ordered, schema-bearing collections of rows that
// the linkage engine consumes and produces.
//
// Every row carries an origin index that identifies it for the lifetime of a
// matching run. Operations that reshape a Set (filtering, projecting, adding a
// derived column) return a new Set and keep the origin indices intact, so a row
// can always be traced back to the input it came from. Null values are
// represented by nil.
package recordset
