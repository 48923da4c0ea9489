// Package fuzzy finds the closest candidate string for a query within a pool
// of candidates.
//
// Scores are normalized to [0,1]. The default Ratio scorer is the
// Ratcliff/Obershelp sequence ratio; Jaro-Winkler, normalized Levenshtein and
// token cosine scorers are available by name for columns where those behave
// better. Lookups return only the single best candidate at or above a cutoff,
// and can consume the winner so that later lookups against the same Pool
// cannot claim it again. Consumption makes a series of lookups greedy and
// dependent on the order in which queries are issued.
package fuzzy
