// Package textutil provides the text clean-up and token helpers used ahead of
// approximate matching.
//
// The primary use cases are:
//   - Removing punctuation and noise words from string columns before they are
//     compared (Normalizer, NormalizeColumn)
//   - Token vectors (cosine, Jaccard) and word-order-free keys behind the
//     token_cosine and token_sort scorers
//   - Sanitizing identifiers and file names derived from user input
//
// Nothing in this package is applied automatically by the linkage engine;
// callers normalize the columns they intend to compare approximately.
package textutil
