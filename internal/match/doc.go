// Package match ranks known names against a name that failed to resolve, so
// errors can say "did you mean".
//
// Key functions:
//   - Levenshtein: edit distance between two strings, counted in runes
//   - NormalizeIdent: folds case and separators so RED_ALERT matches redAlert
//   - Rank: scores every known name against a query
//   - Suggest: the single best name, if it is close enough
package match
