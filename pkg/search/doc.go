// Package search scores flame chart frames against user queries.
//
// Three engines implement [Engine]:
//
//   - [NewNameEngine]: fuzzy match on the frame's display name. Image label
//     markup is stripped before matching.
//   - [NewFileEngine]: fuzzy match on the frame's source file. Match ranges
//     are not reported since labels show names, not paths.
//   - [NewKeyEngine]: exact frame key match, optionally constrained to a
//     chain of ancestor keys.
//
// Engines cache results per frame (or per node for key matching) in a
// bounded LRU, so a renderer can ask again on every frame without rescoring.
package search
