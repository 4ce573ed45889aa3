// Package textutil fits frame labels into bars: it trims text in the middle
// with an ellipsis, remaps highlight ranges onto the trimmed text and caches
// text measurements.
package textutil
