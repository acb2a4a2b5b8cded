// Package infobox implements the parser for the source wiki's comic-issue
// infobox dialect. It is not a general wiki-markup parser: it targets
// exactly the |key=value template fields and Appearing sub-blocks that one
// site's authors actually write, misspellings included.
//
// The line pass classifies each field key into a finite kind set, routes
// the value to the story or cover slot named by the key's positional
// index, and finishes by compacting sparse cover slots into numbered
// variants and sparse story positions into a dense 1..N sequence.
package infobox
