// Package textprep turns raw document text into the token lists topic models
// train on.
//
// The pipeline mirrors the experiment options: substring replacements before
// tokenization, word removal before stemming, lowercasing with accent folding,
// stop-word removal, Snowball stemming, then replacement and removal of
// stemmed tokens. A Pipeline is immutable and safe for concurrent use.
package textprep
