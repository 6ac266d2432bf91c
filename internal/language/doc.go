// Package language normalizes the language names and ISO 639 codes found in
// experiment files to the names the Snowball stemmer accepts.
package language
