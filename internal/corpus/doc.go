// Package corpus reads raw experiment data (JSON, JSON Lines, or CSV), applies
// attribute and time-range filters, and turns the surviving records into
// preprocessed Documents.
//
// Documents are immutable once Build returns them; downstream packages
// (timebucket, trial, results) only read them.
package corpus
