// Package preflight provides readiness checks for the filesystem paths and
// the run index that topicsweep depends on.
//
// The CLI "topicsweep check" command runs RunAll and, for each experiment file
// it is given, CheckDataFile. A sweep can run for hours, so these checks
// surface permission problems and unreadable data before any training starts.
package preflight
