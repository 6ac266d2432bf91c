// Package main hosts the topicsweep CLI entrypoint and command graph.
//
// The Cobra command tree loads the application config and an experiment
// definition, then hands off to the internal packages: sweep runs the
// topic-count sweep, while compare, best, topic-dists and runs read back what
// earlier sweeps persisted. Commands stay thin; add behaviour to the internal
// packages first and surface it here.
package main
