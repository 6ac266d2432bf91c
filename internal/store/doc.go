// Package store persists per-topic-count experiment records on the
// filesystem:
//
//	<model_dir>/<experiment>/<K>topics/metadata.json
//	<model_dir>/<experiment>/<K>topics/model_<i>/{lda.model,coherence.model}
//	<model_dir>/<experiment>/<K>topics/{ldaseq.model,coherence_<i>.model}
//
// Records are written whole through a temp file and rename, so readers never
// observe a partial metadata.json. Writers for the same experiment serialise
// through an advisory lock file.
package store
