package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"topicsweep/internal/experiment"
	"topicsweep/internal/fileutil"
	"topicsweep/internal/selector"
	"topicsweep/internal/services"
	"topicsweep/internal/store"
	"topicsweep/internal/timebucket"
)

// DocumentIDs returns the dataset's document ids in the order the model of
// exp was trained on. Sequential models see the corpus grouped by time
// window, so the same bucketing is replayed and checked here.
func DocumentIDs(exp *experiment.Config, ds *experiment.Dataset) ([]string, error) {
	ids := make([]string, len(ds.Documents))
	for i, doc := range ds.Documents {
		ids[i] = doc.ID
	}
	if !exp.Sequential() {
		return ids, nil
	}
	buckets, err := timebucket.PartitionDocuments(ds.Documents, exp.BucketSpec(ds.Range, 0))
	if err != nil {
		return nil, err
	}
	if err := buckets.Verify(len(ds.Documents)); err != nil {
		return nil, err
	}
	ordered := make([]string, 0, len(ids))
	for _, i := range buckets.Order() {
		ordered = append(ordered, ids[i])
	}
	return ordered, nil
}

// WriteTopicDists writes one CSV row per document: its id followed by its
// topic distribution. The model must have been trained on exactly len(ids)
// documents.
func WriteTopicDists(w io.Writer, idColumn string, ids []string, dists [][]float64) error {
	if len(dists) != len(ids) {
		return services.CountMismatch("documents in model", len(ids), len(dists))
	}
	if idColumn == "" {
		idColumn = "id"
	}
	topics := 0
	if len(dists) > 0 {
		topics = len(dists[0])
	}
	cw := csv.NewWriter(w)
	header := make([]string, 0, topics+1)
	header = append(header, idColumn)
	for k := 0; k < topics; k++ {
		header = append(header, fmt.Sprintf("topic_%d", k))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, topics+1)
	for i, dist := range dists {
		if len(dist) != topics {
			return services.CountMismatch(fmt.Sprintf("topic weights of document %s", ids[i]), topics, len(dist))
		}
		row[0] = ids[i]
		for k, v := range dist {
			row[k+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ModelPath returns the artifact of the model that topic distributions are
// read from: the selected trial's model for independent sweeps, the single
// time-sliced model otherwise.
func (r *Reader) ModelPath(exp *experiment.Config, topics int, trial *int) (string, error) {
	rec, err := r.store.Get(exp.Name, topics)
	if err != nil {
		return "", err
	}
	if rec.Mode() == store.ModeSequential {
		return r.store.SequentialModelPath(exp.Name, topics), nil
	}
	t, err := selector.Select(rec, trial)
	if err != nil {
		return "", err
	}
	return filepath.Join(t.Path, store.ModelFile), nil
}

// ExportModel copies the model artifact of (exp, topics, trial) to dst and
// returns the source path. The copy is verified and removed on mismatch.
func (r *Reader) ExportModel(exp *experiment.Config, topics int, trial *int, dst string) (string, error) {
	src, err := r.ModelPath(exp, topics, trial)
	if err != nil {
		return "", err
	}
	if !fileutil.FileExists(src) {
		return "", services.Wrap(services.ErrNotFound, "results", "export model",
			fmt.Sprintf("%s has no saved model", src), nil)
	}
	if err := fileutil.CopyFileVerified(src, dst); err != nil {
		return "", fmt.Errorf("export model to %s: %w", dst, err)
	}
	return src, nil
}
