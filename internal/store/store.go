package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"topicsweep/internal/fileutil"
	"topicsweep/internal/services"
)

const (
	metadataFile    = "metadata.json"
	topicsSuffix    = "topics"
	lockFile        = ".lock"
	lockRetryDelay  = 100 * time.Millisecond
	ModelFile       = "lda.model"
	CoherenceFile   = "coherence.model"
	SequentialModel = "ldaseq.model"
)

// Store is a filesystem-backed experiment store rooted at the model directory.
type Store struct {
	root string
}

// New returns a store rooted at root. The directory is created lazily.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the model directory.
func (s *Store) Root() string { return s.root }

// ValidateName rejects experiment names that cannot be used as a single path
// segment.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return services.Wrap(services.ErrConfiguration, "store", "validate", "experiment name is empty", nil)
	case trimmed != name, name == ".", name == "..", strings.ContainsAny(name, `/\`):
		return services.Wrap(services.ErrConfiguration, "store", "validate",
			fmt.Sprintf("experiment name %q must be a single path segment", name), nil)
	}
	return nil
}

// ExperimentDir returns <root>/<experiment>.
func (s *Store) ExperimentDir(experiment string) string {
	return filepath.Join(s.root, experiment)
}

// TopicDir returns <root>/<experiment>/<K>topics.
func (s *Store) TopicDir(experiment string, topics int) string {
	return filepath.Join(s.root, experiment, strconv.Itoa(topics)+topicsSuffix)
}

// TrialDir returns the artifact directory of one independent trial.
func (s *Store) TrialDir(experiment string, topics, trial int) string {
	return filepath.Join(s.TopicDir(experiment, topics), fmt.Sprintf("model_%d", trial))
}

// SliceCoherencePath returns the coherence artifact of one time slice.
func (s *Store) SliceCoherencePath(experiment string, topics, slice int) string {
	return filepath.Join(s.TopicDir(experiment, topics), fmt.Sprintf("coherence_%d.model", slice))
}

// SequentialModelPath returns the sequential model artifact for a topic count.
func (s *Store) SequentialModelPath(experiment string, topics int) string {
	return filepath.Join(s.TopicDir(experiment, topics), SequentialModel)
}

// Put atomically replaces the record for (experiment, topics).
func (s *Store) Put(ctx context.Context, experiment string, topics int, rec Record) error {
	if err := ValidateName(experiment); err != nil {
		return err
	}
	return s.withLock(ctx, experiment, func() error {
		return fileutil.WriteJSONAtomic(filepath.Join(s.TopicDir(experiment, topics), metadataFile), rec)
	})
}

// Get reads the record for (experiment, topics). A missing record yields an
// error wrapping services.ErrNotFound.
func (s *Store) Get(experiment string, topics int) (Record, error) {
	if err := ValidateName(experiment); err != nil {
		return Record{}, err
	}
	return s.read(filepath.Join(s.TopicDir(experiment, topics), metadataFile),
		fmt.Sprintf("%s/%d%s", experiment, topics, topicsSuffix))
}

// PutBaseline stores a single flat record at <root>/<experiment>/metadata.json.
func (s *Store) PutBaseline(ctx context.Context, experiment string, rec Record) error {
	if err := ValidateName(experiment); err != nil {
		return err
	}
	return s.withLock(ctx, experiment, func() error {
		return fileutil.WriteJSONAtomic(filepath.Join(s.ExperimentDir(experiment), metadataFile), rec)
	})
}

// GetBaseline reads a record written by PutBaseline.
func (s *Store) GetBaseline(experiment string) (Record, error) {
	if err := ValidateName(experiment); err != nil {
		return Record{}, err
	}
	return s.read(filepath.Join(s.ExperimentDir(experiment), metadataFile), experiment+" baseline")
}

func (s *Store) read(path, what string) (Record, error) {
	var rec Record
	if err := fileutil.ReadJSON(path, &rec); err != nil {
		if fileutil.IsNotExist(err) {
			return Record{}, services.Wrap(services.ErrNotFound, "store", "get", what, nil)
		}
		return Record{}, fmt.Errorf("read %s: %w", what, err)
	}
	return rec, nil
}

// TopicCounts lists the topic counts that have a persisted record, ascending.
func (s *Store) TopicCounts(experiment string) ([]int, error) {
	if err := ValidateName(experiment); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.ExperimentDir(experiment))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "store", "list", experiment, nil)
		}
		return nil, fmt.Errorf("list %s: %w", experiment, err)
	}
	var counts []int
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), topicsSuffix) {
			continue
		}
		k, err := strconv.Atoi(strings.TrimSuffix(entry.Name(), topicsSuffix))
		if err != nil {
			continue
		}
		if fileutil.FileExists(filepath.Join(s.TopicDir(experiment, k), metadataFile)) {
			counts = append(counts, k)
		}
	}
	sort.Ints(counts)
	return counts, nil
}

// Experiments lists experiment directories under the root.
func (s *Store) Experiments() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) withLock(ctx context.Context, experiment string, fn func() error) error {
	dir := s.ExperimentDir(experiment)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create experiment directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, lockFile))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("acquire store lock: %s is busy", experiment)
	}
	defer func() {
		_ = lock.Unlock()
	}()
	return fn()
}
