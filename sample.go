package merklesync

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

var sampleContents = []string{
	"User data for Alice",
	"User data for Bob",
	"User data for Charlie",
	"User data for Diana",
}

// GenerateSample loads four identical records into both sides. Neither
// side changes if the key generator yields empty or colliding keys.
func (s *Store) GenerateSample() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sample := make(Collection, len(sampleContents))
	for i, content := range sampleContents {
		sample[i] = Record{Key: s.keys(uint64(i + 1)), Content: content}
	}
	if err := sample.Validate(); err != nil {
		return errors.Wrap(err, "generate sample")
	}

	s.nextID = uint64(len(sample) + 1)
	s.replaceLocked(&s.sides[Source], sample)
	s.replaceLocked(&s.sides[Replica], sample.Clone())
	s.logger.Info("generated sample data", zap.Int("records", len(sample)))
	return nil
}

// CreateDifferences changes the third source record and appends a new
// one, leaving the replica alone. The source is untouched on error.
func (s *Store) CreateDifferences() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := &s.sides[Source]
	if len(src.records) < 3 {
		return errors.WithHint(
			errors.Newf("source has %d records, need at least 3", len(src.records)),
			"generate sample data first")
	}
	key, err := s.newKeyLocked(src)
	if err != nil {
		return err
	}

	src.records[2].Content = "Updated data for Charlie"
	src.version++
	s.appendLocked(Source, src, Record{Key: key, Content: "New user data for Eve"})
	s.logger.Info("created differences in source", zap.Int("modified", 1), zap.Int("added", 1))
	return nil
}
