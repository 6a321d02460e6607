package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
)

// ErrNoRuns is returned by Last when the journal is empty.
var ErrNoRuns = errors.New("no bootstrap runs recorded")

// runKeyPrefix namespaces journal entries inside the badger keyspace.
// Keys embed the zero-padded start timestamp so lexicographic order is
// chronological order.
const runKeyPrefix = "run/"

func runKey(res *Result) []byte {
	return fmt.Appendf(nil, "%s%020d/%s", runKeyPrefix, res.StartedAt.UnixNano(), res.RunID)
}

// Journal is a badger-backed history of bootstrap runs on this
// instance.
//
// Every run appends its Result, successful or not, and the CLI reads
// the history back for operators. Bootstrap correctness never depends
// on the journal; it is local observability only.
type Journal struct {
	db *badgerdb.DB
}

var _ RunRecorder = (*Journal)(nil)

// OpenJournal opens the journal at path, creating it if needed.
func OpenJournal(path string) (*Journal, error) {
	opts := badgerdb.DefaultOptions(path).WithLogger(nil)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open bootstrap journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// Append records a run.
func (j *Journal) Append(ctx context.Context, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode bootstrap result: %w", err)
	}

	err = j.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(runKey(res), data)
	})
	if err != nil {
		return fmt.Errorf("failed to append bootstrap result: %w", err)
	}

	return nil
}

// List returns recorded runs, newest first. A limit of zero or less
// returns all of them.
func (j *Journal) List(ctx context.Context, limit int) ([]*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(runKeyPrefix)
	var results []*Result

	err := j.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Reverse = true

		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration needs a seek past the end of the prefix
		// range; Rewind would land before the first run key.
		seekTo := append(append([]byte{}, prefix...), 0xFF)

		for it.Seek(seekTo); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			err := it.Item().Value(func(val []byte) error {
				var r Result
				if err := json.Unmarshal(val, &r); err != nil {
					return fmt.Errorf("failed to decode bootstrap result: %w", err)
				}
				results = append(results, &r)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list bootstrap runs: %w", err)
	}

	return results, nil
}

// Last returns the most recent run, or ErrNoRuns when the journal is
// empty.
func (j *Journal) Last(ctx context.Context) (*Result, error) {
	runs, err := j.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}
	return runs[0], nil
}

// Close releases the underlying badger database.
func (j *Journal) Close() error {
	return j.db.Close()
}
