package checkout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
)

// Pending is the persisted reconciliation log of one partially retired
// checkout: the order that was recorded and the cart line IDs whose
// retirement deletes failed.
type Pending struct {
	OrderID   string    `json:"orderId"`
	Reference string    `json:"reference"`
	Leftover  []string  `json:"leftover"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Journal stores the reconciliation log for the next session. The store
// offers no transactions, so a checkout that records its order but fails
// some retirement deletes leaves real leftover lines; the journal is what
// lets a later run retry exactly those deletes instead of guessing.
type Journal struct {
	path string
}

// NewJournal returns a Journal persisted at path.
func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Record persists the reconciliation log of res. A clean result clears the
// journal instead.
func (j *Journal) Record(res *Result) error {
	if res.Clean() {
		return j.Clear()
	}

	p := Pending{
		OrderID:    res.Order.ID,
		Reference:  res.Order.Reference,
		Leftover:   res.Leftover(),
		RecordedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "marshal journal")
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return errors.Wrap(err, "create journal dir")
	}

	// Write-then-rename keeps a crashed write from corrupting the journal.
	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write journal")
	}
	if err := os.Rename(tmp, j.path); err != nil {
		return errors.Wrap(err, "replace journal")
	}
	return nil
}

// Load returns the pending reconciliation log, or nil when there is none.
func (j *Journal) Load() (*Pending, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read journal")
	}

	var p Pending
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "parse journal")
	}
	if len(p.Leftover) == 0 {
		return nil, nil
	}
	return &p, nil
}

// Clear removes the journal file.
func (j *Journal) Clear() error {
	if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove journal")
	}
	return nil
}
