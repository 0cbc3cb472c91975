package classifier

import "github.com/fakeyudi/autopilot/internal/vcs"

// Operation is the semantic kind of a change.
type Operation int

const (
	New Operation = iota
	Modified
	Deleted
	Renamed
	TypeChanged
	Conflicted
	Ignored
	Unknown
)

var operationNames = [...]string{
	New:         "new",
	Modified:    "modified",
	Deleted:     "deleted",
	Renamed:     "renamed",
	TypeChanged: "typechange",
	Conflicted:  "conflicted",
	Ignored:     "ignored",
	Unknown:     "unknown",
}

func (o Operation) String() string {
	if o < 0 || int(o) >= len(operationNames) {
		return operationNames[Unknown]
	}
	return operationNames[o]
}

// OperationOf maps a raw status to its operation.
func OperationOf(s vcs.Status) Operation {
	switch s {
	case vcs.StatusWTNew, vcs.StatusIndexNew:
		return New
	case vcs.StatusWTModified, vcs.StatusIndexModified:
		return Modified
	case vcs.StatusWTDeleted, vcs.StatusIndexDeleted:
		return Deleted
	case vcs.StatusWTRenamed, vcs.StatusIndexRenamed:
		return Renamed
	case vcs.StatusWTTypeChange, vcs.StatusIndexTypeChange:
		return TypeChanged
	case vcs.StatusConflicted:
		return Conflicted
	case vcs.StatusIgnored:
		return Ignored
	default:
		return Unknown
	}
}

// FileChangeRecord describes one detected change. Records are values and are
// never modified once built.
type FileChangeRecord struct {
	LinesAdded    int
	LinesDeleted  int
	LinesModified int // always LinesAdded + LinesDeleted
	Operation     Operation
	Status        vcs.Status
	OldPath       string // set only for Renamed
}

// NewRecord builds a record for status with the given line counts.
func NewRecord(added, deleted int, status vcs.Status) FileChangeRecord {
	return FileChangeRecord{
		LinesAdded:    added,
		LinesDeleted:  deleted,
		LinesModified: added + deleted,
		Operation:     OperationOf(status),
		Status:        status,
	}
}

// sameStats compares the three line counters.
func (r FileChangeRecord) sameStats(o FileChangeRecord) bool {
	return r.LinesAdded == o.LinesAdded &&
		r.LinesDeleted == o.LinesDeleted &&
		r.LinesModified == o.LinesModified
}

// ChangeSet maps a repository-relative path to the records found for it.
type ChangeSet map[string][]FileChangeRecord

// Record returns the first record for path.
func (cs ChangeSet) Record(path string) (FileChangeRecord, bool) {
	recs, ok := cs[path]
	if !ok || len(recs) == 0 {
		return FileChangeRecord{}, false
	}
	return recs[0], true
}

// Sole returns the only entry of a single-entry set.
func (cs ChangeSet) Sole() (string, FileChangeRecord, bool) {
	if len(cs) != 1 {
		return "", FileChangeRecord{}, false
	}
	for path := range cs {
		rec, ok := cs.Record(path)
		return path, rec, ok
	}
	return "", FileChangeRecord{}, false
}
