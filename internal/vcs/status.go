package vcs

import "github.com/go-git/go-git/v5"

// Status is the closed set of per-path states the pipeline understands.
// go-git reports a staging code and a worktree code per path; fromFileStatus
// folds the pair into one of these labels.
type Status int

const (
	StatusCurrent Status = iota
	StatusWTNew
	StatusWTModified
	StatusWTDeleted
	StatusWTRenamed
	StatusWTTypeChange
	StatusIndexNew
	StatusIndexModified
	StatusIndexDeleted
	StatusIndexRenamed
	StatusIndexTypeChange
	StatusConflicted
	StatusIgnored
	StatusUnknown
)

var statusNames = map[Status]string{
	StatusCurrent:         "CURRENT",
	StatusWTNew:           "WT_NEW",
	StatusWTModified:      "WT_MODIFIED",
	StatusWTDeleted:       "WT_DELETED",
	StatusWTRenamed:       "WT_RENAMED",
	StatusWTTypeChange:    "WT_TYPECHANGE",
	StatusIndexNew:        "INDEX_NEW",
	StatusIndexModified:   "INDEX_MODIFIED",
	StatusIndexDeleted:    "INDEX_DELETED",
	StatusIndexRenamed:    "INDEX_RENAMED",
	StatusIndexTypeChange: "INDEX_TYPECHANGE",
	StatusConflicted:      "CONFLICTED",
	StatusIgnored:         "IGNORED",
	StatusUnknown:         "UNKNOWN",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[StatusUnknown]
}

// IsClean reports whether s carries no change worth classifying.
func (s Status) IsClean() bool {
	return s == StatusCurrent || s == StatusIgnored
}

// fromFileStatus maps a go-git status pair to a Status. The worktree side
// wins over the staging side; combinations with no label become StatusUnknown.
func fromFileStatus(fs *git.FileStatus) Status {
	if fs == nil {
		return StatusCurrent
	}
	if fs.Staging == git.UpdatedButUnmerged || fs.Worktree == git.UpdatedButUnmerged {
		return StatusConflicted
	}

	switch fs.Worktree {
	case git.Untracked:
		return StatusWTNew
	case git.Modified:
		return StatusWTModified
	case git.Deleted:
		return StatusWTDeleted
	case git.Renamed:
		return StatusWTRenamed
	case git.Unmodified:
	default:
		return StatusUnknown
	}

	switch fs.Staging {
	case git.Added:
		return StatusIndexNew
	case git.Modified:
		return StatusIndexModified
	case git.Deleted:
		return StatusIndexDeleted
	case git.Renamed:
		return StatusIndexRenamed
	case git.Unmodified:
		return StatusCurrent
	default:
		return StatusUnknown
	}
}
