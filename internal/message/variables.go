package message

import (
	"strconv"

	"github.com/fakeyudi/autopilot/internal/classifier"
)

// System variable names. They always win over user variables of the same name.
const (
	VarInsertions    = "INSERTIONS"
	VarDeletions     = "DELETIONS"
	VarLinesModified = "LINES_MODIFIED"
	VarBranch        = "BRANCH"
	VarStatus        = "STATUS"
	VarFileNameShort = "FILE_NAME_SHORT"
	VarFileNameFull  = "FILE_NAME_FULL"
	VarFileOldName   = "FILE_OLD_NAME"
)

// SystemKeys lists the system variables in a fixed order.
var SystemKeys = []string{
	VarInsertions,
	VarDeletions,
	VarLinesModified,
	VarBranch,
	VarStatus,
	VarFileNameShort,
	VarFileNameFull,
	VarFileOldName,
}

// Variables maps a placeholder name to its value.
type Variables map[string]string

// ResolveVariables builds the variables for one change. System keys come
// from the inputs, each is then normalized once through Render, and user
// variables fill whatever keys are still free.
func ResolveVariables(
	branch, shortName, fullPath string,
	rec classifier.FileChangeRecord,
	user map[string]string,
) Variables {
	oldName := shortName
	if rec.Operation == classifier.Renamed && rec.OldPath != "" {
		oldName = rec.OldPath
	}

	vars := Variables{
		VarInsertions:    strconv.Itoa(rec.LinesAdded),
		VarDeletions:     strconv.Itoa(rec.LinesDeleted),
		VarLinesModified: strconv.Itoa(rec.LinesModified),
		VarBranch:        branch,
		VarStatus:        rec.Status.String(),
		VarFileNameShort: shortName,
		VarFileNameFull:  fullPath,
		VarFileOldName:   oldName,
	}

	for _, key := range SystemKeys {
		vars[key] = Render(openDelim+key+closeDelim, vars)
	}

	for key, value := range user {
		if _, taken := vars[key]; !taken {
			vars[key] = value
		}
	}
	return vars
}
