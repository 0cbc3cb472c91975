package vcs

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// CountLines diffs before and after line by line and counts inserted and
// deleted lines. Each rune produced by DiffLinesToRunes stands for one line.
func CountLines(before, after string) DiffStat {
	if before == after {
		return DiffStat{}
	}

	dmp := diffmatchpatch.New()
	src, dst, _ := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffMainRunes(src, dst, false)

	var stat DiffStat
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			stat.Insertions += utf8.RuneCountInString(d.Text)
		case diffmatchpatch.DiffDelete:
			stat.Deletions += utf8.RuneCountInString(d.Text)
		}
	}
	return stat
}
