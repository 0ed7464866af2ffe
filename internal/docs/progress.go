package docs

import (
	"math"
	"regexp"
	"strings"

	"github.com/joescharf/shipgate/internal/models"
)

var (
	checkedRe   = regexp.MustCompile(`(?i)^\s*-\s*\[x\]`)
	uncheckedRe = regexp.MustCompile(`^\s*-\s*\[ \]`)
)

// ParseProgress computes overall completion for a planning document.
// Checklist markers anywhere in the document win; without any, the
// milestone statuses are counted instead; without either signal the
// result is all zeros.
func ParseProgress(md string, milestones []models.MilestoneEntry) models.ProgressInfo {
	completed, total := countChecklist(strings.Split(md, "\n"))
	if total > 0 {
		return progressOf(completed, total)
	}

	for _, m := range milestones {
		total++
		if m.Status == models.StatusComplete {
			completed++
		}
	}
	if total > 0 {
		return progressOf(completed, total)
	}
	return models.ProgressInfo{}
}

func countChecklist(lines []string) (completed, total int) {
	for _, line := range lines {
		switch {
		case checkedRe.MatchString(line):
			completed++
			total++
		case uncheckedRe.MatchString(line):
			total++
		}
	}
	return completed, total
}

func progressOf(completed, total int) models.ProgressInfo {
	return models.ProgressInfo{
		Completed: completed,
		Total:     total,
		Percent:   percent(completed, total),
	}
}

func percent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
