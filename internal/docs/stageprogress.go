package docs

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joescharf/shipgate/internal/models"
)

var (
	// milestoneNumRe pulls the numeric suffix out of a phase label
	// such as "M7" or "M12: Search".
	milestoneNumRe = regexp.MustCompile(`[Mm](\d+)`)

	// sectionHeadingRe matches per-milestone section headings
	// ("## M3 Offline Sync"). "###" headings do not match.
	sectionHeadingRe = regexp.MustCompile(`^##\s+[Mm](\d+)`)
)

// stageForIndex is the fallback milestone-number heuristic used when
// the overview table carries no explicit stage for a phase.
func stageForIndex(n int) models.Stage {
	switch {
	case n <= 5:
		return models.StageMVP
	case n <= 7:
		return models.StageV2
	default:
		return models.StageV3
	}
}

// ParseStageProgress accumulates checklist progress per release stage.
// The phase-to-stage mapping comes from the overview table's explicit
// stage column where present, falling back to the milestone-number
// heuristic. Checklists are counted per "## M<n>" subsection and summed
// into that milestone's stage. Stages are emitted in canonical order
// and a stage with no work items at all is omitted.
func ParseStageProgress(md string) []models.StageProgressInfo {
	lines := strings.Split(md, "\n")

	explicit := map[int]models.Stage{}
	for _, entry := range ParseMilestones(md) {
		if entry.Stage == "" {
			continue
		}
		if n, ok := milestoneNumber(entry.Phase); ok {
			explicit[n] = entry.Stage
		}
	}

	type tally struct{ completed, total int }
	byStage := map[models.Stage]*tally{}

	current := -1 // milestone number of the section being scanned
	flushInto := func(stage models.Stage, completed, total int) {
		t, ok := byStage[stage]
		if !ok {
			t = &tally{}
			byStage[stage] = t
		}
		t.completed += completed
		t.total += total
	}

	sectionStart := 0
	flushSection := func(end int) {
		if current < 0 {
			return
		}
		stage, ok := explicit[current]
		if !ok {
			stage = stageForIndex(current)
		}
		completed, total := countChecklist(lines[sectionStart:end])
		flushInto(stage, completed, total)
	}

	for i, line := range lines {
		m := sectionHeadingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		flushSection(i)
		current, _ = strconv.Atoi(m[1])
		sectionStart = i + 1
	}
	flushSection(len(lines))

	var out []models.StageProgressInfo
	for _, stage := range models.StageOrder {
		t, ok := byStage[stage]
		if !ok || t.total == 0 {
			continue
		}
		out = append(out, models.StageProgressInfo{
			Stage:     stage,
			Completed: t.completed,
			Total:     t.total,
			Percent:   percent(t.completed, t.total),
		})
	}
	return out
}

func milestoneNumber(phase string) (int, bool) {
	m := milestoneNumRe.FindStringSubmatch(phase)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
