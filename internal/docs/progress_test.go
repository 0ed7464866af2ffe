package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joescharf/shipgate/internal/models"
)

func TestParseProgress_Checklist(t *testing.T) {
	doc := `## M1
- [x] scaffold repo
- [X] wire CI
- [ ] write docs
`
	p := ParseProgress(doc, nil)
	assert.Equal(t, 2, p.Completed)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 67, p.Percent)
}

func TestParseProgress_ChecklistWinsOverMilestones(t *testing.T) {
	doc := `- [x] only item`
	milestones := []models.MilestoneEntry{
		{Phase: "M1", Status: models.StatusPlanned},
		{Phase: "M2", Status: models.StatusPlanned},
	}
	p := ParseProgress(doc, milestones)
	assert.Equal(t, models.ProgressInfo{Completed: 1, Total: 1, Percent: 100}, p)
}

func TestParseProgress_MilestoneFallback(t *testing.T) {
	milestones := []models.MilestoneEntry{
		{Phase: "M1", Status: models.StatusComplete},
		{Phase: "M2", Status: models.StatusInProgress},
		{Phase: "M3", Status: models.StatusPlanned},
		{Phase: "M4", Status: models.StatusComplete},
	}
	p := ParseProgress("no checklists here", milestones)
	assert.Equal(t, 2, p.Completed)
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, 50, p.Percent)
}

func TestParseProgress_NoSignal(t *testing.T) {
	assert.Equal(t, models.ProgressInfo{}, ParseProgress("", nil))
	assert.Equal(t, models.ProgressInfo{}, ParseProgress("plain prose", nil))
}
