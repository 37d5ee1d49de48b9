package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog/pkg/domain"
)

func pythonSchema() domain.Schema {
	return domain.Schema{
		Technologies: []domain.Technology{
			{Name: "Python", Group: domain.GroupLanguages, SubTechs: []string{}},
		},
	}
}

func TestFlowUseExistingRoundTrip(t *testing.T) {
	s := pythonSchema()
	flow := NewFlow(domain.TechnologyTarget())

	out := flow.Submit(s, "pythom", domain.GroupLanguages)
	require.Equal(t, ActionPending, out.Action)
	require.NotNil(t, out.Pending)
	assert.Equal(t, "Pythom", out.Pending.Input)
	assert.Equal(t, "Python", out.Pending.Match)
	assert.Equal(t, StatePending, flow.State())
	assert.False(t, out.Changed)

	out, err := flow.UseExisting(s)
	require.NoError(t, err)
	assert.Equal(t, ActionUseExisting, out.Action)
	assert.Equal(t, "Python", out.Value)
	assert.False(t, out.Changed)
	assert.Equal(t, s, out.Schema)
	assert.Equal(t, StateIdle, flow.State())
}

func TestFlowCreateAnywayRoundTrip(t *testing.T) {
	s := pythonSchema()
	flow := NewFlow(domain.TechnologyTarget())

	out := flow.Submit(s, "Pythom", domain.GroupLanguages)
	require.Equal(t, ActionPending, out.Action)

	out, err := flow.CreateAnyway(s)
	require.NoError(t, err)
	assert.Equal(t, ActionAdded, out.Action)
	assert.True(t, out.Changed)
	assert.Equal(t, "Pythom", out.Value)
	assert.Equal(t, []string{"Python", "Pythom"}, out.Schema.TechnologyNames())
	assert.Equal(t, domain.GroupLanguages, out.Schema.Technologies[1].Group)
	assert.Equal(t, StateIdle, flow.State())
	assert.Len(t, s.Technologies, 1, "input schema untouched")
}

func TestFlowDismiss(t *testing.T) {
	s := domain.Schema{Categories: []string{"Feature"}}
	flow := NewFlow(domain.CategoryTarget())

	out := flow.Submit(s, "features", "")
	require.Equal(t, ActionPending, out.Action)

	out, err := flow.Dismiss(s)
	require.NoError(t, err)
	assert.Equal(t, ActionDismissed, out.Action)
	assert.Equal(t, []string{"Feature"}, out.Schema.Categories)
	_, pending := flow.Pending()
	assert.False(t, pending)
}

func TestFlowSilentNoOps(t *testing.T) {
	s := domain.Schema{Projects: []string{"Worklog"}}
	flow := NewFlow(domain.ProjectTarget())

	out := flow.Submit(s, "   ", "")
	assert.Equal(t, ActionRejected, out.Action)
	assert.Equal(t, ReasonEmpty, out.Reason)
	assert.Equal(t, StateIdle, flow.State())

	out = flow.Submit(s, "WORKLOG", "")
	assert.Equal(t, ActionRejected, out.Action)
	assert.Equal(t, ReasonDuplicate, out.Reason)
	assert.Nil(t, out.Pending)
	assert.Equal(t, StateIdle, flow.State())
}

func TestFlowAddsNovelCandidate(t *testing.T) {
	s := domain.Schema{Projects: []string{"Worklog"}}
	flow := NewFlow(domain.ProjectTarget())

	out := flow.Submit(s, "billing", "")
	assert.Equal(t, ActionAdded, out.Action)
	assert.Equal(t, "Billing", out.Value)
	assert.Equal(t, []string{"Worklog", "Billing"}, out.Schema.Projects)
	assert.Equal(t, StateIdle, flow.State())
}

func TestFlowSubTechContext(t *testing.T) {
	s := domain.Schema{Technologies: []domain.Technology{
		{Name: "React", Group: domain.GroupFrontend, SubTechs: []string{"Hooks"}},
	}}
	flow := NewFlow(domain.SubTechTarget("React"))

	out := flow.Submit(s, "hook", "")
	require.Equal(t, ActionPending, out.Action)
	assert.Equal(t, domain.SubTechTarget("React"), out.Pending.Target)

	out = flow.Submit(s, "Router", "")
	assert.Equal(t, ActionAdded, out.Action, "new submit replaces the open decision")
	assert.Equal(t, []string{"Hooks", "Router"}, out.Schema.Technologies[0].SubTechs)

	missing := NewFlow(domain.SubTechTarget("Vue"))
	out = missing.Submit(s, "Pinia", "")
	assert.Equal(t, ReasonUnknownTechnology, out.Reason)
}

func TestFlowDecisionsRequirePending(t *testing.T) {
	flow := NewFlow(domain.CategoryTarget())
	s := domain.Schema{}

	_, err := flow.UseExisting(s)
	assert.ErrorIs(t, err, ErrNoPending)
	_, err = flow.CreateAnyway(s)
	assert.ErrorIs(t, err, ErrNoPending)
	_, err = flow.Dismiss(s)
	assert.ErrorIs(t, err, ErrNoPending)
}

func TestFlowsAreIndependent(t *testing.T) {
	s := domain.Schema{
		Categories: []string{"Feature"},
		Technologies: []domain.Technology{
			{Name: "Python", Group: domain.GroupLanguages, SubTechs: []string{}},
		},
	}
	categories := NewFlow(domain.CategoryTarget())
	techs := NewFlow(domain.TechnologyTarget())

	require.Equal(t, ActionPending, categories.Submit(s, "Featur", "").Action)
	require.Equal(t, ActionPending, techs.Submit(s, "Pyhton", domain.GroupLanguages).Action)

	out, err := categories.Dismiss(s)
	require.NoError(t, err)
	assert.Equal(t, ActionDismissed, out.Action)

	p, ok := techs.Pending()
	require.True(t, ok)
	assert.Equal(t, "Python", p.Match)
}

func TestFlowTechnologyRequiresGroup(t *testing.T) {
	flow := NewFlow(domain.TechnologyTarget())
	out := flow.Submit(domain.Schema{}, "Rust", "")
	assert.Equal(t, ActionRejected, out.Action)
	assert.Equal(t, ReasonInvalidGroup, out.Reason)
}

func TestFlowCreateAnywayRefusesDuplicateAddedMeanwhile(t *testing.T) {
	flow := NewFlow(domain.TechnologyTarget())
	out := flow.Submit(pythonSchema(), "pythom", domain.GroupLanguages)
	require.Equal(t, ActionPending, out.Action)

	changed, ok := Add(pythonSchema(), domain.TechnologyTarget(), "PYTHOM", domain.GroupLanguages)
	require.True(t, ok)

	out, err := flow.CreateAnyway(changed)
	require.NoError(t, err)
	assert.Equal(t, ActionRejected, out.Action)
	assert.Equal(t, ReasonDuplicate, out.Reason)
	assert.False(t, out.Changed)
	assert.Len(t, out.Schema.Technologies, 2)
	assert.Equal(t, StateIdle, flow.State())
}
