package grouping_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/ruledoc/pkg/catalog"
	"github.com/dkoosis/ruledoc/pkg/grouping"
)

func names(rules []*catalog.Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Name)
	}
	return out
}

func categoryIDs(groups []grouping.Group) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Category.ID)
	}
	return out
}

func TestBuild_SortsRulesByName_When_InsertedOutOfOrder(t *testing.T) {
	t.Parallel()

	a := &catalog.Category{ID: "capella.category.a", Path: "capella.category.a"}
	b := &catalog.Category{ID: "capella.category.b", Path: "capella.category.b"}
	zeta := &catalog.Rule{Name: "Zeta", Categories: []*catalog.Category{a}}
	alpha := &catalog.Rule{Name: "Alpha", Categories: []*catalog.Category{a}}
	lower := &catalog.Rule{Name: "alpha", Categories: []*catalog.Category{a}}
	mid := &catalog.Rule{Name: "Mid", Categories: []*catalog.Category{b}}

	groups := grouping.Build([]catalog.Assignment{
		{Category: a, Rule: zeta},
		{Category: b, Rule: mid},
		{Category: a, Rule: lower},
		{Category: a, Rule: alpha},
	}, grouping.OrderByName)

	require.Equal(t, 2, groups.Len())

	rules, ok := groups.Get(a)
	require.True(t, ok)
	if diff := cmp.Diff([]string{"Alpha", "Zeta", "alpha"}, names(rules)); diff != "" {
		t.Fatalf("group a order mismatch (-want +got):\n%s", diff)
	}

	rules, ok = groups.Get(b)
	require.True(t, ok)
	assert.Equal(t, []string{"Mid"}, names(rules))

	_, ok = groups.Get(&catalog.Category{ID: "missing"})
	assert.False(t, ok)
}

func TestAdd_IsIdempotent_When_SameRuleAddedTwice(t *testing.T) {
	t.Parallel()

	a := &catalog.Category{ID: "a", Path: "capella.category.a"}
	r := &catalog.Rule{Name: "R", Categories: []*catalog.Category{a}}

	groups := grouping.New(grouping.OrderByName)
	groups.Add(catalog.Assignment{Category: a, Rule: r})
	groups.Add(catalog.Assignment{Category: a, Rule: r})

	rules, _ := groups.Get(a)
	assert.Equal(t, []string{"R"}, names(rules))
}

func TestAll_IteratesInFixedOrder_When_InsertionOrderDiffers(t *testing.T) {
	t.Parallel()

	cats := []*catalog.Category{
		{ID: "c3", Path: "capella.category.z"},
		{ID: "c1", Path: "capella.category.y"},
		{ID: "c2", Path: "capella.category.x"},
	}
	var forward, backward []catalog.Assignment
	for i, c := range cats {
		rule := &catalog.Rule{Name: c.ID + "-rule", Categories: []*catalog.Category{c}}
		forward = append(forward, catalog.Assignment{Category: c, Rule: rule})
		backward = append([]catalog.Assignment{{Category: cats[i], Rule: rule}}, backward...)
	}

	first := categoryIDs(grouping.Build(forward, grouping.OrderByName).All())
	second := categoryIDs(grouping.Build(backward, grouping.OrderByName).All())

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("iteration order depends on insertion order (-first +second):\n%s", diff)
	}
	assert.Len(t, first, 3)
}

func TestAll_RuleNamesStrictlyAscending_When_ManyRulesAdded(t *testing.T) {
	t.Parallel()

	a := &catalog.Category{ID: "a", Path: "capella.category.a"}
	input := []string{"m", "b", "x", "a", "q", "b", "c", "m"}
	var assignments []catalog.Assignment
	seen := map[string]*catalog.Rule{}
	for _, n := range input {
		r, ok := seen[n]
		if !ok {
			r = &catalog.Rule{Name: n, Categories: []*catalog.Category{a}}
			seen[n] = r
		}
		assignments = append(assignments, catalog.Assignment{Category: a, Rule: r})
	}

	groups := grouping.Build(assignments, grouping.OrderByName).All()
	require.Len(t, groups, 1)
	got := names(groups[0].Rules)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1], got[i])
	}
	assert.Len(t, got, len(seen))
}

func TestBuild_SortsBySeverityThenName_When_SeverityOrderSelected(t *testing.T) {
	t.Parallel()

	a := &catalog.Category{ID: "a", Path: "capella.category.a"}
	assignments := []catalog.Assignment{
		{Category: a, Rule: &catalog.Rule{Name: "B", Severity: catalog.SeverityError}},
		{Category: a, Rule: &catalog.Rule{Name: "C", Severity: catalog.SeverityInfo}},
		{Category: a, Rule: &catalog.Rule{Name: "A", Severity: catalog.SeverityError}},
		{Category: a, Rule: &catalog.Rule{Name: "D", Severity: catalog.SeverityWarning}},
	}

	groups := grouping.Build(assignments, grouping.OrderBySeverity)
	rules, _ := groups.Get(a)
	assert.Equal(t, []string{"C", "D", "A", "B"}, names(rules))
	assert.Equal(t, grouping.OrderBySeverity, groups.Order())
}

func TestMaxPathLength(t *testing.T) {
	t.Parallel()

	short := &catalog.Category{ID: "s", Path: "capella.category.a"}
	long := &catalog.Category{ID: "l", Path: "capella.category.a.b.c"}

	groups := grouping.New(grouping.OrderByName)
	assert.Zero(t, groups.MaxPathLength())

	groups.Add(
		catalog.Assignment{Category: short, Rule: &catalog.Rule{Name: "1"}},
		catalog.Assignment{Category: long, Rule: &catalog.Rule{Name: "2"}},
	)
	assert.Equal(t, len(long.Path), groups.MaxPathLength())
	assert.ElementsMatch(t, []*catalog.Category{short, long}, groups.Categories())
}

func TestParseOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    grouping.Order
		wantErr bool
	}{
		{input: "", want: grouping.OrderByName},
		{input: "name", want: grouping.OrderByName},
		{input: "Severity", want: grouping.OrderBySeverity},
		{input: "random", wantErr: true},
	}
	for _, tc := range tests {
		got, err := grouping.ParseOrder(tc.input)
		if tc.wantErr {
			assert.Error(t, err, tc.input)
			continue
		}
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, got, tc.input)
		assert.Equal(t, tc.want.String(), got.String())
	}
}
