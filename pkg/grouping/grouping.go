// Package grouping buckets rules by the category they are documented under.
//
// Groups are kept in a tree map ordered by category ID and each group's rules
// in a tree set, so iteration order is fixed and independent of the order in
// which rules were added.
package grouping

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/dkoosis/ruledoc/pkg/catalog"
)

// Order selects how rules are sorted within a group.
type Order int

const (
	// OrderByName sorts by rule name, byte-wise and case-sensitive.
	OrderByName Order = iota
	// OrderBySeverity sorts by severity ordinal, then by name.
	OrderBySeverity
)

// ParseOrder maps "name" (or "") and "severity" to an Order.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return OrderByName, nil
	case "severity":
		return OrderBySeverity, nil
	}
	return OrderByName, fmt.Errorf("unknown rule order %q", s)
}

func (o Order) String() string {
	if o == OrderBySeverity {
		return "severity"
	}
	return "name"
}

func (o Order) comparator() utils.Comparator {
	if o == OrderBySeverity {
		return bySeverityThenName
	}
	return byName
}

func byName(a, b interface{}) int {
	return strings.Compare(a.(*catalog.Rule).Name, b.(*catalog.Rule).Name)
}

func bySeverityThenName(a, b interface{}) int {
	ra, rb := a.(*catalog.Rule), b.(*catalog.Rule)
	if ra.Severity != rb.Severity {
		return utils.IntComparator(int(ra.Severity), int(rb.Severity))
	}
	return strings.Compare(ra.Name, rb.Name)
}

func byCategoryID(a, b interface{}) int {
	ca, cb := a.(*catalog.Category), b.(*catalog.Category)
	if c := strings.Compare(ca.ID, cb.ID); c != 0 {
		return c
	}
	return strings.Compare(ca.Path, cb.Path)
}

// Group is a category with the ordered rules assigned to it.
type Group struct {
	Category *catalog.Category
	Rules    []*catalog.Rule
}

// Groups is a multi-valued map from category to rules.
type Groups struct {
	order         Order
	tree          *treemap.Map
	maxPathLength int
}

// New returns an empty set of groups sorting rules with the given order.
func New(order Order) *Groups {
	return &Groups{
		order: order,
		tree:  treemap.NewWith(byCategoryID),
	}
}

// Build groups the assignments in one call.
func Build(assignments []catalog.Assignment, order Order) *Groups {
	g := New(order)
	g.Add(assignments...)
	return g
}

// Add inserts each rule under its category. Adding a rule already present
// under the same category has no effect.
func (g *Groups) Add(assignments ...catalog.Assignment) {
	for _, a := range assignments {
		var rules *treeset.Set
		if v, found := g.tree.Get(a.Category); found {
			rules = v.(*treeset.Set)
		} else {
			rules = treeset.NewWith(g.order.comparator())
			g.tree.Put(a.Category, rules)
		}
		rules.Add(a.Rule)
		if n := len(a.Category.Path); n > g.maxPathLength {
			g.maxPathLength = n
		}
	}
}

// Len returns the number of categories.
func (g *Groups) Len() int {
	return g.tree.Size()
}

// MaxPathLength returns the length of the longest category path added.
func (g *Groups) MaxPathLength() int {
	return g.maxPathLength
}

// Order returns the rule ordering in use.
func (g *Groups) Order() Order {
	return g.order
}

// Categories returns the category keys in iteration order.
func (g *Groups) Categories() []*catalog.Category {
	keys := g.tree.Keys()
	result := make([]*catalog.Category, 0, len(keys))
	for _, k := range keys {
		result = append(result, k.(*catalog.Category))
	}
	return result
}

// Get returns the ordered rules of a category.
func (g *Groups) Get(category *catalog.Category) ([]*catalog.Rule, bool) {
	v, found := g.tree.Get(category)
	if !found {
		return nil, false
	}
	return rulesOf(v.(*treeset.Set)), true
}

// All returns every group in iteration order.
func (g *Groups) All() []Group {
	result := make([]Group, 0, g.tree.Size())
	it := g.tree.Iterator()
	for it.Next() {
		result = append(result, Group{
			Category: it.Key().(*catalog.Category),
			Rules:    rulesOf(it.Value().(*treeset.Set)),
		})
	}
	return result
}

func rulesOf(set *treeset.Set) []*catalog.Rule {
	values := set.Values()
	rules := make([]*catalog.Rule, 0, len(values))
	for _, v := range values {
		rules = append(rules, v.(*catalog.Rule))
	}
	return rules
}
