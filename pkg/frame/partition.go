package frame

import (
	"errors"
	"fmt"
)

// MaxConditionVars caps how many condition variables a session displays.
// Extra candidates are dropped after ordering (least associated first).
const MaxConditionVars = 20

// Partition splits a table's columns into the three session roles: one
// response, one or two section variables, and the remaining condition
// variables. The roles are pairwise disjoint.
type Partition struct {
	Response  string
	Section   []string
	Condition []string
}

// Partition validation errors.
var (
	ErrNoResponse     = errors.New("partition: response variable required")
	ErrSectionCount   = errors.New("partition: need 1 or 2 section variables")
	ErrRoleOverlap    = errors.New("partition: roles overlap")
	ErrUnknownColumn  = errors.New("partition: unknown column")
	ErrEmptyTable     = errors.New("partition: table has no rows")
	ErrSectionNumeric = errors.New("partition: section variables must be numeric")
)

// NewPartition builds a partition for table t with the given response and
// section variables; every remaining column becomes a condition variable,
// in table order. Validation is the caller's setup gate: an invalid
// partition must never reach the tour loop.
func NewPartition(t *Table, response string, section ...string) (Partition, error) {
	p := Partition{Response: response, Section: section}
	for _, c := range t.Columns() {
		if c.Name == response {
			continue
		}
		inSection := false
		for _, s := range section {
			if c.Name == s {
				inSection = true
				break
			}
		}
		if !inSection {
			p.Condition = append(p.Condition, c.Name)
		}
	}
	if err := p.Validate(t); err != nil {
		return Partition{}, err
	}
	return p, nil
}

// Validate checks the partition against the table. It reports the first
// violation found; all violations are setup errors.
func (p Partition) Validate(t *Table) error {
	if t.NumRows() == 0 {
		return ErrEmptyTable
	}
	if p.Response == "" {
		return ErrNoResponse
	}
	if len(p.Section) < 1 || len(p.Section) > 2 {
		return fmt.Errorf("%w, got %d", ErrSectionCount, len(p.Section))
	}
	seen := map[string]string{p.Response: "response"}
	if !t.Has(p.Response) {
		return fmt.Errorf("%w %q (response)", ErrUnknownColumn, p.Response)
	}
	for _, s := range p.Section {
		c, ok := t.Column(s)
		if !ok {
			return fmt.Errorf("%w %q (section)", ErrUnknownColumn, s)
		}
		if c.Kind != Numeric {
			return fmt.Errorf("%w: %q is %s", ErrSectionNumeric, s, c.Kind)
		}
		if role, dup := seen[s]; dup {
			return fmt.Errorf("%w: %q is both %s and section", ErrRoleOverlap, s, role)
		}
		seen[s] = "section"
	}
	for _, c := range p.Condition {
		if !t.Has(c) {
			return fmt.Errorf("%w %q (condition)", ErrUnknownColumn, c)
		}
		if role, dup := seen[c]; dup {
			return fmt.Errorf("%w: %q is both %s and condition", ErrRoleOverlap, c, role)
		}
		seen[c] = "condition"
	}
	return nil
}
