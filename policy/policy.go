// Package policy provides declarative, TOML-defined clause tables that
// compile into dispatch clauses, so error-handling policy can live in
// configuration instead of code.
package policy

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/python/exceptiongroups/dispatch"
	"github.com/python/exceptiongroups/errtree"
)

// Action is what a policy clause does with its matched set.
type Action string

const (
	// ActionSilence consumes the matched set.
	ActionSilence Action = "silence"

	// ActionReraise re-raises the matched set verbatim.
	ActionReraise Action = "reraise"

	// ActionRaise raises a fresh error in place of the matched set.
	ActionRaise Action = "raise"
)

// Valid returns true if the action is a known value.
func (a Action) Valid() bool {
	switch a {
	case ActionSilence, ActionReraise, ActionRaise:
		return true
	default:
		return false
	}
}

// ClauseSpec is one declarative clause: which leaves it matches and what it
// does with them. Exactly one of Codes and Category selects the match.
type ClauseSpec struct {
	Name     string
	Codes    []errtree.Code
	Category errtree.Category
	Action   Action

	// RaiseCode and RaiseMessage describe the fresh error for ActionRaise.
	RaiseCode    errtree.Code
	RaiseMessage string
}

// Policy is an ordered clause table. Order matters: the first clause wins
// any predicate overlap, exactly as with hand-written clauses.
type Policy struct {
	Clauses []ClauseSpec
}

// tomlPolicy is the TOML representation.
type tomlPolicy struct {
	Clauses []tomlClause `toml:"clause"`
}

type tomlClause struct {
	Name         string   `toml:"name"`
	Codes        []string `toml:"codes"`
	Category     string   `toml:"category"`
	Action       string   `toml:"action"`
	RaiseCode    string   `toml:"raise_code"`
	RaiseMessage string   `toml:"raise_message"`
}

// LoadFile loads a policy from a TOML file.
func LoadFile(path string) (*Policy, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return Parse(string(content))
}

// Parse parses and validates a policy from TOML content.
func Parse(content string) (*Policy, error) {
	var raw tomlPolicy
	if _, err := toml.Decode(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}

	pol := &Policy{Clauses: make([]ClauseSpec, 0, len(raw.Clauses))}
	for _, c := range raw.Clauses {
		spec := ClauseSpec{
			Name:         c.Name,
			Category:     errtree.Category(c.Category),
			Action:       Action(c.Action),
			RaiseCode:    errtree.Code(c.RaiseCode),
			RaiseMessage: c.RaiseMessage,
		}
		for _, code := range c.Codes {
			spec.Codes = append(spec.Codes, errtree.Code(code))
		}
		pol.Clauses = append(pol.Clauses, spec)
	}

	if err := pol.Validate(); err != nil {
		return nil, err
	}
	return pol, nil
}

// Validate checks the clause table. It mirrors dispatch validation where it
// can (the rest happens when the compiled clauses are dispatched).
func (p *Policy) Validate() error {
	for i, c := range p.Clauses {
		if !c.Action.Valid() {
			return fmt.Errorf("clause %d (%s): unknown action %q", i, c.Name, c.Action)
		}
		if len(c.Codes) == 0 && c.Category == "" {
			return fmt.Errorf("clause %d (%s): needs codes or a category", i, c.Name)
		}
		if len(c.Codes) > 0 && c.Category != "" {
			return fmt.Errorf("clause %d (%s): codes and category are mutually exclusive", i, c.Name)
		}
		for _, code := range c.Codes {
			if code == errtree.CodeAggregate {
				return fmt.Errorf("clause %d (%s): cannot match the aggregate tag", i, c.Name)
			}
		}
		if c.Action == ActionRaise && c.RaiseCode == "" {
			return fmt.Errorf("clause %d (%s): raise action needs raise_code", i, c.Name)
		}
		if c.Action != ActionRaise && (c.RaiseCode != "" || c.RaiseMessage != "") {
			return fmt.Errorf("clause %d (%s): raise fields need the raise action", i, c.Name)
		}
	}
	return nil
}

// Compile turns the clause table into dispatch clauses, preserving order.
func (p *Policy) Compile() []dispatch.Clause {
	clauses := make([]dispatch.Clause, 0, len(p.Clauses))
	for _, spec := range p.Clauses {
		var pred errtree.Predicate
		if spec.Category != "" {
			pred = errtree.MatchCategory(spec.Category)
		} else {
			pred = errtree.MatchCodes(spec.Codes...)
		}
		clauses = append(clauses, dispatch.Clause{
			Kind:      dispatch.KindTree,
			Predicate: pred,
			Name:      spec.Name,
			Body:      spec.body(),
		})
	}
	return clauses
}

// body returns the canned handler for the spec's action.
func (c ClauseSpec) body() dispatch.Handler {
	switch c.Action {
	case ActionReraise:
		return func(*dispatch.Scope) dispatch.Disposition {
			return dispatch.Reraise()
		}
	case ActionRaise:
		code, message := c.RaiseCode, c.RaiseMessage
		if message == "" {
			message = code.Description()
		}
		return func(*dispatch.Scope) dispatch.Disposition {
			return dispatch.Raise(errtree.New(code, message))
		}
	default:
		return func(*dispatch.Scope) dispatch.Disposition {
			return dispatch.Completed()
		}
	}
}
