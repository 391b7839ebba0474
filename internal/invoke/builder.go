// Package invoke builds the executable program body and per-test call
// statements for a task record. Dataset- and task-specific quirks live in
// id-keyed tables, never in the execution engine.
package invoke

import (
	"encoding/json"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/programme-lv/ranker/api"
	"github.com/programme-lv/ranker/internal/coerce"
	"github.com/programme-lv/ranker/internal/environment"
)

// boolWrapIDs lists tasks whose results must pass through a truthiness
// check before printing.
var boolWrapIDs = mapset.NewSet("Mbpp/737", "Mbpp/787", "Mbpp/794")

// importInfIDs lists tasks whose call statements need `inf` in scope.
var importInfIDs = mapset.NewSet("Mbpp/404")

// Invocation is a runnable program body plus one call statement per test
// input, per tier.
type Invocation struct {
	Program   string
	BaseTests []string
	PlusTests []string
}

// Build assembles the invocation for one record. For HumanEval-style
// records addPrompt controls whether the prompt (function signature and
// docstring) is prepended to the solution body; generated candidates carry
// complete functions and skip it.
func Build(dataset environment.Dataset, rec *api.TaskRecord, addPrompt bool) (*Invocation, error) {
	switch dataset {
	case environment.DatasetMBPP:
		return buildMBPP(rec)
	case environment.DatasetHE, environment.DatasetHEPlus:
		return buildHE(rec, addPrompt, false)
	case environment.DatasetMBPPPlus:
		return buildHE(rec, addPrompt, true)
	}
	return nil, fmt.Errorf("unknown dataset type %q", dataset)
}

// buildMBPP runs the dataset's own assert statements against the assembled
// program; there is no plus tier.
func buildMBPP(rec *api.TaskRecord) (*Invocation, error) {
	program := rec.Code + "\n" + rec.TestSetupCode + "\n\n"
	tests := make([]string, 0, len(rec.TestList)+len(rec.ChallengeTestList))
	tests = append(tests, rec.TestList...)
	tests = append(tests, rec.ChallengeTestList...)
	return &Invocation{Program: program, BaseTests: tests}, nil
}

func buildHE(rec *api.TaskRecord, addPrompt bool, coerceInputs bool) (*Invocation, error) {
	var program string
	if addPrompt {
		if rec.Prompt == nil {
			return nil, fmt.Errorf("task %s has no prompt", rec.TaskID)
		}
		program = strings.TrimSpace(*rec.Prompt) + "\n" + rec.CanonicalSolution
	} else {
		program = rec.CanonicalSolution
	}

	baseTests, err := callStatements(rec, rec.BaseInput, coerceInputs)
	if err != nil {
		return nil, fmt.Errorf("base inputs: %w", err)
	}
	plusTests, err := callStatements(rec, rec.PlusInput, coerceInputs)
	if err != nil {
		return nil, fmt.Errorf("plus inputs: %w", err)
	}

	return &Invocation{Program: program, BaseTests: baseTests, PlusTests: plusTests}, nil
}

func callStatements(rec *api.TaskRecord, inputs []json.RawMessage, coerceInputs bool) ([]string, error) {
	args, err := normalize(rec.TaskID, inputs, coerceInputs)
	if err != nil {
		return nil, err
	}

	wrapBool := boolWrapIDs.Contains(rec.TaskID)
	importInf := importInfIDs.Contains(rec.TaskID)

	stmts := make([]string, 0, len(args))
	for _, a := range args {
		call := fmt.Sprintf("%s(*%s)", rec.EntryPoint, coerce.Render(a))
		if wrapBool {
			call = "bool(" + call + ")"
		}
		stmt := "\nprint(" + call + ")"
		if importInf {
			stmt = "\nfrom math import inf\n" + stmt
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func normalize(taskID string, inputs []json.RawMessage, coerceInputs bool) ([]coerce.Value, error) {
	if coerceInputs {
		return coerce.Deserialize(taskID, inputs)
	}
	out := make([]coerce.Value, 0, len(inputs))
	for i, raw := range inputs {
		v, err := coerce.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
