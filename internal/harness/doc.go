// Package harness provides scenario-driven conformance testing for the
// propagation engine.
//
// The harness loads YAML scenario files, wires a fresh grid and engine to a
// scripted lookup client, replays the scenario's edit steps, and validates
// the final sheet state. Every applied cell write is recorded as a trace
// event; traces compare against golden files for regression detection.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	rows:
//	  - amount: 10
//	    prop.mw: 18.02
//	lookups:
//	  - kind: Name
//	    query: water
//	    compound:
//	      cid: 962
//	      name: Water
//	      mw: 18.015
//	steps:
//	  - row: 0
//	    field: search
//	    value: water
//	final:
//	  - row: 0
//	    field: status
//	    value: "✅Compound found"
//
// Row maps are keyed by field path (amount, prop.mw, id.CAS, eq.ref, ...),
// the same paths the grid addresses cells by. Steps run in order and the
// harness settles the engine after each one, so a step's lookup completion
// lands before the next step executes and the trace is fully deterministic.
//
// # Deterministic Testing
//
// All scenarios execute with fixed request tokens (from scenario.tokens or
// generated as a counting sequence) and a scripted lookup client; queries
// without a scripted answer fail as not-found rather than silently hitting
// an unplanned lookup. This ensures identical traces across runs for golden
// file comparison.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/water.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
//
// Or compare its trace against a golden file inside a test:
//
//	harness.RunWithGolden(t, scenario)
package harness
