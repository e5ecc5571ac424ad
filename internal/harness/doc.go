// Package harness runs conformance scenarios against IR programs.
//
// A scenario loads program files, optionally runs dead code elimination,
// calls static methods through the interpreter and checks the results.
// Every rule firing and call is recorded in a trace that can be compared
// against a golden file.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	programs:
//	  - path/to/program.yaml
//	optimize:
//	  rules: [unused-instructions, box-unbox]
//	calls:
//	  - method: demo.Math.twice(I)I
//	    args: ["21"]
//	    expect: { result: "42" }
//	  - method: demo.Math.div
//	    args: ["1", "0"]
//	    expect: { throws: java.lang.ArithmeticException }
//	assertions:
//	  - type: firing_count
//	    rule: box-unbox
//	    count: 1
//	  - type: preserves
//
// Program paths are relative to the scenario file. An empty rules list
// enables every rule.
//
// # Assertion Types
//
//   - firing_count: a rule (optionally in one method) fired exactly N times
//   - firing_order: rules first fired in the given order
//   - verifies: the module passes ir.VerifyModule after optimization
//   - preserves: every call gives the same outcome on the unoptimized program
//
// # Deterministic Testing
//
// Trace events are numbered by a testutil.DeterministicClock, and rewrites
// follow the fixed rule application order, so traces are identical across
// runs and suitable for golden comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/math.yaml")
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
package harness
