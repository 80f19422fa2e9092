// Package harness runs multi-day publication scenarios against the engine.
//
// A scenario describes a corpus on disk, an optional starting history, and a
// sequence of days. Each day may change the corpus, inject collaborator
// failures, and run the engine one or more times. The resulting reports form
// a trace that can be checked with assertions and compared to a golden file.
//
// # Scenario Format
//
//	name: two_files
//	description: "One file per day, then nothing new"
//	start: "2026-10-19"
//	store: json
//	corpus:
//	  a.py: "print('a')\n"
//	  b.py: "# b\nprint('b')\n"
//	days:
//	  - expect: published
//	    file: a.py
//	  - advance: 1
//	    expect: published
//	    file: b.py
//	  - advance: 1
//	    expect: skipped_nothing_new
//	assertions:
//	  - type: history_dates
//	    dates: ["2026-10-19", "2026-10-20"]
//
// # Assertion Types
//
//   - published_count: exactly Count runs published
//   - history_dates: the final history lists exactly Dates, in order
//   - history_contains: the final history records File
//   - artifact_contains: artifact Artifact in container Container contains Text
//   - never_published: no artifact and no model input ever contained Text
//
// # Deterministic Testing
//
// Every scenario runs in a fresh temporary directory with a fixed clock and
// run ids "run-0001", "run-0002", and so on. The model and the publication
// target are replaced with in-memory fakes, so traces are reproducible and
// suitable for golden comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/two_files.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
