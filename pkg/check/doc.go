// Package check ties manifest reading, schema selection and validation
// together.
//
// A Checker reads a manifest, looks up the schema named by its
// "Form type:" and "Form version:" header fields, converts the body rows
// into records and runs a validation session. Findings come back in a
// Report with Location.Line pointing at the offending source line:
//
//	checker := check.NewChecker(manager,
//		check.WithOptions(check.OptionsFrom(&cfg.Validation)),
//		check.WithObserver(collector),
//		check.WithRejectionRecorder(collector),
//	)
//	report, err := checker.CheckFile(ctx, "manifest.tsv")
//
// Errors are reserved for manifests that cannot be validated at all: a
// malformed layout, an unknown schema or an oversized body. CheckFiles runs
// many manifests in parallel and folds such errors into the reports.
package check
