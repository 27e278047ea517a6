// Package validator checks manifest headers and body records against a
// loaded schema.
//
// ValidateHeader and ValidateBody are pure functions over a schema section
// and the input. A Session runs both, header first, and wraps the outcome in
// a finding.Result:
//
//	result, err := validator.NewSession(sch).Run(ctx, header, records)
//	if err != nil {
//	    // *StructuralError or context cancellation
//	}
//	if !result.OK() {
//	    // report result.Findings
//	}
//
// Findings are accumulated and never returned as errors. The order of
// findings is deterministic: validating the same input twice yields the
// same list.
//
// Limit rules count matching records per distinct limit_by value. The
// counters belong to a single run, so sessions may share a schema and run
// concurrently.
package validator
