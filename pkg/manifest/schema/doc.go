// Package schema provides the in-memory model of a manifest schema document
// and the loader that builds it.
//
// A schema document describes the header and body of a tabular
// sample-submission manifest:
//
//	{
//	  "type": "IMPORT",
//	  "version": "1.0",
//	  "header": {
//	    "expected": ["Your Ref:", "Data Type:"],
//	    "required": ["Your Ref:"],
//	    "validate": {"Data Type:": ["DNA", "RNA"]}
//	  },
//	  "body": {
//	    "ordered":  ["Group_ID", "Group_Control", "File"],
//	    "required": ["Group_ID", "File"],
//	    "validate": {
//	      "Group_Control": [{"value": "Y", "limit": 1, "limit_by": "Group_ID"}, {"value": "N"}]
//	    },
//	    "validate_ext": {"File": [".bam", ".fastq.gz"]}
//	  }
//	}
//
// Documents may be written in JSON or YAML. Load first checks the document
// against an embedded JSON Schema (wrong types, unknown or missing keys) and
// then checks cross-references between sections. Every problem is reported
// in a single *Errors value with JSON-pointer paths and, for YAML input,
// source line and column.
//
// Body rules are a tagged variant: a rule with limit/limit_by becomes a
// LimitedValue, any other rule an AllowedValue.
//
// A loaded *Schema is immutable; accessors return copies, so one schema can
// be shared by any number of concurrent validation sessions.
package schema
