// Package builtin embeds the schema documents shipped with seqval.
package builtin

import (
	"embed"
	"io/fs"
	"sort"
	"strings"

	"cgp-hq/seqval/pkg/manifest/schema"
)

//go:embed *.json
var documents embed.FS

// Names returns the embedded document file names, sorted.
func Names() []string {
	entries, _ := fs.ReadDir(documents, ".")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Schemas loads every embedded schema. The documents are part of the binary,
// so a load failure is a build defect and panics.
func Schemas() []*schema.Schema {
	var out []*schema.Schema
	for _, name := range Names() {
		data, err := documents.ReadFile(name)
		if err != nil {
			panic(err)
		}
		out = append(out, schema.MustLoad(data, "builtin:"+name))
	}
	return out
}

// Import10 returns the IMPORT-1.0 schema.
func Import10() *schema.Schema {
	data, err := documents.ReadFile("IMPORT-1.0.json")
	if err != nil {
		panic(err)
	}
	return schema.MustLoad(data, "builtin:IMPORT-1.0.json")
}
