package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed metaschema.json
var metaSchemaJSON []byte

const metaSchemaURL = "https://cgp-hq.github.io/seqval/schema-document.json"

var (
	metaOnce   sync.Once
	metaSchema *jsonschema.Schema
	metaErr    error

	printer = message.NewPrinter(language.English)
)

// compiledMetaSchema compiles the embedded meta-schema on first use.
func compiledMetaSchema() (*jsonschema.Schema, error) {
	metaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(metaSchemaJSON))
		if err != nil {
			metaErr = fmt.Errorf("failed to parse meta-schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(metaSchemaURL, doc); err != nil {
			metaErr = fmt.Errorf("failed to add meta-schema: %w", err)
			return
		}
		metaSchema, metaErr = c.Compile(metaSchemaURL)
	})
	return metaSchema, metaErr
}

// checkStructure validates a decoded document against the meta-schema and
// returns one error per failing leaf, sorted by path.
func checkStructure(generic any) ([]*Error, error) {
	sch, err := compiledMetaSchema()
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("document is not representable as JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	err = sch.Validate(inst)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, err
	}

	var out []*Error
	collectLeaves(ve, &out)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Message < out[j].Message
	})
	return out, nil
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]*Error) {
	if len(ve.Causes) == 0 {
		*out = append(*out, &Error{
			Type:    ErrorTypeStructural,
			Path:    pointer(ve.InstanceLocation),
			Message: ve.ErrorKind.LocalizedString(printer),
		})
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}

// pointer renders path tokens as a JSON pointer.
func pointer(tokens []string) string {
	if len(tokens) == 0 {
		return "/"
	}
	escaped := make([]string, len(tokens))
	for i, t := range tokens {
		t = strings.ReplaceAll(t, "~", "~0")
		escaped[i] = strings.ReplaceAll(t, "/", "~1")
	}
	return "/" + strings.Join(escaped, "/")
}

// tokens splits a JSON pointer back into its path tokens.
func tokens(ptr string) []string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return nil
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return parts
}
