package validator

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"cgp-hq/seqval/pkg/manifest/finding"
	"cgp-hq/seqval/pkg/manifest/schema"
	"cgp-hq/seqval/pkg/manifest/schema/builtin"
)

func validHeader() Header {
	return Header{
		{Label: "Your Ref:", Value: "X"},
		{Label: "Species - Build:", Value: "HUMAN - GRCh37d5"},
		{Label: "Seq Protocol:", Value: "WGS"},
		{Label: "Data Type:", Value: "DNA"},
		{Label: "Mark Duplicates:", Value: "Y"},
	}
}

// validRecord returns a record satisfying every IMPORT-1.0 body rule.
func validRecord(sample, group, control, file string) Record {
	return Record{
		"Donor_ID":             "D1",
		"Tissue_ID":            "T1",
		"Is_Normal":            "N",
		"Is_Normal_for_Donor":  "N",
		"Is_Normal_for_Tissue": "N",
		"Sample":               sample,
		"Library":              "L1",
		"Platform":             "ILLUMINA",
		"Platform_Unit":        "PU1",
		"Group_ID":             group,
		"Group_Control":        control,
		"File":                 file,
	}
}

func kinds(fs []finding.Finding) []finding.Kind {
	out := make([]finding.Kind, len(fs))
	for i, f := range fs {
		out[i] = f.Kind
	}
	return out
}

func TestValidateHeader_Valid(t *testing.T) {
	sch := builtin.Import10()
	if got := ValidateHeader(sch.Header(), validHeader()); len(got) != 0 {
		t.Errorf("ValidateHeader() = %v, want no findings", got)
	}
}

func TestValidateHeader_MissingRequired(t *testing.T) {
	sch := builtin.Import10()
	for _, label := range sch.Header().Required() {
		t.Run(label, func(t *testing.T) {
			var h Header
			for _, f := range validHeader() {
				if f.Label != label {
					h = append(h, f)
				}
			}
			got := ValidateHeader(sch.Header(), h)
			found := false
			for _, f := range got {
				if f.Kind == finding.KindMissingRequired && f.Location.Field == label {
					found = true
				}
			}
			if !found {
				t.Errorf("no missing_required finding for %q in %v", label, got)
			}
		})
	}
}

func TestValidateHeader_EmptyRequiredValue(t *testing.T) {
	tests := []struct {
		name  string
		label string
		value string
	}{
		{"free text", "Your Ref:", "  "},
		{"restricted empty", "Mark Duplicates:", ""},
		{"restricted whitespace", "Data Type:", "\t"},
	}

	sch := builtin.Import10()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validHeader()
			for i := range h {
				if h[i].Label == tt.label {
					h[i].Value = tt.value
				}
			}
			got := ValidateHeader(sch.Header(), h)
			if len(got) != 1 || got[0].Kind != finding.KindMissingRequired || got[0].Location.Field != tt.label {
				t.Errorf("ValidateHeader() = %v, want only missing_required for %q", got, tt.label)
			}
		})
	}
}

func TestValidateHeader_InvalidValue(t *testing.T) {
	sch := builtin.Import10()
	for _, label := range []string{"Species - Build:", "Seq Protocol:", "Data Type:", "Mark Duplicates:"} {
		t.Run(label, func(t *testing.T) {
			h := validHeader()
			for i := range h {
				if h[i].Label == label {
					h[i].Value = "bogus"
				}
			}
			got := ValidateHeader(sch.Header(), h)
			if len(got) != 1 {
				t.Fatalf("got %d findings, want exactly 1: %v", len(got), got)
			}
			f := got[0]
			if f.Kind != finding.KindInvalidValue || f.Location.Field != label || f.Value != "bogus" {
				t.Errorf("finding = %+v", f)
			}
			allowed, _ := sch.Header().Allowed(label)
			if !strings.Contains(f.Message, `"bogus"`) || !strings.Contains(f.Message, allowed[0]) {
				t.Errorf("message %q should name the value and the allowed set", f.Message)
			}
		})
	}
}

func TestValidateHeader_Ordering(t *testing.T) {
	sch := builtin.Import10()
	h := Header{
		{Label: "Data Type:", Value: "XNA"},
		{Label: "Extra B", Value: "1"},
		{Label: "Seq Protocol:", Value: "WGS"},
		{Label: "Extra A", Value: "2"},
	}
	got := ValidateHeader(sch.Header(), h)

	want := []struct {
		kind  finding.Kind
		field string
	}{
		{finding.KindUnexpectedField, "Extra B"},
		{finding.KindUnexpectedField, "Extra A"},
		{finding.KindMissingRequired, "Your Ref:"},
		{finding.KindMissingRequired, "Species - Build:"},
		{finding.KindMissingRequired, "Mark Duplicates:"},
		{finding.KindInvalidValue, "Data Type:"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d findings, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Kind != w.kind || got[i].Location.Field != w.field {
			t.Errorf("finding %d = %s %q, want %s %q", i, got[i].Kind, got[i].Location.Field, w.kind, w.field)
		}
	}
}

func TestValidateBody_Valid(t *testing.T) {
	sch := builtin.Import10()
	records := []Record{
		validRecord("S1", "G1", "Y", "s1.bam"),
		validRecord("S2", "G1", "N", "s2.cram"),
		validRecord("S3", "G2", "Y", "s3_R1.fastq.gz"),
	}
	records[2]["File_2"] = "s3_R2.fastq.gz"

	if got := ValidateBody(sch.Body(), records, DefaultOptions()); len(got) != 0 {
		t.Errorf("ValidateBody() = %v, want no findings", got)
	}
}

func TestValidateBody_LimitExceeded(t *testing.T) {
	sch := builtin.Import10()
	records := []Record{
		validRecord("S1", "G1", "Y", "s1.bam"),
		validRecord("S2", "G1", "Y", "s2.bam"),
	}

	got := ValidateBody(sch.Body(), records, DefaultOptions())
	if len(got) != 1 {
		t.Fatalf("got %d findings, want 1: %v", len(got), got)
	}
	f := got[0]
	if f.Kind != finding.KindLimitExceeded {
		t.Fatalf("kind = %s", f.Kind)
	}
	if f.Location.Field != "Group_Control" || f.Location.Group != "G1" || f.Location.Record != 1 {
		t.Errorf("location = %+v", f.Location)
	}
	if !strings.Contains(f.Message, "2 times") || !strings.Contains(f.Message, "at most 1") {
		t.Errorf("message %q should carry observed count and maximum", f.Message)
	}
}

func TestValidateBody_LimitPerGroup(t *testing.T) {
	sch := builtin.Import10()

	tests := []struct {
		name    string
		groups  []string
		control []string
		want    int
	}{
		{
			name:    "one control per group",
			groups:  []string{"G1", "G2", "G3"},
			control: []string{"Y", "Y", "Y"},
			want:    0,
		},
		{
			name:    "limit plus one in one group",
			groups:  []string{"G1", "G1", "G2"},
			control: []string{"Y", "Y", "Y"},
			want:    1,
		},
		{
			name:    "many over limit still one finding",
			groups:  []string{"G1", "G1", "G1", "G1"},
			control: []string{"Y", "Y", "Y", "Y"},
			want:    1,
		},
		{
			name:    "two groups over limit",
			groups:  []string{"G2", "G1", "G2", "G1"},
			control: []string{"Y", "Y", "Y", "Y"},
			want:    2,
		},
		{
			name:    "non limited value not counted",
			groups:  []string{"G1", "G1", "G1"},
			control: []string{"Y", "N", "N"},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []Record
			for i := range tt.groups {
				records = append(records, validRecord("S"+string(rune('a'+i)), tt.groups[i], tt.control[i], "f"+string(rune('a'+i))+".bam"))
			}
			got := ValidateBody(sch.Body(), records, DefaultOptions())
			if len(got) != tt.want {
				t.Errorf("got %d findings, want %d: %v", len(got), tt.want, got)
			}
			for _, f := range got {
				if f.Kind != finding.KindLimitExceeded {
					t.Errorf("unexpected finding %v", f)
				}
			}
		})
	}
}

func TestValidateBody_LimitGroupOrder(t *testing.T) {
	sch := builtin.Import10()
	records := []Record{
		validRecord("S1", "G2", "Y", "a.bam"),
		validRecord("S2", "G1", "Y", "b.bam"),
		validRecord("S3", "G1", "Y", "c.bam"),
		validRecord("S4", "G2", "Y", "d.bam"),
	}
	got := ValidateBody(sch.Body(), records, DefaultOptions())
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	if got[0].Location.Group != "G2" || got[0].Location.Record != 3 {
		t.Errorf("first finding = %+v, want group G2 at record 3", got[0].Location)
	}
	if got[1].Location.Group != "G1" || got[1].Location.Record != 2 {
		t.Errorf("second finding = %+v, want group G1 at record 2", got[1].Location)
	}
}

func TestValidateBody_InvalidExtension(t *testing.T) {
	sch := builtin.Import10()
	records := []Record{validRecord("S1", "G1", "Y", "reads.txt")}

	got := ValidateBody(sch.Body(), records, DefaultOptions())
	if len(got) != 1 {
		t.Fatalf("got %d findings, want 1: %v", len(got), got)
	}
	if got[0].Kind != finding.KindInvalidExtension || got[0].Location.Field != "File" {
		t.Errorf("finding = %+v", got[0])
	}
}

func TestValidateBody_SuffixExact(t *testing.T) {
	body := schema.MustLoad([]byte(`
type: T
version: "1"
header: {expected: [A], required: [], validate: {}}
body:
  ordered: [Full, GzOnly]
  validate_ext:
    Full: [.fastq.gz]
    GzOnly: [.gz]
`), "test").Body()

	tests := []struct {
		column string
		file   string
		ok     bool
	}{
		{"Full", "reads.fastq.gz", true},
		{"Full", "reads.fq.gz", false},
		{"Full", "reads.fastq", false},
		{"Full", "reads.FASTQ.GZ", false},
		{"GzOnly", "reads.fastq.gz", false},
		{"GzOnly", "reads.gz", true},
	}

	for _, tt := range tests {
		t.Run(tt.column+"/"+tt.file, func(t *testing.T) {
			got := ValidateBody(body, []Record{{tt.column: tt.file}}, DefaultOptions())
			if ok := len(got) == 0; ok != tt.ok {
				t.Errorf("accepted = %v, want %v (%v)", ok, tt.ok, got)
			}
		})
	}
}

func TestFullExtension(t *testing.T) {
	gz := []string{".gz"}
	tests := []struct {
		name string
		want string
	}{
		{"reads.fastq.gz", ".fastq.gz"},
		{"reads.bam", ".bam"},
		{"/data/run.1/reads.cram", ".cram"},
		{"archive.gz", ".gz"},
		{"noext", ""},
		{"sample.v2.fq.gz", ".fq.gz"},
	}
	for _, tt := range tests {
		if got := FullExtension(tt.name, gz); got != tt.want {
			t.Errorf("FullExtension(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
	if got := FullExtension("reads.fastq.gz", nil); got != ".gz" {
		t.Errorf("without compression suffixes got %q, want .gz", got)
	}
}

func TestValidateBody_RequiredAndValues(t *testing.T) {
	sch := builtin.Import10()

	tests := []struct {
		name   string
		mutate func(Record)
		want   []finding.Kind
	}{
		{
			name:   "missing required column",
			mutate: func(r Record) { delete(r, "Library") },
			want:   []finding.Kind{finding.KindMissingRequired},
		},
		{
			name:   "null marker counts as empty",
			mutate: func(r Record) { r["Library"] = "." },
			want:   []finding.Kind{finding.KindMissingRequired},
		},
		{
			name:   "invalid value",
			mutate: func(r Record) { r["Platform"] = "PACBIO" },
			want:   []finding.Kind{finding.KindInvalidValue},
		},
		{
			name:   "values are case sensitive",
			mutate: func(r Record) { r["Is_Normal"] = "y" },
			want:   []finding.Kind{finding.KindInvalidValue},
		},
		{
			name:   "empty required validated column",
			mutate: func(r Record) { r["Is_Normal"] = "" },
			want:   []finding.Kind{finding.KindMissingRequired, finding.KindInvalidValue},
		},
		{
			name:   "empty optional extension column exempt",
			mutate: func(r Record) { r["File_2"] = "" },
			want:   []finding.Kind{},
		},
		{
			name:   "optional extension column checked when set",
			mutate: func(r Record) { r["File_2"] = "r2.bam" },
			want:   []finding.Kind{finding.KindInvalidExtension},
		},
		{
			name: "paired files with matching extensions",
			mutate: func(r Record) {
				r["File"] = "a_1.fq.gz"
				r["File_2"] = "a_2.fq.gz"
			},
			want: []finding.Kind{},
		},
		{
			name: "paired files with different extensions",
			mutate: func(r Record) {
				r["File"] = "a_1.fq.gz"
				r["File_2"] = "a_2.fastq"
			},
			want: []finding.Kind{finding.KindExtensionMismatch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord("S1", "G1", "Y", "s1.bam")
			tt.mutate(rec)
			got := kinds(ValidateBody(sch.Body(), []Record{rec}, DefaultOptions()))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("kinds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateBody_Unique(t *testing.T) {
	sch := builtin.Import10()
	records := []Record{
		validRecord("S1", "G1", "Y", "r1.fq.gz"),
		validRecord("S2", "G2", "Y", "r2.fq.gz"),
	}
	records[0]["File_2"] = "r2.fq.gz"

	got := ValidateBody(sch.Body(), records, DefaultOptions())
	if len(got) != 1 || got[0].Kind != finding.KindDuplicateValue {
		t.Fatalf("got %v, want one duplicate_value", got)
	}
	if got[0].Location.Record != 1 || got[0].Location.Field != "File" {
		t.Errorf("location = %+v", got[0].Location)
	}
}

func TestSession_Run(t *testing.T) {
	sch := builtin.Import10()
	records := []Record{
		validRecord("S1", "G1", "Y", "reads.txt"),
		validRecord("S2", "G1", "Y", "s2.bam"),
	}
	h := validHeader()
	h = append(h, Field{Label: "Comment", Value: "extra"})

	result, err := NewSession(sch).Run(context.Background(), h, records)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Schema != "IMPORT-1.0" || result.SessionID == "" {
		t.Errorf("result = %+v", result)
	}
	want := []finding.Kind{finding.KindUnexpectedField, finding.KindInvalidExtension, finding.KindLimitExceeded}
	if got := kinds(result.Findings); !reflect.DeepEqual(got, want) {
		t.Errorf("kinds = %v, want %v", got, want)
	}
}

func TestSession_Idempotent(t *testing.T) {
	sch := builtin.Import10()
	records := []Record{
		validRecord("S1", "G1", "Y", "a.txt"),
		validRecord("S2", "G1", "Y", "a.txt"),
		validRecord("S3", "G2", "Q", ""),
	}
	s := NewSession(sch)

	first, err := s.Run(context.Background(), Header{{Label: "Data Type:", Value: "X"}}, records)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Run(context.Background(), Header{{Label: "Data Type:", Value: "X"}}, records)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Findings, second.Findings) {
		t.Errorf("findings differ between runs:\n%v\n%v", first.Findings, second.Findings)
	}
}

func TestSession_StructuralError(t *testing.T) {
	sch := builtin.Import10()
	rec := validRecord("S1", "G1", "Y", "a.bam")
	rec["Colour"] = "blue"

	_, err := Validate(context.Background(), sch, validHeader(), []Record{rec})
	var se *StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StructuralError", err)
	}
	if se.Record != 0 || se.Column != "Colour" {
		t.Errorf("StructuralError = %+v", se)
	}

	if _, err := Validate(context.Background(), nil, nil, nil); !errors.As(err, &se) {
		t.Errorf("nil schema error = %v, want *StructuralError", err)
	}
}

func TestSession_StructuralErrorIsStable(t *testing.T) {
	sch := builtin.Import10()
	rec := validRecord("S1", "G1", "Y", "a.bam")
	rec["Zed"] = "1"
	rec["Alpha"] = "2"

	var first string
	for i := 0; i < 50; i++ {
		_, err := Validate(context.Background(), sch, validHeader(), []Record{rec})
		var se *StructuralError
		if !errors.As(err, &se) {
			t.Fatalf("error = %v, want *StructuralError", err)
		}
		if se.Column != "Alpha" {
			t.Fatalf("Column = %q, want the first unknown column in sorted order", se.Column)
		}
		if i == 0 {
			first = se.Error()
			if !strings.Contains(first, `"Alpha", "Zed"`) {
				t.Errorf("error %q should list every unknown column", first)
			}
			continue
		}
		if se.Error() != first {
			t.Fatalf("run %d error = %q, want %q", i, se.Error(), first)
		}
	}
}

func TestSession_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Validate(ctx, builtin.Import10(), validHeader(), []Record{validRecord("S1", "G1", "Y", "a.bam")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	schema   string
	records  int
	findings int
}

func (o *recordingObserver) ObserveSession(key string, records int, fs []finding.Finding, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.schema, o.records, o.findings = key, records, len(fs)
}

func TestSession_Observer(t *testing.T) {
	obs := &recordingObserver{}
	s := NewSession(builtin.Import10(), WithObserver(obs), WithSessionID("fixed"))
	result, err := s.Run(context.Background(), validHeader(), []Record{validRecord("S1", "G1", "Y", "a.txt")})
	if err != nil {
		t.Fatal(err)
	}
	if result.SessionID != "fixed" {
		t.Errorf("SessionID = %q", result.SessionID)
	}
	if obs.schema != "IMPORT-1.0" || obs.records != 1 || obs.findings != 1 {
		t.Errorf("observer saw %+v", obs)
	}
}

func TestSession_ConcurrentSharedSchema(t *testing.T) {
	sch := builtin.Import10()
	records := []Record{
		validRecord("S1", "G1", "Y", "a.bam"),
		validRecord("S2", "G1", "Y", "b.bam"),
	}

	var wg sync.WaitGroup
	counts := make([]int, 16)
	for i := range counts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := Validate(context.Background(), sch, validHeader(), records)
			if err != nil {
				t.Error(err)
				return
			}
			counts[i] = len(res.ByKind(finding.KindLimitExceeded))
		}(i)
	}
	wg.Wait()

	for i, c := range counts {
		if c != 1 {
			t.Errorf("session %d saw %d limit findings, want 1", i, c)
		}
	}
}

func TestValidateBody_ExtensionMismatchLocation(t *testing.T) {
	sch := builtin.Import10()
	rec := validRecord("S1", "G1", "Y", "a_1.fq.gz")
	rec["File_2"] = "a_2.fastq"

	got := ValidateBody(sch.Body(), []Record{rec}, DefaultOptions())
	if len(got) != 1 {
		t.Fatalf("got %v, want one finding", got)
	}
	f := got[0]
	if f.Kind != finding.KindExtensionMismatch || f.Location.Field != "File_2" || f.Location.Record != 0 || f.Value != "a_2.fastq" {
		t.Errorf("finding = %+v", f)
	}
	if !strings.Contains(f.Message, ".fq.gz") || !strings.Contains(f.Message, ".fastq") {
		t.Errorf("message %q should name both extensions", f.Message)
	}
}
