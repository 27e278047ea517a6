package finding

import "testing"

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		want string
	}{
		{
			name: "header",
			loc:  HeaderLocation("Data Type:"),
			want: `header "Data Type:"`,
		},
		{
			name: "record",
			loc:  RecordLocation(0, "File"),
			want: `record 1 column "File"`,
		},
		{
			name: "group with line",
			loc:  Location{Section: SectionBody, Field: "Group_Control", Record: 3, Group: "G1", Line: 12},
			want: `record 4 column "Group_Control" group "G1" (line 12)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResult(t *testing.T) {
	r := &Result{}
	if !r.OK() {
		t.Error("empty result should be OK")
	}

	r.Findings = []Finding{
		{Kind: KindMissingRequired, Location: HeaderLocation("Your Ref:")},
		{Kind: KindInvalidValue, Location: RecordLocation(0, "Platform")},
		{Kind: KindMissingRequired, Location: RecordLocation(1, "File")},
	}

	if r.OK() {
		t.Error("result with findings should not be OK")
	}
	if r.Count() != 3 {
		t.Errorf("Count() = %d, want 3", r.Count())
	}
	if got := r.ByKind(KindMissingRequired); len(got) != 2 || got[1].Location.Field != "File" {
		t.Errorf("ByKind() = %v", got)
	}
	if r.HasKind(KindLimitExceeded) {
		t.Error("HasKind(limit_exceeded) should be false")
	}
	if s := r.Summary(); s[KindMissingRequired] != 2 || s[KindInvalidValue] != 1 {
		t.Errorf("Summary() = %v", s)
	}
}

func TestKinds(t *testing.T) {
	seen := make(map[Kind]bool)
	for _, k := range Kinds() {
		if seen[k] {
			t.Errorf("duplicate kind %q", k)
		}
		seen[k] = true
	}
	if len(seen) != 6 {
		t.Errorf("Kinds() returned %d kinds, want 7", len(seen))
	}
}
