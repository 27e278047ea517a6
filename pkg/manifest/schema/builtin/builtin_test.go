package builtin

import "testing"

func TestSchemas(t *testing.T) {
	schemas := Schemas()
	if len(schemas) != len(Names()) {
		t.Fatalf("Schemas() returned %d, Names() %d", len(schemas), len(Names()))
	}
	for i, s := range schemas {
		if want := s.Key() + ".json"; Names()[i] != want {
			t.Errorf("embedded file %q declares %q", Names()[i], s.Key())
		}
	}
}

func TestImport10(t *testing.T) {
	s := Import10()
	if s.Key() != "IMPORT-1.0" {
		t.Fatalf("Key() = %q", s.Key())
	}

	if !s.Body().IsRequired("File") || s.Body().IsRequired("File_2") {
		t.Error("File should be required and File_2 optional")
	}
	if got := s.Body().LimitedRules(); len(got) != 2 {
		t.Errorf("LimitedRules() = %v, want Is_Normal_for_Donor and Group_Control", got)
	}
	if exts, ok := s.Body().Extensions("File"); !ok || len(exts) == 0 {
		t.Error("File should carry extension rules")
	}
	if got := s.Body().Unique(); len(got) != 2 {
		t.Errorf("Unique() = %v", got)
	}
	if !s.Header().Accepts("Data Type:", "DNA") || s.Header().Accepts("Data Type:", "dna") {
		t.Error("Data Type: should accept exactly DNA and RNA")
	}
}
