package clubs

import "testing"

func TestByID(t *testing.T) {
	tests := []struct {
		id       string
		wantOK   bool
		wantName string
	}{
		{"river", true, "River Plate"},
		{"RIVER", true, "River Plate"},
		{"  boca ", true, "Boca Juniors"},
		{"chelsea", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		club, ok := ByID(tt.id)
		if ok != tt.wantOK {
			t.Errorf("ByID(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
			continue
		}
		if ok && club.Name != tt.wantName {
			t.Errorf("ByID(%q).Name = %q, want %q", tt.id, club.Name, tt.wantName)
		}
	}
}

func TestCatalogIntegrity(t *testing.T) {
	seen := make(map[string]bool)
	for _, club := range All() {
		if club.ID == "" || club.Name == "" || club.ShortName == "" {
			t.Errorf("club %+v has empty required fields", club)
		}
		if seen[club.ID] {
			t.Errorf("duplicate club id %q", club.ID)
		}
		seen[club.ID] = true
		if club.SofascoreID == 0 && club.BesoccerSlug == "" {
			t.Errorf("club %q has no external source binding", club.ID)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	first := All()
	first[0].Name = "mutated"
	if All()[0].Name == "mutated" {
		t.Error("All() exposes internal catalog slice")
	}
}
