package deps

import (
	"testing"

	"claudepack/internal/config"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "Shell", Command: "sh"},
		{Name: "Ghost", Command: "definitely-not-a-real-binary-xyz"},
		{Name: "Unset", Command: ""},
	})
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available {
		t.Fatalf("sh should be available: %+v", statuses[0])
	}
	if statuses[1].Available {
		t.Fatal("nonexistent binary reported available")
	}
	if statuses[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail %q", statuses[2].Detail)
	}
}

func TestForFormatSelectsPackagingTool(t *testing.T) {
	cfg := config.Default()

	names := func(reqs []Requirement) map[string]bool {
		set := make(map[string]bool, len(reqs))
		for _, r := range reqs {
			set[r.Name] = true
		}
		return set
	}

	rpm := names(ForFormat(&cfg, "rpm"))
	if !rpm["rpmbuild"] || rpm["appimagetool"] {
		t.Fatalf("rpm requirements wrong: %v", rpm)
	}
	ai := names(ForFormat(&cfg, "appimage"))
	if !ai["appimagetool"] || ai["rpmbuild"] {
		t.Fatalf("appimage requirements wrong: %v", ai)
	}
	all := names(ForFormat(&cfg, ""))
	if !all["rpmbuild"] || !all["appimagetool"] || !all["7-Zip"] {
		t.Fatalf("union requirements wrong: %v", all)
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "a", Available: true},
		{Name: "b", Available: false, Optional: true},
		{Name: "c", Available: false},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0].Name != "c" {
		t.Fatalf("missing = %+v", missing)
	}
}
