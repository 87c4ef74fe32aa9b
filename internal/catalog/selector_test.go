package catalog_test

import (
	"testing"

	"github.com/roadprep/signquiz/internal/catalog"
	"github.com/roadprep/signquiz/internal/quiz"
)

func TestBundleKeyPrecedence(t *testing.T) {
	cases := []struct {
		auth catalog.Authority
		want string
	}{
		// id match beats keyword heuristics even when the name names a region
		{catalog.Authority{Code: "NHA", Name: "Sindh Regional Office"}, "mock-nha"},
		{catalog.Authority{Code: "nha", Name: ""}, "mock-nha"},
		{catalog.Authority{Code: "ICT", Name: "Islamabad Capital Territory"}, "mock-islamabad"},
		// keyword groups in precedence order
		{catalog.Authority{Code: "X1", Name: "National Highways & Motorway Police"}, "mock-nha"},
		{catalog.Authority{Code: "X2", Name: "Sindh Driving Licence Authority"}, "mock-sindh"},
		{catalog.Authority{Code: "X3", Name: "Khyber Pakhtunkhwa Traffic Police"}, "mock-kpk"},
		{catalog.Authority{Code: "X4", Name: "Generic Mock Test Provider"}, catalog.DefaultBundle},
		// catch-all default
		{catalog.Authority{Code: "Z9", Name: "Unknown Body"}, catalog.DefaultBundle},
	}
	for _, tc := range cases {
		if got := catalog.BundleKey(tc.auth); got != tc.want {
			t.Errorf("BundleKey(%+v) = %q, want %q", tc.auth, got, tc.want)
		}
	}
}

func TestSelectUnpopulatedBundleIsEmptyNotError(t *testing.T) {
	c := catalog.New(map[string][]quiz.Question{
		"mock-sindh": {{ID: "q1"}},
	})

	if qs := catalog.Select(c, catalog.Authority{Code: "NHA"}); len(qs) != 0 {
		t.Errorf("unpopulated bundle returned %d questions", len(qs))
	}
	if c.Ready("mock-nha") {
		t.Error("mock-nha reported ready")
	}
	if !c.Ready("mock-sindh") {
		t.Error("mock-sindh not ready")
	}
	if qs := catalog.Select(c, catalog.Authority{Code: "SINDH"}); len(qs) != 1 {
		t.Errorf("populated bundle returned %d questions", len(qs))
	}
}
