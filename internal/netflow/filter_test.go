package netflow

import "testing"

func TestCompileFilterRejectsNonBool(t *testing.T) {
	if _, err := CompileFilter(`Field("name")`); err == nil {
		t.Fatal("expected compile error for non-boolean expression")
	}
}

func TestFilterMatch(t *testing.T) {
	details := map[string]any{
		"uuid":     "exp-uuid-1",
		"name":     "exp1",
		"destPort": float64(2055),
	}

	cases := []struct {
		expr string
		want bool
	}{
		{`All()`, true},
		{`None()`, false},
		{`Name("exp1", "exp2")`, true},
		{`Name("other")`, false},
		{`UUID("exp-uuid-1")`, true},
		{`Has("destPort") && Field("destPort") == 2055`, true},
		{`Has("qosPolicy")`, false},
		{`Name("exp1") && !Has("description")`, true},
	}
	for _, tc := range cases {
		prog, err := CompileFilter(tc.expr)
		if err != nil {
			t.Fatalf("compiling %q: %v", tc.expr, err)
		}
		got, err := prog.Match(details)
		if err != nil {
			t.Fatalf("running %q: %v", tc.expr, err)
		}
		if got != tc.want {
			t.Errorf("%q = %v, want %v", tc.expr, got, tc.want)
		}
	}
}
