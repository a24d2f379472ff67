package keypath_test

import (
	"testing"

	"github.com/ndoctl-project/ndoctl/pkg/keypath"
)

func TestAppendDoesNotShareBacking(t *testing.T) {
	base := keypath.New("a", "b")
	left := base.Append("c")
	right := base.Append("d")

	if left.String() != "a/b/c" || right.String() != "a/b/d" {
		t.Fatalf("append aliased backing array: %q / %q", left, right)
	}
	if base.String() != "a/b" {
		t.Fatalf("append mutated receiver: %q", base)
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		a, b keypath.Path
		want bool
	}{
		{keypath.New("a"), keypath.New("a"), true},
		{keypath.New("a"), keypath.New("b"), false},
		{keypath.New("a", "b"), keypath.New("a"), false},
		{keypath.New("a", "b"), keypath.New("a", "b"), true},
		{nil, nil, true},
	}
	for i, tc := range cases {
		if got := tc.a.Equal(tc.b); got != tc.want {
			t.Fatalf("case %d: Equal(%v, %v) = %v, want %v", i, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestLocation(t *testing.T) {
	p := keypath.New("bfdPol", "adminState")
	got := p.Location("/tenantPolicyTemplate/template/l3OutIntfPolGroups/0")
	want := "/tenantPolicyTemplate/template/l3OutIntfPolGroups/0/bfdPol/adminState"
	if got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
}

func TestValid(t *testing.T) {
	if keypath.New().Valid() {
		t.Fatal("empty path should not be valid")
	}
	if keypath.New("a", "").Valid() {
		t.Fatal("path with empty segment should not be valid")
	}
	if !keypath.New("a").Valid() {
		t.Fatal("bare key should be valid")
	}
}
