package linkage

import (
	"errors"
	"reflect"
	"testing"

	"tierlink/internal/plan"
	"tierlink/internal/recordset"
)

func TestJoinOrderAndNullKeys(t *testing.T) {
	a := recordset.MustNew("k")
	for _, v := range []any{"y", nil, "x", "y"} {
		_ = a.Append(v)
	}
	b := recordset.MustNew("k")
	for _, v := range []any{"x", "y", nil, "y"} {
		_ = b.Append(v)
	}
	got := join(a, b, []plan.Comparator{plan.ExactMatch("k", "k")})
	want := []joinPair{{0, 1}, {0, 3}, {2, 0}, {3, 1}, {3, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("join = %v, want %v", got, want)
	}
}

func TestCompositeKeyKeepsColumnsApart(t *testing.T) {
	left, _ := compositeKey(recordset.Row{Values: []any{"ab", "c"}}, []int{0, 1})
	right, _ := compositeKey(recordset.Row{Values: []any{"a", "bc"}}, []int{0, 1})
	if left == right {
		t.Fatal("composite keys collide across column boundaries")
	}
	if _, ok := compositeKey(recordset.Row{Values: []any{"a", nil}}, []int{0, 1}); ok {
		t.Fatal("expected a null component to suppress the key")
	}
}

func TestSelectUnique(t *testing.T) {
	a := recordset.MustNew("k")
	_ = a.Append("1")
	_ = a.Append("2")
	b := recordset.MustNew("k")
	_ = b.Append("1")
	_ = b.Append("2")
	pairs := []joinPair{{0, 0}, {0, 1}, {1, 0}, {1, 1}}

	tests := []struct {
		name   string
		unique bool
		shared bool
		want   []joinPair
	}{
		{"unique exclusive", true, false, []joinPair{{0, 0}, {1, 1}}},
		{"unique shared", true, true, []joinPair{{0, 0}, {1, 0}}},
		{"not unique exclusive", false, false, []joinPair{{0, 0}, {0, 1}}},
		{"not unique shared", false, true, pairs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{EnforceUniqueMatch: tt.unique, AllowSharedBMatches: tt.shared}
			if got := selectUnique(pairs, a, b, opts); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("selectUnique = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLowerColumnDropsNonStrings(t *testing.T) {
	s := recordset.MustNew("v")
	_ = s.Append("MiXeD")
	_ = s.Append(42)
	_ = s.Append(nil)
	_ = s.Append([]byte("BYTES"))
	ptr := "Pointer"
	_ = s.Append(&ptr)
	_ = s.Append((*string)(nil))
	got := lowerColumn(s, "v")
	if !reflect.DeepEqual(got, []any{"mixed", nil, nil, "bytes", "pointer", nil}) {
		t.Fatalf("lowerColumn = %#v", got)
	}
}

func TestWrapDetail(t *testing.T) {
	cause := errors.New("boom")
	err := wrap(ErrSchema, 2, "comparator 1", "missing column", cause)
	if err.Error() != "schema error: tier 2: comparator 1: missing column: boom" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) || Kind(err) != "schema" {
		t.Fatalf("unexpected classification for %v", err)
	}
	if got := wrap(nil, -1, "", "", nil).Error(); got != "schema error: linkage failure" {
		t.Fatalf("unexpected default message %q", got)
	}
	if Kind(errors.New("other")) != "" || Kind(nil) != "" {
		t.Fatal("unmarked errors must have no kind")
	}
}
