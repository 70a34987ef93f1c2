package host

import "testing"

type fatalHost struct {
	Host
	fatal bool
}

func (f fatalHost) FailuresFatal() bool { return f.fatal }

func TestIsFatal(t *testing.T) {
	if IsFatal(fatalHost{fatal: false}) {
		t.Error("IsFatal = true for a best-effort host")
	}
	if !IsFatal(fatalHost{fatal: true}) {
		t.Error("IsFatal = false for a fatal host")
	}
}

func TestSameComparable(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil value", nil, 1, false},
		{"equal strings", "a", "a", true},
		{"different strings", "a", "b", false},
		{"int vs int64", 1, int64(1), false},
		{"equal bools", true, true, true},
		{"equal structs", struct{ X int }{1}, struct{ X int }{1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Same(tt.a, tt.b); got != tt.want {
				t.Errorf("Same(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSameFuncIdentity(t *testing.T) {
	mk := func(n int) func() int { return func() int { return n } }
	f1, f2 := mk(1), mk(1)

	if !Same(f1, f1) {
		t.Error("a closure should be the same as itself")
	}
	if Same(f1, f2) {
		t.Error("distinct closures from the same literal should differ")
	}
}

func TestSameReferenceTypes(t *testing.T) {
	m := map[string]int{"a": 1}
	if !Same(m, m) {
		t.Error("same map should be same")
	}
	if Same(m, map[string]int{"a": 1}) {
		t.Error("equal maps are not identical")
	}

	s := []int{1, 2, 3}
	if !Same(s, s) {
		t.Error("same slice should be same")
	}
	if Same(s, s[:2]) {
		t.Error("shorter reslice should differ")
	}

	p := new(int)
	if !Same(p, p) || Same(p, new(int)) {
		t.Error("pointer identity")
	}
}

func TestSameInterfaceFieldPanics(t *testing.T) {
	type box struct{ V any }
	a := box{V: []int{1}}
	b := box{V: []int{1}}
	if Same(a, b) {
		t.Error("structs holding uncomparable values should not be same")
	}
}
