// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

package cpuset

import (
	"reflect"
	"testing"
)

func TestParseMask(t *testing.T) {
	tests := []struct {
		name string
		mask string
		want []int
	}{
		{"single_cpu", "1", []int{0}},
		{"low_byte", "ff", []int{0, 1, 2, 3, 4, 5, 6, 7}},
		{"sparse", "f0f", []int{0, 1, 2, 3, 8, 9, 10, 11}},
		{"two_groups", "1,00000000", []int{32}},
		{"mixed_groups", "3,80000001", []int{0, 31, 32, 33}},
		{"wide_mask", "ff,00000000,00000000", []int{64, 65, 66, 67, 68, 69, 70, 71}},
		{"zero", "0", nil},
		{"whitespace", "  ff\n", []int{0, 1, 2, 3, 4, 5, 6, 7}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			set, err := ParseMask(test.mask)
			if err != nil {
				t.Fatalf("ParseMask(%q): %v", test.mask, err)
			}
			got := set.List()
			if len(got) == 0 {
				got = nil
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("ParseMask(%q).List() = %v, want %v", test.mask, got, test.want)
			}
		})
	}
}

func TestParseMaskErrors(t *testing.T) {
	for _, mask := range []string{"", "zz", "ff,,ff", "0x12"} {
		if _, err := ParseMask(mask); err == nil {
			t.Errorf("ParseMask(%q) succeeded, want error", mask)
		}
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name string
		list string
		want []int
	}{
		{"empty", "", nil},
		{"single", "5", []int{5}},
		{"plain_list", "0,1,2", []int{0, 1, 2}},
		{"range", "0-3", []int{0, 1, 2, 3}},
		{"mixed", "0-2,5,8-9", []int{0, 1, 2, 5, 8, 9}},
		{"spaces", " 1 , 3 ", []int{1, 3}},
		{"duplicates", "1,1,1-2", []int{1, 2}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			set, err := ParseList(test.list)
			if err != nil {
				t.Fatalf("ParseList(%q): %v", test.list, err)
			}
			got := set.List()
			if len(got) == 0 {
				got = nil
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("ParseList(%q).List() = %v, want %v", test.list, got, test.want)
			}
		})
	}
}

func TestParseListErrors(t *testing.T) {
	for _, list := range []string{"a", "1-", "-3", "5-2", "1,-2,3", "1.5"} {
		if _, err := ParseList(list); err == nil {
			t.Errorf("ParseList(%q) succeeded, want error", list)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		cpus []int
		want string
	}{
		{"empty", nil, ""},
		{"single", []int{4}, "4"},
		{"run", []int{0, 1, 2, 3}, "0-3"},
		{"mixed", []int{0, 1, 2, 3, 5, 7, 8, 9}, "0-3,5,7-9"},
		{"pair_is_range", []int{6, 7}, "6-7"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Of(test.cpus...).String(); got != test.want {
				t.Errorf("Of(%v).String() = %q, want %q", test.cpus, got, test.want)
			}
		})
	}
}

func TestSetOperations(t *testing.T) {
	a := Of(0, 1, 2, 64)
	b := Of(2, 3, 64, 128)

	union := a.Union(b)
	if got, want := union.String(), "0-3,64,128"; got != want {
		t.Errorf("union = %q, want %q", got, want)
	}

	intersection := a.Intersect(b)
	if got, want := intersection.String(), "2,64"; got != want {
		t.Errorf("intersection = %q, want %q", got, want)
	}
	if !a.Intersects(b) {
		t.Error("Intersects = false, want true")
	}

	// Operands must be unchanged.
	if got, want := a.String(), "0-2,64"; got != want {
		t.Errorf("a mutated by Union/Intersect: %q, want %q", got, want)
	}

	disjoint := Of(200)
	if a.Intersects(disjoint) {
		t.Error("Intersects(disjoint) = true, want false")
	}
	if !a.Intersect(disjoint).IsEmpty() {
		t.Error("Intersect(disjoint) not empty")
	}
}

func TestEqual(t *testing.T) {
	a := Of(0, 33)
	b := Of(0, 33)
	// Give b trailing zero words: Equal must ignore backing width.
	b.Add(200)
	c := b.Intersect(Of(0, 33, 999))

	if !a.Equal(c) {
		t.Errorf("Equal = false for %v and %v", a.List(), c.List())
	}
	if a.Equal(b) {
		t.Errorf("Equal = true for %v and %v", a.List(), b.List())
	}
	if !(Set{}).Equal(Set{}) {
		t.Error("empty sets not equal")
	}
}

func TestContainsAndCount(t *testing.T) {
	s := Of(0, 5, 63, 64, 127)
	for _, cpu := range []int{0, 5, 63, 64, 127} {
		if !s.Contains(cpu) {
			t.Errorf("Contains(%d) = false, want true", cpu)
		}
	}
	for _, cpu := range []int{-1, 1, 62, 65, 128, 1000} {
		if s.Contains(cpu) {
			t.Errorf("Contains(%d) = true, want false", cpu)
		}
	}
	if s.Count() != 5 {
		t.Errorf("Count = %d, want 5", s.Count())
	}
	if s.IsEmpty() {
		t.Error("IsEmpty = true for non-empty set")
	}
}
