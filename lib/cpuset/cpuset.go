// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

// Package cpuset provides a set-of-CPU-indices model with parsers for
// the two representations the kernel exposes: hexadecimal affinity
// masks (Cpus_allowed in /proc/<pid>/status) and human-readable CPU
// lists ("0-3,5,7" in sysfs and command-line flags). All host-specific
// representation details are normalized here; the rest of the module
// only ever sees a Set.
package cpuset

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// wordBits is the number of CPU indices stored per backing word.
const wordBits = 64

// Set is a set of non-negative CPU indices backed by a bitset. The
// zero value is an empty set ready for use. Sets are value types:
// Union and Intersect return new sets and never mutate their operands.
type Set struct {
	words []uint64
}

// Of returns a Set containing the given CPUs. Negative indices panic —
// they indicate a programming error, not runtime data.
func Of(cpus ...int) Set {
	var s Set
	for _, cpu := range cpus {
		s.Add(cpu)
	}
	return s
}

// Add inserts cpu into the set. Panics on negative cpu.
func (s *Set) Add(cpu int) {
	if cpu < 0 {
		panic(fmt.Sprintf("cpuset: negative CPU index %d", cpu))
	}
	word := cpu / wordBits
	for len(s.words) <= word {
		s.words = append(s.words, 0)
	}
	s.words[word] |= 1 << (cpu % wordBits)
}

// Contains reports whether cpu is in the set.
func (s Set) Contains(cpu int) bool {
	if cpu < 0 {
		return false
	}
	word := cpu / wordBits
	if word >= len(s.words) {
		return false
	}
	return s.words[word]&(1<<(cpu%wordBits)) != 0
}

// IsEmpty reports whether the set contains no CPUs.
func (s Set) IsEmpty() bool {
	for _, word := range s.words {
		if word != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of CPUs in the set.
func (s Set) Count() int {
	total := 0
	for _, word := range s.words {
		total += bits.OnesCount64(word)
	}
	return total
}

// Union returns a new set containing every CPU in either operand.
func (s Set) Union(other Set) Set {
	longer, shorter := s.words, other.words
	if len(shorter) > len(longer) {
		longer, shorter = shorter, longer
	}
	result := make([]uint64, len(longer))
	copy(result, longer)
	for i, word := range shorter {
		result[i] |= word
	}
	return Set{words: result}
}

// Intersect returns a new set containing every CPU in both operands.
func (s Set) Intersect(other Set) Set {
	length := min(len(s.words), len(other.words))
	result := make([]uint64, length)
	for i := 0; i < length; i++ {
		result[i] = s.words[i] & other.words[i]
	}
	return Set{words: result}
}

// Intersects reports whether the two sets share at least one CPU,
// without allocating the intersection.
func (s Set) Intersects(other Set) bool {
	length := min(len(s.words), len(other.words))
	for i := 0; i < length; i++ {
		if s.words[i]&other.words[i] != 0 {
			return true
		}
	}
	return false
}

// Equal reports whether both sets contain exactly the same CPUs.
// Trailing zero words do not affect equality.
func (s Set) Equal(other Set) bool {
	longer, shorter := s.words, other.words
	if len(shorter) > len(longer) {
		longer, shorter = shorter, longer
	}
	for i, word := range shorter {
		if word != longer[i] {
			return false
		}
	}
	for _, word := range longer[len(shorter):] {
		if word != 0 {
			return false
		}
	}
	return true
}

// List returns the CPUs in the set in ascending order.
func (s Set) List() []int {
	cpus := make([]int, 0, s.Count())
	for i, word := range s.words {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			cpus = append(cpus, i*wordBits+bit)
			word &^= 1 << bit
		}
	}
	return cpus
}

// String renders the set in compact CPU-list form, collapsing
// consecutive indices into ranges: {0,1,2,3,5,7,8,9} → "0-3,5,7-9".
// The empty set renders as "".
func (s Set) String() string {
	cpus := s.List()
	if len(cpus) == 0 {
		return ""
	}

	var builder strings.Builder
	start, end := cpus[0], cpus[0]
	flush := func() {
		if builder.Len() > 0 {
			builder.WriteByte(',')
		}
		if start == end {
			builder.WriteString(strconv.Itoa(start))
		} else {
			builder.WriteString(strconv.Itoa(start))
			builder.WriteByte('-')
			builder.WriteString(strconv.Itoa(end))
		}
	}
	for _, cpu := range cpus[1:] {
		if cpu == end+1 {
			end = cpu
			continue
		}
		flush()
		start, end = cpu, cpu
	}
	flush()
	return builder.String()
}

// ParseMask parses a kernel affinity mask as found in the Cpus_allowed
// field of /proc/<pid>/status: comma-separated groups of hexadecimal
// digits, most significant group first (e.g. "ff", "f0f" or
// "00000001,00000000"). The number and width of groups varies with the
// kernel's configured CPU limit; ParseMask accepts any width.
func ParseMask(mask string) (Set, error) {
	mask = strings.TrimSpace(mask)
	if mask == "" {
		return Set{}, fmt.Errorf("empty affinity mask")
	}

	groups := strings.Split(mask, ",")

	var s Set
	// Groups are most significant first: the last group covers CPUs
	// 0-31, the one before it 32-63, and so on (32 bits per group,
	// the kernel's cpumask print width).
	for i, group := range groups {
		if group == "" {
			return Set{}, fmt.Errorf("affinity mask %q: empty group", mask)
		}
		value, err := strconv.ParseUint(group, 16, 64)
		if err != nil {
			return Set{}, fmt.Errorf("affinity mask %q: %w", mask, err)
		}
		base := (len(groups) - 1 - i) * 32
		for bit := 0; value != 0; bit++ {
			if value&1 != 0 {
				s.Add(base + bit)
			}
			value >>= 1
		}
	}
	return s, nil
}

// ParseList parses a human-readable CPU list such as "0-3,5,7".
// Whitespace around entries is tolerated. The empty string parses to
// the empty set. Malformed entries, negative values, and reversed
// ranges are errors.
func ParseList(list string) (Set, error) {
	var s Set
	list = strings.TrimSpace(list)
	if list == "" {
		return s, nil
	}

	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if first, second, isRange := strings.Cut(entry, "-"); isRange {
			start, err := parseCPU(first)
			if err != nil {
				return Set{}, fmt.Errorf("CPU list entry %q: %w", entry, err)
			}
			end, err := parseCPU(second)
			if err != nil {
				return Set{}, fmt.Errorf("CPU list entry %q: %w", entry, err)
			}
			if end < start {
				return Set{}, fmt.Errorf("CPU list entry %q: descending range", entry)
			}
			for cpu := start; cpu <= end; cpu++ {
				s.Add(cpu)
			}
			continue
		}

		cpu, err := parseCPU(entry)
		if err != nil {
			return Set{}, fmt.Errorf("CPU list entry %q: %w", entry, err)
		}
		s.Add(cpu)
	}
	return s, nil
}

// parseCPU parses a single non-negative CPU index.
func parseCPU(text string) (int, error) {
	cpu, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, err
	}
	if cpu < 0 {
		return 0, fmt.Errorf("negative CPU %d", cpu)
	}
	return cpu, nil
}
