// Package wp implements the Write-Protect Engine: per-family
// range tables and the set_range/enable/disable/wp_status operations that
// read and rewrite a chip's status/config registers.
package wp

// Tri is a tri-valued modifier bit: Care(true), Care(false), or Any (don't
// care, matches either value). A sum type rather than an integer sentinel
// like -1, since a sentinel invites exactly the kind of silent misuse
// ("is -1 a valid bit value here?") a dedicated type rules out at compile
// time.
type Tri struct {
	isAny bool
	val   bool
}

// Any is the don't-care value: it matches both true and false.
func Any() Tri { return Tri{isAny: true} }

// Care pins the tri-value to exactly v.
func Care(v bool) Tri { return Tri{val: v} }

// IsAny reports whether this is the don't-care value.
func (t Tri) IsAny() bool { return t.isAny }

// Value returns the pinned value and true, or (false, false) if this is Any.
func (t Tri) Value() (bool, bool) {
	if t.isAny {
		return false, false
	}
	return t.val, true
}

// Matches reports whether v satisfies this tri-value: Any matches anything,
// Care(x) matches only x.
func (t Tri) Matches(v bool) bool {
	if t.isAny {
		return true
	}
	return t.val == v
}

func (t Tri) String() string {
	if t.isAny {
		return "X"
	}
	if t.val {
		return "1"
	}
	return "0"
}
