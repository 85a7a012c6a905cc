// ABOUTME: Tests for the list validator
// ABOUTME: Error-count invariant, duplicate tracking, and targeted recomputes

package validate

import (
	"testing"
)

const listErrorText = "Names must be unique and not blank"

func newNameList(values []string, existing ...string) *ListValidator[string] {
	return NewListValidator(values, InvalidNameFunc(existing), false, listErrorText)
}

func assertErrors(t *testing.T, lv *ListValidator[string], want []bool) {
	t.Helper()

	got := lv.Errors()
	if len(got) != len(want) {
		t.Fatalf("Expected %d error flags, got %d", len(want), len(got))
	}

	count := 0

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Slot %d: expected error=%v, got %v", i, want[i], got[i])
		}

		if got[i] {
			count++
		}
	}

	if lv.ErrorCount() != count {
		t.Errorf("ErrorCount %d does not match %d flagged slots", lv.ErrorCount(), count)
	}
}

func TestInitialValuesAreValidated(t *testing.T) {
	lv := newNameList([]string{"existing", "b", "c"}, "existing")

	assertErrors(t, lv, []bool{true, false, false})

	if msg := lv.Message(); !msg.IsError() || msg.Text != listErrorText {
		t.Errorf("Expected aggregate error message, got %+v", msg)
	}
}

func TestFixingTheOnlyBadSlotClearsTheMessage(t *testing.T) {
	lv := newNameList([]string{"existing", "b", "c"}, "existing")

	lv.SetValue(0, "d")

	assertErrors(t, lv, []bool{false, false, false})

	if msg := lv.Message(); msg != nil {
		t.Errorf("Expected no message once every slot is valid, got %+v", msg)
	}
}

func TestBlankSlotIsFlagged(t *testing.T) {
	lv := newNameList([]string{"a", "b"})

	lv.SetValue(1, "  ")

	assertErrors(t, lv, []bool{false, true})
}

func TestDuplicateSlotsFlagEachOther(t *testing.T) {
	lv := newNameList([]string{"a", "b", "c"})

	lv.SetValue(2, "a")

	assertErrors(t, lv, []bool{true, false, true})
}

func TestRenamingOneDuplicateClearsBoth(t *testing.T) {
	lv := newNameList([]string{"a", "a", "b"})

	assertErrors(t, lv, []bool{true, true, false})

	lv.SetValue(1, "c")

	assertErrors(t, lv, []bool{false, false, false})
}

func TestChangeRefreshesSlotsMatchingOldAndNewValue(t *testing.T) {
	lv := newNameList([]string{"a", "b", "c"})

	// b -> a: slots 0 and 1 become duplicates of each other
	lv.SetValue(1, "a")
	assertErrors(t, lv, []bool{true, true, false})

	// a -> c: slot 0 clears, slots 1 and 2 become the new duplicate pair
	lv.SetValue(1, "c")
	assertErrors(t, lv, []bool{false, true, true})
}

func TestAllowedDuplicatesAreNotFlagged(t *testing.T) {
	lv := NewListValidator([]string{"a", "a"}, InvalidNameFunc(nil), true, listErrorText)

	assertErrors(t, lv, []bool{false, false})

	if _, ok := lv.Validate(); !ok {
		t.Error("Expected duplicates to pass when allowed")
	}
}

func TestValidateRejectsDisallowedDuplicates(t *testing.T) {
	lv := newNameList([]string{"a", "a"})

	if _, ok := lv.Validate(); ok {
		t.Error("Expected duplicate values to fail Validate")
	}

	lv.SetValue(1, "b")

	values, ok := lv.Validate()
	if !ok {
		t.Fatal("Expected unique values to pass Validate")
	}

	if values[0] != "a" || values[1] != "b" {
		t.Errorf("Expected values [a b], got %v", values)
	}
}

func TestOutOfRangeSetValueIsIgnored(t *testing.T) {
	lv := newNameList([]string{"a"})

	lv.SetValue(-1, "x")
	lv.SetValue(5, "x")

	assertErrors(t, lv, []bool{false})
}
