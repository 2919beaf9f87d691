package domain

import "fmt"

// ToggleStatus returns the paired status of the entry: pending flips to paid (debt) or
// received (income), and back. Any other (type, status) combination is rejected.
func ToggleStatus(e Entry) (EntryStatus, error) {
	switch {
	case e.Type == EntryTypeDebt && e.Status == StatusPending:
		return StatusPaid, nil
	case e.Type == EntryTypeDebt && e.Status == StatusPaid:
		return StatusPending, nil
	case e.Type == EntryTypeIncome && e.Status == StatusPending:
		return StatusReceived, nil
	case e.Type == EntryTypeIncome && e.Status == StatusReceived:
		return StatusPending, nil
	default:
		return "", fmt.Errorf("%w: %s entry has status %q", ErrInvalidStatus, e.Type, e.Status)
	}
}

// Toggle flips the entry status in place.
func (e *Entry) Toggle() error {
	next, err := ToggleStatus(*e)
	if err != nil {
		return err
	}
	e.Status = next
	return nil
}
