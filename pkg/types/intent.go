package types

import "strings"

// Intent is the classified purpose category of a guest question, drawn
// from a fixed closed set. IntentUnknown is the fallback and is never
// absent from a Response.
type Intent string

const (
	IntentCheckAvailability Intent = "check_availability"
	IntentMakeReservation   Intent = "make_reservation"
	IntentCancelReservation Intent = "cancel_reservation"
	IntentHotelInformation  Intent = "hotel_information"
	IntentTalkToHuman       Intent = "talk_to_human"
	IntentUnknown           Intent = "unknown"
)

// AllIntents returns the closed intent set in canonical order.
func AllIntents() []Intent {
	return []Intent{
		IntentCheckAvailability,
		IntentMakeReservation,
		IntentCancelReservation,
		IntentHotelInformation,
		IntentTalkToHuman,
		IntentUnknown,
	}
}

// ParseIntent maps a normalized label to an Intent. The second return
// value reports whether the label belongs to the closed set.
func ParseIntent(label string) (Intent, bool) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
	for _, intent := range AllIntents() {
		if normalized == string(intent) {
			return intent, true
		}
	}
	return IntentUnknown, false
}

// Valid reports whether the intent belongs to the closed set.
func (i Intent) Valid() bool {
	_, ok := ParseIntent(string(i))
	return ok
}

// RequiresAction reports whether the intent implies a follow-up human or
// system action. It is derived from the intent alone, never from answer
// text.
func (i Intent) RequiresAction() bool {
	switch i {
	case IntentMakeReservation, IntentCancelReservation, IntentTalkToHuman:
		return true
	}
	return false
}
