package household

// Profile is a structured view of the household: the property itself, who
// lives there, and how the owner wants Maple to behave.
type Profile struct {
	Home        HomeProfile
	Occupants   []string
	Preferences PreferencesProfile
	Notes       []string
}

// HomeProfile captures the property facts that inform maintenance advice.
type HomeProfile struct {
	Address    string
	Type       string // e.g. "single-family", "condo", "townhouse"
	YearBuilt  string
	SquareFeet string
	Climate    string // e.g. "humid continental"
}

// PreferencesProfile captures how the owner wants dates, money, and
// reminders presented.
type PreferencesProfile struct {
	Units            string // "imperial" or "metric"
	Currency         string // e.g. "USD"
	ReminderLeadDays string // how far ahead to surface deadlines
}
