package assistant

// Fixed replies. Format verbs are filled by the router.
const (
	ReplyNoAppointments     = "📭 No appointments found for tomorrow."
	ReplyAppointmentsHeader = "📅 Appointments for tomorrow:\n"
	ReplyAppointmentLine    = "• %s at %s\n"
	ReplyClarification      = "⚠️ Sorry, I couldn't understand the date or time you mentioned. Try something like 'next Friday at 2 PM'."
	ReplyBooked             = "📅 %s booked at %s"
	ReplyBookingFailed      = "⚠️ Sorry, I couldn't book %s right now."
	ReplyInternalError      = "⚠️ Internal error: %s"

	// UntitledEvent stands in for listed events without a summary.
	UntitledEvent = "No Title"
)

// Dispatch status labels.
const (
	statusOK    = "ok"
	statusError = "error"
)

const (
	opList   = "list"
	opInsert = "insert"
	opChat   = "chat"
)
