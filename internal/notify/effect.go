package notify

// Template names the state machine emits. Each has a built-in default
// body; events may override per (channel, name) via message templates.
const (
	TemplateRSVPConfirmed   = "rsvp_confirmed"
	TemplateRSVPDeclined    = "rsvp_declined"
	TemplateDetailsReceived = "details_received"
)

// Effect one notification the state machine asks to be attempted after
// a successful write. Effects are data, not calls: the dispatcher
// executes them separately and records outcomes, so the write result
// never depends on delivery.
type Effect struct {
	Channel  string // domain.ChannelEmail or domain.ChannelWhatsApp
	Template string
	Params   map[string]string
}
