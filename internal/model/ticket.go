package model

// Ticket status codes as defined by the helpdesk API.
const (
	TicketStatusOpen     = 2
	TicketStatusPending  = 3
	TicketStatusResolved = 4
	TicketStatusClosed   = 5
)

// Ticket priority codes as defined by the helpdesk API.
const (
	TicketPriorityLow    = 1
	TicketPriorityMedium = 2
	TicketPriorityHigh   = 3
	TicketPriorityUrgent = 4
)

// ImportedTag marks every ticket created by this tool.
const ImportedTag = "imported"

// TicketPayload is the JSON body POSTed to the helpdesk to create one
// ticket. It is built exactly once per mail thread and never mutated
// afterwards. Optional fields carry omitempty so an unset requester or
// group is absent from the wire payload rather than serialized as null.
type TicketPayload struct {
	// Email is the requester's address, taken from the earliest message
	// of the thread. Empty when the From header carried no address.
	Email string `json:"email,omitempty"`

	// Name is the requester's display name, if the From header had one.
	Name string `json:"name,omitempty"`

	// Subject is the decoded subject of the earliest message.
	Subject string `json:"subject"`

	// Description is the rendered HTML body covering the whole thread.
	Description string `json:"description"`

	// Status is one of the TicketStatus* codes.
	Status int `json:"status"`

	// Priority is one of the TicketPriority* codes.
	Priority int `json:"priority"`

	// Tags attached to the created ticket.
	Tags []string `json:"tags,omitempty"`

	// GroupID assigns the ticket to a helpdesk group.
	GroupID int64 `json:"group_id,omitempty"`

	// CustomFields maps helpdesk custom field names to their values.
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}
