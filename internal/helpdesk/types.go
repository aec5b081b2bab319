package helpdesk

// TicketField describes one ticket field definition returned by the
// helpdesk. Only the attributes the importer checks are mapped.
type TicketField struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// Group describes one agent group returned by the helpdesk.
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
