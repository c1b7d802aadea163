package entities

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one normalized utterance in a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// TurnPart is one text segment of a structured turn payload.
type TurnPart struct {
	Text string `json:"text"`
}

// TurnPayload is the wire shape of a history entry. Clients send one of two
// forms: the structured {role, parts} form, or the simplified {text, sender}
// form used by older frontends. NormalizeTurn accepts both.
type TurnPayload struct {
	Role   string     `json:"role,omitempty"`
	Parts  []TurnPart `json:"parts,omitempty"`
	Text   string     `json:"text,omitempty"`
	Sender string     `json:"sender,omitempty"`
}

// NormalizeTurn translates a wire payload into a Turn. The second return is
// false when the payload matches neither known shape.
func NormalizeTurn(p TurnPayload) (Turn, bool) {
	if p.Role != "" && len(p.Parts) > 0 {
		var text string
		for _, part := range p.Parts {
			text += part.Text
		}
		role := RoleAssistant
		if p.Role == string(RoleUser) {
			role = RoleUser
		}
		return Turn{Role: role, Text: text}, true
	}

	if p.Text != "" && p.Sender != "" {
		role := RoleAssistant
		if p.Sender == "user" {
			role = RoleUser
		}
		return Turn{Role: role, Text: p.Text}, true
	}

	return Turn{}, false
}

// WindowPayloads returns at most the last limit history entries, preserving
// order. Windowing happens on the raw wire entries, before any normalization,
// so malformed entries still occupy window slots. The input slice is never
// mutated.
func WindowPayloads(payloads []TurnPayload, limit int) []TurnPayload {
	if limit <= 0 || len(payloads) <= limit {
		return payloads
	}
	return payloads[len(payloads)-limit:]
}
