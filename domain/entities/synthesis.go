package entities

// Resource is a project or voice listed by the synthesis collaborator.
type Resource struct {
	UUID string `json:"uuid"`
	Name string `json:"name,omitempty"`
}

// ClipRequest describes one synthesis request.
type ClipRequest struct {
	ProjectUUID  string
	VoiceUUID    string
	Body         string
	Title        string
	SampleRate   int
	OutputFormat string
	IsPublic     bool
	IsArchived   bool
}

// ClipItem is the created clip. Collaborator versions differ on which field
// carries the playable reference.
type ClipItem struct {
	AudioSrc string `json:"audio_src,omitempty"`
	Link     string `json:"link,omitempty"`
}

// ClipResponse is the collaborator's synthesis outcome.
type ClipResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Item    *ClipItem `json:"item,omitempty"`
}

// AudioReference extracts the playable audio URL from a clip response,
// trying the known field names in priority order. Empty when none is set.
func (r *ClipResponse) AudioReference() string {
	if r == nil || r.Item == nil {
		return ""
	}
	if r.Item.AudioSrc != "" {
		return r.Item.AudioSrc
	}
	return r.Item.Link
}
