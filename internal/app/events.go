package app

// Wire event types exchanged over a signaling connection. Inbound and
// outbound share one JSON envelope keyed by "type".
const (
	EventJoinRoom          = "join-room"
	EventParticipantJoined = "participant-joined"
	EventSendMessage       = "send-message"
	EventMessage           = "message"
	EventParticipantLeft   = "participant-left"
)

type JoinRoom struct {
	Type          string `json:"type"`
	RoomID        string `json:"roomId"`
	ParticipantID string `json:"participantId"`
	DisplayName   string `json:"displayName"`
}

type SendMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type participantJoined struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
	DisplayName   string `json:"displayName"`
}

type participantLeft struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
	DisplayName   string `json:"displayName"`
}

type chatMessage struct {
	Type              string `json:"type"`
	Text              string `json:"text"`
	SenderDisplayName string `json:"senderDisplayName"`
}
