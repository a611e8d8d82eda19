package domain

// ChatMessage is one line of the global chat room.
type ChatMessage struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Message  string `json:"message"`
}

// OutgoingChatMessage is what the client writes to the chat socket.
type OutgoingChatMessage struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}
