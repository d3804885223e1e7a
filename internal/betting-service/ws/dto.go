package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket.
// O feed é por usuário, então só "ping" tem efeito.
type ClientMsg struct {
	Type string `json:"type"` // ping
}
