package ws

const (
	// client - server
	MsgStart   = "start"
	MsgMission = "mission"
	MsgCard    = "card"
	MsgFinish  = "finish"

	// server - client
	MsgGame  = "game"
	MsgError = "error"
)
