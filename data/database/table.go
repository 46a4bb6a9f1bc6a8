package database

// 集合名统一在此维护，避免散落的字符串字面量
const (
	CollUsers         = "users"
	CollLobbies       = "lobbies"
	CollLobbyMembers  = "lobby_members"
	CollLobbyMessages = "lobby_messages"
	CollLobbyInvites  = "lobby_invites"
	CollNotifications = "notifications"
	CollMatches       = "matches"
)
