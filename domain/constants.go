package domain

// Protocol limits and defaults shared by server and client.
const (
	DefaultHost = "localhost"
	DefaultPort = 12345

	// MaxMessageSize bounds any non-file frame on the wire.
	MaxMessageSize = 1 << 20 // 1 MiB

	// MaxFileSize bounds a file payload accepted for relay.
	MaxFileSize = 10 << 20 // 10 MiB

	ServerName = "SERVER"

	WelcomeMessage = "Welcome to ChatWave! Type /help for commands."
	GoodbyeMessage = "Thanks for using ChatWave!"
)

// Commands interpreted by the server. Anything else starting with a
// slash is answered with an error notice and never broadcast.
const (
	CommandUsers = "/users"
	CommandHelp  = "/help"
	CommandLeave = "/leave"
)

// HelpText is the static reply to /help.
const HelpText = "Available commands:\n" +
	"/users - List online users\n" +
	"/help - Show this help message\n" +
	"/leave - Leave the chat\n" +
	"\nTo send a file, use /sendfile <path> in the console client"
