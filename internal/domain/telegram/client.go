package telegram

// Client sends plain-text messages to a Telegram chat.
// This keeps the application logic independent of the bot library.
type Client interface {
	SendText(chatID int64, text string) error
}
