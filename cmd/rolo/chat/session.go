package chat

import "fmt"

// welcomeBanner is the first transcript entry of a session. The greeting
// line is part of the bot's long-standing contract text.
func welcomeBanner(contacts int) string {
	banner := "Welcome to the assistant bot!"
	switch contacts {
	case 0:
		banner += "\n\nThe book is empty. Try `add <name> <phone>` to create your first contact."
	case 1:
		banner += "\n\n1 contact loaded."
	default:
		banner += fmt.Sprintf("\n\n%d contacts loaded.", contacts)
	}
	banner += " Type `help` for the command list."
	return banner
}
