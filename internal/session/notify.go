package session

import "github.com/gen2brain/beeep"

const notifyTitle = "vidgrab"

// DesktopNotify shows a system notification. Best effort; callers log the
// error and move on.
func DesktopNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}
