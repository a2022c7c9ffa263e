package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconBell   = "" // nf-fa-bell
	IconClock  = "" // nf-fa-clock_o
	IconLink   = "" // nf-fa-link
	IconDot    = "•"
	IconUnread = "●"
	IconRead   = "○"
)

// Printer line prefixes.
var (
	IconSuccess = "✔"
	IconInfo    = "ℹ"
	IconWarn    = "⚠"
	IconError   = "✘"
)
