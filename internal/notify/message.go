package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/mizutanik/refurbwatch/internal/match"
)

const stampLayout = "2006-01-02 15:04 MST"

// FoundMessage composes the success notification: one line per apparent
// listing, a link back to the storefront, and a timestamp in the target
// region's local time (the caller localizes `at`).
func FoundMessage(model, variant, pageURL string, matches []match.Result, at time.Time) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s spotted on the refurbished store (%d listing(s)):\n", model, variant, len(matches))
	for _, res := range matches {
		fmt.Fprintf(&b, "• %s — %s\n", res.Title, res.Price)
	}
	fmt.Fprintf(&b, "%s\n", pageURL)
	fmt.Fprintf(&b, "checked at %s", at.Format(stampLayout))

	return Message{
		Subject: fmt.Sprintf("%s %s in stock on the refurbished store", model, variant),
		Text:    b.String(),
	}
}

// ErrorMessage composes the failure notification with a UTC timestamp.
func ErrorMessage(pageURL string, runErr error, at time.Time) Message {
	text := fmt.Sprintf("refurbished store check failed: %v\n%s\nat %s",
		runErr, pageURL, at.UTC().Format(stampLayout))
	return Message{
		Subject: "refurbished store check failed",
		Text:    text,
	}
}
