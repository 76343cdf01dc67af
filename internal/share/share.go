package share

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// PopupFeatures sizes the window a share intent opens in.
	PopupFeatures = "width=600,height=400"
	// CopiedResetAfter is how long the copy button stays in its copied state.
	CopiedResetAfter = 2 * time.Second
)

// Platform names a share destination.
type Platform string

const (
	Facebook Platform = "facebook"
	Twitter  Platform = "twitter"
	WhatsApp Platform = "whatsapp"
)

// Platforms lists destinations in display order.
var Platforms = []Platform{Facebook, Twitter, WhatsApp}

// Hashtags builds the three wedding hashtags from the couple's first names.
func Hashtags(bride, groom string, year int) []string {
	return []string{
		fmt.Sprintf("#%s%sWedding", bride, groom),
		fmt.Sprintf("#%sAnd%s", bride, groom),
		fmt.Sprintf("#%s%s%d", bride, groom, year),
	}
}

// HashtagText is what the copy button puts on the clipboard.
func HashtagText(tags []string) string {
	return strings.Join(tags, " ")
}

// Message is the text prefilled in every share composer.
func Message(bride, groom string) string {
	return fmt.Sprintf("Join us at %s & %s's Wedding!", bride, groom)
}

// Links returns the share-intent URL for each platform.
func Links(pageURL, bride, groom string) map[Platform]string {
	msg := Message(bride, groom)
	return map[Platform]string{
		Facebook: "https://www.facebook.com/sharer/sharer.php?u=" + encode(pageURL),
		Twitter:  "https://twitter.com/intent/tweet?url=" + encode(pageURL) + "&text=" + encode(msg),
		WhatsApp: "https://api.whatsapp.com/send?text=" + encode(msg+" "+pageURL),
	}
}

var componentUnescape = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encode escapes the way encodeURIComponent does.
func encode(s string) string {
	return componentUnescape.Replace(url.QueryEscape(s))
}
