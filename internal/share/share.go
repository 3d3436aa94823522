// Package share renders entries as ready-to-post social text.
package share

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pbaille/soundbyte/internal/domain"
)

// DefaultSiteURL is linked from every share when no other site is configured
const DefaultSiteURL = "https://ulovemusic2023.github.io/soundbyte/"

const (
	hashtags       = "#SoundByte #TechIntel"
	fallbackRunes  = 100
	longLimitRunes = 400
)

// FirstSentence returns text up to and including the first sentence
// terminator (CJK or Latin). Without one, the first 100 runes are returned.
func FirstSentence(text string) string {
	for i, r := range text {
		if strings.ContainsRune("。！？.!?", r) {
			if i == 0 {
				break
			}
			return text[:i+len(string(r))]
		}
	}
	runes := []rune(text)
	if len(runes) > fallbackRunes {
		return string(runes[:fallbackRunes])
	}
	return text
}

// Truncate shortens text to at most limit runes, ending with "..." when cut
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// Post is the short form: title, first sentence, source and hashtags
func Post(e domain.Entry, siteURL string) string {
	return compose(e.Title, FirstSentence(e.Summary), site(siteURL))
}

// Long is the long form, carrying the summary trimmed to 400 runes
func Long(e domain.Entry, siteURL string) string {
	return compose(e.Title, Truncate(e.Summary, longLimitRunes), site(siteURL))
}

// IntentURL returns a tweet-intent link prefilled with the short form
func IntentURL(e domain.Entry, siteURL string) string {
	return "https://twitter.com/intent/tweet?text=" + url.QueryEscape(Post(e, siteURL))
}

// Link is the URL to share: the entry's own link when it has one
func Link(e domain.Entry, siteURL string) string {
	if e.URL != "" {
		return e.URL
	}
	return site(siteURL)
}

func compose(title, body, source string) string {
	return fmt.Sprintf("%s\n\n%s\n\nSource: %s\n\n%s", title, body, source, hashtags)
}

func site(s string) string {
	if s == "" {
		return DefaultSiteURL
	}
	return s
}
