package infobox

import "strings"

// fieldKind enumerates every infobox key the extractor understands.
// Anything else classifies as kindIgnored and is dropped without error.
type fieldKind int

const (
	kindIgnored fieldKind = iota
	kindImage
	kindImageText
	kindMonth
	kindYear
	kindEditor
	kindCoverArtist
	kindStoryTitle
	kindWriter
	kindPenciler
	kindInker
	kindLetterer
	kindColourist
	kindAdaptedFrom
	kindReprintOf
	kindReprintOfStory
	kindEvent
	kindStoryArc
	kindStoryLine
	kindOriginalPrice
	kindAppearing
)

// classifyKey splits an infobox key into its field kind and positional
// index. The index is the trailing digits of the key head (the part before
// the first underscore or space); keys without digits default to index 1
// with explicit=false so Editor can distinguish issue-level attribution.
func classifyKey(key string) (kind fieldKind, index int, explicit bool) {
	head := key
	if cut := strings.IndexAny(head, "_ "); cut >= 0 {
		head = head[:cut]
	}

	digits := 0
	for digits < len(head) {
		c := head[len(head)-1-digits]
		if c < '0' || c > '9' {
			break
		}
		digits++
	}
	name := head[:len(head)-digits]
	index = 1
	if digits > 0 {
		explicit = true
		index = 0
		for _, c := range head[len(head)-digits:] {
			index = index*10 + int(c-'0')
		}
	}

	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "image"):
		// Image keys bury their digits mid-head ("Image2Text"), so the
		// trailing-digit scan misses them.
		if !explicit {
			if n, ok := leadingInt(head[len("image"):]); ok {
				index, explicit = n, true
			}
		}
		switch {
		case strings.Contains(lower, "from"):
			kind = kindIgnored
		case strings.Contains(lower, "text"):
			kind = kindImageText
		default:
			kind = kindImage
		}
	case lower == "month":
		kind = kindMonth
	case lower == "year":
		kind = kindYear
	case lower == "editor":
		kind = kindEditor
	case lower == "coverartist":
		kind = kindCoverArtist
	case lower == "storytitle":
		kind = kindStoryTitle
	case lower == "writer":
		kind = kindWriter
	case strings.HasPrefix(lower, "pencil"):
		kind = kindPenciler
	case lower == "inker":
		kind = kindInker
	case lower == "letterer":
		kind = kindLetterer
	case strings.HasPrefix(lower, "colourist") || strings.HasPrefix(lower, "colorist"):
		kind = kindColourist
	case lower == "adaptedfrom":
		kind = kindAdaptedFrom
	case strings.HasPrefix(lower, "reprintof"):
		if strings.Contains(strings.ToLower(key), "story") {
			kind = kindReprintOfStory
		} else {
			kind = kindReprintOf
		}
	case lower == "event":
		kind = kindEvent
	case lower == "storyarc":
		kind = kindStoryArc
	case lower == "storyline":
		kind = kindStoryLine
	case lower == "originalprice":
		kind = kindOriginalPrice
	case lower == "appearing":
		kind = kindAppearing
	default:
		kind = kindIgnored
	}
	return kind, index, explicit
}

// leadingInt parses the digit run at the start of s.
func leadingInt(s string) (int, bool) {
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		n = n*10 + int(s[digits]-'0')
		digits++
	}
	return n, digits > 0
}
