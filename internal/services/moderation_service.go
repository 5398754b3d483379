package services

import (
	"regexp"
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"spam", "scam", "scammer", "phishing", "malware",
}

// ReservedNames cannot appear as a word in a display name.
var ReservedNames = []string{"admin", "administrator", "moderator", "support", "system", "official"}

// ModerationService screens user-chosen display names. Patterns are compiled once and
// read-only afterwards, so the service is safe for concurrent use.
type ModerationService struct {
	bannedWordRegexps []*regexp.Regexp
	reservedRegexps   []*regexp.Regexp
	urlPattern        *regexp.Regexp
	emailPattern      *regexp.Regexp
	phonePattern      *regexp.Regexp
	controlPattern    *regexp.Regexp
}

func NewModerationService() *ModerationService {
	ms := &ModerationService{
		bannedWordRegexps: make([]*regexp.Regexp, 0, len(BannedWords)),
	}
	for _, word := range BannedWords {
		ms.bannedWordRegexps = append(ms.bannedWordRegexps, wordPattern(word))
	}
	for _, word := range ReservedNames {
		ms.reservedRegexps = append(ms.reservedRegexps, wordPattern(word))
	}
	ms.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	ms.emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	ms.phonePattern = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`)
	ms.controlPattern = regexp.MustCompile(`[\p{Cc}\p{Cf}]`)
	return ms
}

// FilterContent reports whether text is acceptable and, if not, a machine-readable reason.
func (ms *ModerationService) FilterContent(text string) (bool, string) {
	if text == "" {
		return true, ""
	}
	if ms.controlPattern.MatchString(text) {
		return false, "invalid_characters"
	}
	for _, re := range ms.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	for _, re := range ms.reservedRegexps {
		if re.MatchString(text) {
			return false, "reserved_name"
		}
	}
	if ms.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if ms.emailPattern.MatchString(text) || ms.phonePattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if hasLongRun(text) {
		return false, "spam_detected"
	}
	return true, ""
}

func wordPattern(word string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
}

// hasLongRun reports five or more identical characters in a row.
func hasLongRun(text string) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= 5 {
			return true
		}
	}
	return false
}

func (ms *ModerationService) GetRejectionMessage(reason string) string {
	messages := map[string]string{
		"inappropriate_language":   "Display name contains inappropriate language.",
		"url_not_allowed":          "URLs and web links are not allowed in display names.",
		"contact_info_not_allowed": "Contact information is not allowed in display names.",
		"spam_detected":            "Display name appears to be spam.",
		"invalid_characters":       "Display name contains invalid characters.",
		"reserved_name":            "Display name uses a reserved word.",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "Display name does not meet our content guidelines."
}
