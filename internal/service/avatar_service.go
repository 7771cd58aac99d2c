package service

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

var avatarStyles = []string{
	"adventurer",
	"adventurer-neutral",
	"avataaars",
	"big-ears",
	"big-ears-neutral",
	"big-smile",
	"bottts",
	"croodles",
	"croodles-neutral",
	"fun-emoji",
	"icons",
	"identicon",
	"initials",
	"lorelei",
	"lorelei-neutral",
	"micah",
	"miniavs",
	"open-peeps",
	"personas",
	"pixel-art",
	"pixel-art-neutral",
	"shapes",
	"thumbs",
}

var colorSchemes = [][]string{
	{"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7"},
	{"#FD79A8", "#FDCB6E", "#6C5CE7", "#A29BFE", "#FD79A8"},
	{"#E17055", "#00B894", "#00CEC9", "#0984E3", "#A29BFE"},
	{"#FF7675", "#74B9FF", "#81ECEC", "#00B894", "#FDCB6E"},
	{"#E84393", "#00CEC9", "#6C5CE7", "#FD79A8", "#FDCB6E"},
}

var ethiopianColors = []string{
	"#228B22", // green
	"#FFD700", // gold
	"#DC143C", // red
	"#0066CC", // blue
	"#800080", // purple
}

const diceBearBase = "https://api.dicebear.com/7.x"

// AvatarService derives avatar attributes from an opaque user id. Every
// derivation hashes the id, so the same user always gets the same style,
// color, seed and initials with no stored state.
type AvatarService struct {
	allColors []string
}

// NewAvatarService creates a new AvatarService.
func NewAvatarService() *AvatarService {
	all := make([]string, 0, len(colorSchemes)*5+len(ethiopianColors))
	for _, scheme := range colorSchemes {
		all = append(all, scheme...)
	}
	all = append(all, ethiopianColors...)
	return &AvatarService{allColors: all}
}

// AvatarData describes a locally rendered avatar.
type AvatarData struct {
	Seed            string `json:"seed"`
	Style           string `json:"style"`
	BackgroundColor string `json:"background_color"`
	Initials        string `json:"initials"`
	AvatarType      string `json:"avatar_type"`
	URL             string `json:"url"`
}

// AvatarVariant is one option in a variant set.
type AvatarVariant struct {
	ID              int    `json:"id"`
	URL             string `json:"url"`
	Style           string `json:"style"`
	Seed            string `json:"seed"`
	BackgroundColor string `json:"background_color"`
}

// InitialsAvatar describes an initials-based avatar for client-side rendering.
type InitialsAvatar struct {
	Type            string `json:"type"`
	Initials        string `json:"initials"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	FontSize        string `json:"font_size"`
	FontWeight      string `json:"font_weight"`
	BorderRadius    string `json:"border_radius"`
}

// digestKey reduces an id to the leading 8 bytes of its MD5 digest as a
// big-endian integer. The modulo of this value selects from candidate lists.
func digestKey(id string) uint64 {
	sum := md5.Sum([]byte(id))
	return binary.BigEndian.Uint64(sum[:8])
}

// Styles returns the configured style set.
func (s *AvatarService) Styles() []string {
	return avatarStyles
}

// Seed returns the stable DiceBear seed for a user: the first 8 hex
// characters of the id's MD5 digest.
func (s *AvatarService) Seed(userID string) string {
	sum := md5.Sum([]byte(userID))
	return hex.EncodeToString(sum[:])[:8]
}

// Style returns the user's stable avatar style.
func (s *AvatarService) Style(userID string) string {
	return avatarStyles[digestKey(userID)%uint64(len(avatarStyles))]
}

// BackgroundColor returns the user's stable background color from the
// combined palette.
func (s *AvatarService) BackgroundColor(userID string) string {
	return s.allColors[digestKey(userID)%uint64(len(s.allColors))]
}

// Initials derives a stable A-Z letter pair from the user id.
func (s *AvatarService) Initials(userID string) string {
	key := digestKey(userID)
	first := rune('A' + key%26)
	second := rune('A' + (key/26)%26)
	return string(first) + string(second)
}

// AvatarURL builds a DiceBear avatar URL. An empty style selects the user's
// stable style.
func (s *AvatarService) AvatarURL(userID, style string) string {
	if style == "" {
		style = s.Style(userID)
	}
	return fmt.Sprintf("%s/%s/svg?seed=%s", diceBearBase, style, s.Seed(userID))
}

// AvatarData assembles the full local avatar description for a user.
func (s *AvatarService) AvatarData(userID string) AvatarData {
	return AvatarData{
		Seed:            s.Seed(userID),
		Style:           s.Style(userID),
		BackgroundColor: s.BackgroundColor(userID),
		Initials:        s.Initials(userID),
		AvatarType:      "generated",
		URL:             s.AvatarURL(userID, ""),
	}
}

// Variants returns count avatar options. Each variant derives from the base
// seed plus its index, so the set is stable per user.
func (s *AvatarService) Variants(userID string, count int) []AvatarVariant {
	if count <= 0 {
		count = 5
	}
	baseSeed := s.Seed(userID)

	variants := make([]AvatarVariant, 0, count)
	for i := 0; i < count; i++ {
		variantSeed := fmt.Sprintf("%s_%d", baseSeed, i)
		key := digestKey(variantSeed)
		style := avatarStyles[key%uint64(len(avatarStyles))]
		variants = append(variants, AvatarVariant{
			ID:              i,
			URL:             fmt.Sprintf("%s/%s/svg?seed=%s", diceBearBase, style, variantSeed),
			Style:           style,
			Seed:            variantSeed,
			BackgroundColor: ethiopianColors[key%uint64(len(ethiopianColors))],
		})
	}
	return variants
}

// InitialsAvatar builds an initials avatar from a display name, falling back
// to derived initials when the name is empty.
func (s *AvatarService) InitialsAvatar(name, userID string) InitialsAvatar {
	bg := s.BackgroundColor(userID)
	return InitialsAvatar{
		Type:            "initials",
		Initials:        extractInitials(name),
		BackgroundColor: bg,
		TextColor:       contrastingColor(bg),
		FontSize:        "24px",
		FontWeight:      "bold",
		BorderRadius:    "50%",
	}
}

// SVGAvatar renders an inline SVG circle avatar with initials. When name is
// empty the initials derive from the user id.
func (s *AvatarService) SVGAvatar(userID, name string) string {
	initials := s.Initials(userID)
	if name != "" {
		initials = extractInitials(name)
	}
	bg := s.BackgroundColor(userID)
	text := contrastingColor(bg)

	return fmt.Sprintf(`<svg width="100" height="100" xmlns="http://www.w3.org/2000/svg">
  <circle cx="50" cy="50" r="50" fill="%s"/>
  <text x="50" y="50" font-family="Arial, sans-serif" font-size="36" font-weight="bold" text-anchor="middle" dy="0.35em" fill="%s">%s</text>
</svg>`, bg, text, initials)
}

// EthiopianAvatarURL builds a DiceBear URL restricted to a small style set
// with an Ethiopian flag background color.
func (s *AvatarService) EthiopianAvatarURL(userID string) string {
	styles := []string{"adventurer", "lorelei", "micah", "personas"}
	backgrounds := []string{"green", "yellow", "red"}

	key := digestKey(userID)
	style := styles[key%uint64(len(styles))]
	bg := backgrounds[key%uint64(len(backgrounds))]

	return fmt.Sprintf("%s/%s/svg?seed=%s&backgroundColor=%s", diceBearBase, style, s.Seed(userID), bg)
}

// extractInitials takes up to two letters from a display name: first letters
// of the first and last words, or the first two characters of a single word.
func extractInitials(name string) string {
	words := strings.Fields(strings.TrimSpace(name))
	if len(words) == 0 {
		return "??"
	}
	if len(words) == 1 {
		runes := []rune(words[0])
		if len(runes) > 2 {
			runes = runes[:2]
		}
		return strings.ToUpper(string(runes))
	}
	first := []rune(words[0])
	last := []rune(words[len(words)-1])
	return strings.ToUpper(string(first[0]) + string(last[0]))
}

func contrastingColor(background string) string {
	switch background {
	case "#228B22", "#DC143C", "#800080", "#0066CC":
		return "#FFFFFF"
	default:
		return "#333333"
	}
}
