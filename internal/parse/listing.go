package parse

import (
	"regexp"
	"strings"
)

var (
	iconURLRe  = regexp.MustCompile(`"icon_url"\s*:\s*"([^"]+)"`)
	typeRe     = regexp.MustCompile(`"type"\s*:\s*"([^"]*)"`)
	rarityRe   = regexp.MustCompile(`(Consumer Grade|Industrial Grade|Mil-Spec Grade|Mil-Spec|Restricted|Classified|Covert|Contraband|Extraordinary|Base Grade|High Grade|Remarkable|Exotic)`)
	exteriorRe = regexp.MustCompile(`Exterior:\s*([^"<\\]+)`)
	stickersRe = regexp.MustCompile(`<br>\s*Stickers?:\s*([^<]+)<`)
	nameTagRe  = regexp.MustCompile(`Name Tag:\s*''(.+?)''`)
)

// SkinInfo is whatever could be scraped from a market listing page.
// Every field may be missing independently.
type SkinInfo struct {
	IconURL  *string
	Stickers []string
	NameTag  *string
	Wear     *string
	Rarity   *string
}

// SkinParser extracts SkinInfo from a market listing page.
// Listing pages change without notice; implementations must never fail hard.
type SkinParser interface {
	Parse(page []byte) SkinInfo
}

// RegexSkinParser scrapes listing pages with a fixed set of regular expressions.
type RegexSkinParser struct{}

// Parse implements SkinParser. The first match of each pattern wins.
func (RegexSkinParser) Parse(page []byte) SkinInfo {
	html := string(page)
	info := SkinInfo{Stickers: []string{}}

	if v := firstGroup(iconURLRe, html); v != "" {
		v = strings.ReplaceAll(v, `\/`, "/")
		info.IconURL = &v
	}
	for _, m := range typeRe.FindAllStringSubmatch(html, -1) {
		if r := rarityRe.FindString(m[1]); r != "" {
			info.Rarity = &r
			break
		}
	}
	if v := strings.TrimSpace(firstGroup(exteriorRe, html)); v != "" {
		info.Wear = &v
	}
	if v := firstGroup(nameTagRe, html); v != "" {
		info.NameTag = &v
	}
	if v := firstGroup(stickersRe, html); v != "" {
		for _, name := range strings.Split(v, ", ") {
			if name = strings.TrimSpace(name); name != "" {
				info.Stickers = append(info.Stickers, name)
			}
		}
	}

	return info
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
