package tcg

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"

	errs "tcgscraper/pkg/errors"
	"tcgscraper/pkg/models"
)

// categoryTranslations maps the site's Japanese attribute labels to
// stable payload field names.
var categoryTranslations = map[string]string{
	"収録商品":    "set",
	"カードタイプ":  "card_type",
	"作品名":     "group",
	"参加ユニット":  "unit",
	"コスト":     "cost",
	"基本ハート":   "hearts",
	"ブレードハート": "blade_hearts",
	"ブレード":    "blades",
	"レアリティ":   "rarity",
	"カード番号":   "card_number",
	"スコア":     "score",
	"必要ハート":   "required_hearts",
	"特殊ハート":   "special_hearts",
}

var (
	expansionItemRe = regexp.MustCompile(`(?s)<a[^>]*class="[^"]*productsList-Item[^"]*"[^>]*>.*?</a>`)
	expansionHrefRe = regexp.MustCompile(`expansion=([\w-]+)`)
	itemTitleRe     = regexp.MustCompile(`(?s)<p[^>]*class="[^"]*item-Title[^"]*"[^>]*>(.*?)</p>`)

	cardItemRe = regexp.MustCompile(`<[^>]*class="[^"]*cardlist-Result_Item[^"]*"[^>]*>`)
	cardAttrRe = regexp.MustCompile(`\scard="([^"]+)"`)

	infoContainerRe = regexp.MustCompile(`(?s)<[^>]*class="[^"]*cardlist-Info[^"]*"[^>]*>.*`)
	infoHeadingRe   = regexp.MustCompile(`(?s)<p[^>]*class="[^"]*info-Heading[^"]*"[^>]*>(.*?)</p>`)
	infoImageRe     = regexp.MustCompile(`(?s)<[^>]*class="[^"]*info-Image[^"]*"[^>]*>.*?<img[^>]*\ssrc="([^"]+)"`)
	dlItemRe        = regexp.MustCompile(`(?s)<dl[^>]*class="[^"]*dl-Item[^"]*"[^>]*>(.*?)</dl>`)
	dtRe            = regexp.MustCompile(`(?s)<dt[^>]*>(.*?)</dt>`)
	ddRe            = regexp.MustCompile(`(?s)<dd[^>]*>(.*?)</dd>`)
	infoTextRe      = regexp.MustCompile(`(?s)<[^>]*class="[^"]*info-Text[^"]*"[^>]*>(.*?)</div>`)

	brRe     = regexp.MustCompile(`(?i)<br\s*/?>`)
	imgAltRe = regexp.MustCompile(`<img[^>]*\salt="([^"]*)"[^>]*>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// stripTags flattens an HTML fragment to plain text, keeping img alt
// text (the site renders icons like hearts and blades as images).
func stripTags(fragment string) string {
	s := imgAltRe.ReplaceAllString(fragment, " $1 ")
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// ParseExpansions extracts expansion codes and names from the card list page
func ParseExpansions(htmlContent string) []models.Expansion {
	var expansions []models.Expansion
	seen := make(map[models.ExpansionID]bool)

	for _, item := range expansionItemRe.FindAllString(htmlContent, -1) {
		href := expansionHrefRe.FindStringSubmatch(item)
		if href == nil {
			continue
		}
		code := models.ExpansionID(href[1])
		if seen[code] {
			continue
		}
		seen[code] = true

		name := "Unknown Expansion"
		if title := itemTitleRe.FindStringSubmatch(item); title != nil {
			name = stripTags(title[1])
		}
		expansions = append(expansions, models.Expansion{Code: code, Name: name})
	}

	return expansions
}

// ParseCardNumbers extracts card numbers from one page of search results
func ParseCardNumbers(htmlContent string) []models.CardID {
	var numbers []models.CardID
	for _, tag := range cardItemRe.FindAllString(htmlContent, -1) {
		if m := cardAttrRe.FindStringSubmatch(tag); m != nil {
			number := strings.TrimSpace(m[1])
			if number != "" {
				numbers = append(numbers, models.CardID(number))
			}
		}
	}
	return numbers
}

// ParseCardDetail extracts a card's attributes from its detail page and
// packs them into an opaque payload keyed by the composite key.
func ParseCardDetail(htmlContent string, expansion models.ExpansionID, number models.CardID, resolve func(string) string) (*models.CardRecord, error) {
	container := infoContainerRe.FindString(htmlContent)
	if container == "" {
		return nil, errs.New(errs.ErrorTypeParsing, "card details container not found")
	}

	payload := map[string]interface{}{
		"card_number": string(number),
	}

	if m := infoHeadingRe.FindStringSubmatch(container); m != nil {
		payload["name"] = stripTags(m[1])
	}

	if m := infoImageRe.FindStringSubmatch(container); m != nil {
		src := m[1]
		if resolve != nil {
			src = resolve(src)
		}
		payload["img_url"] = src
	}

	for _, dl := range dlItemRe.FindAllStringSubmatch(container, -1) {
		dt := dtRe.FindStringSubmatch(dl[1])
		dd := ddRe.FindStringSubmatch(dl[1])
		if dt == nil || dd == nil {
			continue
		}

		key := stripTags(dt[1])
		if translated, ok := categoryTranslations[key]; ok {
			key = translated
		}
		if value := stripTags(dd[1]); value != "" {
			payload[key] = value
		}
	}

	if m := infoTextRe.FindStringSubmatch(container); m != nil {
		if lines := parseInfoText(m[1]); len(lines) > 0 {
			payload["info_text"] = lines
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeParsing, "failed to encode card payload", err)
	}

	return &models.CardRecord{
		Expansion: expansion,
		Number:    number,
		Payload:   raw,
	}, nil
}

// parseInfoText splits the ability text block on <br> boundaries,
// flattening icon images into their alt text.
func parseInfoText(fragment string) []string {
	var lines []string
	for _, part := range brRe.Split(fragment, -1) {
		if line := stripTags(part); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
