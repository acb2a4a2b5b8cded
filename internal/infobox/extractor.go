package infobox

import (
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/comicdex/catalog-migrator/internal/comic"
)

// ErrNoInfobox reports a page body carrying no infobox fields at all.
var ErrNoInfobox = errors.New("infobox: page has no infobox")

// Extractor is the infobox parser. It consumes the raw markup lines of one
// page plus the series/number shell and produces a populated IssueDraft.
type Extractor struct {
	log *zap.Logger
}

// NewExtractor builds an Extractor. A nil logger is replaced with a no-op.
func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

// ExtractPage splits a raw page body into lines and extracts it.
func (e *Extractor) ExtractPage(shell comic.IssueShell, body []byte) (*comic.IssueDraft, error) {
	return e.Extract(shell, strings.Split(string(body), "\n"))
}

// Extract runs the line pass over one infobox. Unrecognized keys are
// ignored; there is no such thing as a fatal parse error, only a page with
// no infobox at all.
func (e *Extractor) Extract(shell comic.IssueShell, lines []string) (*comic.IssueDraft, error) {
	p := &parse{
		draft: &comic.IssueDraft{
			Number: shell.Number,
			Series: shell.Series,
			Edited: true,
		},
		stories: make(map[int]*comic.StoryDraft),
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		isField := strings.HasPrefix(line, "|") && strings.Contains(line, "=")
		if p.appearingStory > 0 && !isField {
			p.appearingLine(line)
			continue
		}
		if !isField {
			continue
		}
		p.appearingStory = 0

		key, value := splitField(line)
		p.dispatch(key, value)
	}

	if !p.fieldSeen {
		e.log.Debug("no infobox fields found",
			zap.String("series", shell.Series.Title),
			zap.String("number", shell.Number))
		return nil, ErrNoInfobox
	}

	p.draft.Stories = FillStoryGaps(p.stories)
	p.draft.Covers = AssembleVariants(p.slots)
	return p.draft, nil
}

// parse holds the mutable state of one line pass.
type parse struct {
	draft     *comic.IssueDraft
	stories   map[int]*comic.StoryDraft
	slots     []*comic.VariantDraft
	fieldSeen bool

	// appearingStory > 0 while inside an Appearing block; category is the
	// heading the next bullet lines classify under.
	appearingStory int
	category       string
}

func splitField(line string) (key, value string) {
	line = strings.TrimPrefix(line, "|")
	eq := strings.Index(line, "=")
	return strings.TrimSpace(line[:eq]), strings.TrimSpace(line[eq+1:])
}

// story returns the draft story at 1-based position, creating it on first
// reference. Stories created implicitly keep an empty title.
func (p *parse) story(pos int) *comic.StoryDraft {
	if pos < 1 {
		pos = 1
	}
	if st, ok := p.stories[pos]; ok {
		return st
	}
	st := &comic.StoryDraft{}
	p.stories[pos] = st
	return st
}

// slot returns the cover slot at the given index, growing the sparse slice
// as needed.
func (p *parse) slot(idx int) *comic.VariantDraft {
	if idx < 0 {
		idx = 0
	}
	for len(p.slots) <= idx {
		p.slots = append(p.slots, nil)
	}
	if p.slots[idx] == nil {
		p.slots[idx] = &comic.VariantDraft{}
	}
	return p.slots[idx]
}

func (p *parse) dispatch(key, value string) {
	p.fieldSeen = true
	kind, idx, explicit := classifyKey(key)
	if kind == kindIgnored {
		// Unrecognized keys are a fact of life in this dialect, not an error.
		return
	}

	switch kind {
	case kindImage:
		p.slot(idx - 1).ImageURL = value
	case kindImageText:
		p.slot(idx - 1).Label = cleanLabel(value)
	case kindMonth:
		p.draft.Released.Month = parseMonth(value)
	case kindYear:
		if year, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			p.draft.Released.Year = year
		}
	case kindEditor:
		if explicit && idx > 0 {
			st := p.story(idx)
			if !st.IsReprint() {
				st.AddRole(personName(value), comic.RoleEditor)
			}
		} else {
			p.draft.AddEditor(personName(value))
		}
	case kindCoverArtist:
		p.slot(0).AddArtist(personName(value), comic.RoleArtist)
	case kindStoryTitle:
		st := p.story(idx)
		if !st.IsReprint() {
			st.Title = trimQuotes(value)
		}
	case kindWriter:
		st := p.story(idx)
		if !st.IsReprint() {
			st.AddRole(personName(value), comic.RoleWriter)
		}
	case kindPenciler:
		p.story(idx).AddRole(personName(value), comic.RolePenciler)
	case kindInker:
		p.story(idx).AddRole(personName(value), comic.RoleInker)
	case kindLetterer:
		p.story(idx).AddRole(personName(value), comic.RoleLetterer)
	case kindColourist:
		p.story(idx).AddRole(personName(value), comic.RoleColourist)
	case kindAdaptedFrom:
		p.story(idx).AddRole(personName(value), comic.RoleOriginal)
	case kindReprintOf:
		if ref := parseReprintSource(value); ref != nil {
			st := p.story(idx)
			if st.Reprint != nil && st.Reprint.StoryTitle != "" {
				ref.StoryTitle = st.Reprint.StoryTitle
			}
			st.Reprint = ref
		}
	case kindReprintOfStory:
		st := p.story(idx)
		if st.Reprint == nil {
			st.Reprint = &comic.ReprintRef{Volume: 1}
		}
		st.Reprint.StoryTitle = trimQuotes(stripLinks(value))
	case kindEvent:
		p.draft.AddArc(comic.ArcRef{Title: arcTitle(value), Type: comic.ArcEvent})
	case kindStoryArc:
		p.draft.AddArc(comic.ArcRef{Title: arcTitle(value), Type: comic.ArcStoryArc})
	case kindStoryLine:
		p.draft.AddArc(comic.ArcRef{Title: arcTitle(value), Type: comic.ArcStoryLine})
	case kindOriginalPrice:
		p.draft.Currency, p.draft.Price = parsePrice(value)
	case kindAppearing:
		p.appearingStory = idx
		p.category = ""
	}
}

// appearingLine handles one line inside an Appearing block: bold lines set
// the current category heading, bullet lines contribute appearances.
func (p *parse) appearingLine(line string) {
	if heading, ok := boldText(line); ok {
		p.category = heading
		return
	}
	if !strings.HasPrefix(line, "*") {
		return
	}

	st := p.story(p.appearingStory)
	if st.IsReprint() {
		return
	}

	text := strings.TrimSpace(strings.TrimLeft(line, "* "))
	first := strings.Contains(text, "1st")

	candidates := linkTargets(text)
	if len(candidates) == 0 {
		candidates = []string{stripLinks(text)}
	}

	cls := ClassifyAppearance(p.category)
	for _, cand := range candidates {
		name := cleanName(cand)
		if name == "" {
			continue
		}
		st.AddAppearance(comic.AppearanceRef{
			Name:     name,
			Category: cls.Category,
			Role:     cls.Role,
			First:    first,
		})
	}
}

func personName(value string) string {
	if targets := linkTargets(value); len(targets) > 0 {
		return cleanName(targets[0])
	}
	return cleanName(value)
}

func arcTitle(value string) string {
	return strings.TrimSpace(stripLinks(value))
}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

func parseMonth(value string) int {
	value = strings.TrimSpace(value)
	if m, err := strconv.Atoi(value); err == nil && m >= 1 && m <= 12 {
		return m
	}
	lower := strings.ToLower(value)
	for i, name := range monthNames {
		if strings.HasPrefix(name, lower) && lower != "" {
			return i + 1
		}
	}
	return 0
}

// parsePrice splits a leading currency symbol off a price like "$0.12".
func parsePrice(value string) (currency string, price float64) {
	value = strings.TrimSpace(value)
	digit := strings.IndexFunc(value, func(r rune) bool {
		return r >= '0' && r <= '9'
	})
	if digit < 0 {
		return value, 0
	}
	currency = strings.TrimSpace(value[:digit])
	rest := value[digit:]
	if space := strings.IndexAny(rest, " \t"); space >= 0 {
		rest = rest[:space]
	}
	price, _ = strconv.ParseFloat(rest, 64)
	return currency, price
}
