// Package signal extracts structured dispatch records from raw chat lines.
package signal

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultKeyword is the dispatch marker the announcer bot prefixes every
// rescue announcement with.
const DefaultKeyword = "RATSIGNAL"

// DispatchSignal is the record extracted from one matched chat line.
// Immutable once parsed; discarded after route computation.
type DispatchSignal struct {
	CaseID            string // empty when the line carries no case number
	Commander         string
	DestinationSystem string
	Platform          string // PC / PS / Xbox, when announced
	Language          string
	Hint              *ProximityHint

	// Incomplete marks lines where the dispatch marker matched but no
	// destination system could be extracted. The caller decides whether
	// to surface it.
	Incomplete bool

	Raw string
}

// ProximityHint is the optional parenthesized reference clause, e.g.
// "(Neutron star 51 LY from Fuelum)".
type ProximityHint struct {
	StarType        string
	DistanceLY      float64
	Unit            string // LY or KLY as written
	ReferenceSystem string
}

// Parser recognizes dispatch lines carrying the configured marker keyword.
// The announcer identity check is the caller's responsibility.
type Parser struct {
	Keyword string
}

// New returns a parser for the default dispatch keyword.
func New() *Parser {
	return &Parser{Keyword: DefaultKeyword}
}

// Fields are located independently: the announcer bot has reordered them
// across versions and varies the punctuation between them.
var (
	// Segment separators: em/en dash with or without spaces, or a hyphen
	// surrounded by spaces. A bare hyphen is never a separator since system
	// and commander names contain them.
	segmentRe = regexp.MustCompile(`\s+-+\s+|\s*[\x{2013}\x{2014}]\s*`)

	caseRe     = regexp.MustCompile(`(?i)\bcase\s*[#:]*\s*([0-9]+)`)
	cmdrRe     = regexp.MustCompile(`(?i)^(?:CMDR|Commander)\s*:?\s*(.+)$`)
	systemRe   = regexp.MustCompile(`(?i)^System\s*:?\s*(.+)$`)
	languageRe = regexp.MustCompile(`(?i)^Language\s*:?\s*(.+)$`)
	platformRe = regexp.MustCompile(`(?i)\b(PC|PS4|PS5|PS|XB1|XB|Xbox)\b`)

	quotedRe = regexp.MustCompile(`"([^"]*)"|\x{201c}([^\x{201d}]*)\x{201d}`)
	hintRe   = regexp.MustCompile(`(?i)\(([^()]*?)\s+([0-9]+(?:\.[0-9]+)?)\s*(kly|ly)\s+from\s+([^)]+)\)`)
)

// Parse extracts a dispatch record from a chat line. It returns nil when
// the line does not carry the dispatch keyword at all — the common case
// for ordinary chat traffic, not an error. A signal with Incomplete set is
// returned when the keyword matched but no destination could be read.
func (p *Parser) Parse(line string) *DispatchSignal {
	keyword := p.Keyword
	if keyword == "" {
		keyword = DefaultKeyword
	}
	idx := strings.Index(strings.ToUpper(line), strings.ToUpper(keyword))
	if idx < 0 {
		return nil
	}
	rest := line[idx+len(keyword):]

	sig := &DispatchSignal{Raw: line}

	if m := caseRe.FindStringSubmatch(rest); m != nil {
		sig.CaseID = m[1]
	}

	segments := segmentRe.Split(rest, -1)
	for i, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if m := cmdrRe.FindStringSubmatch(seg); m != nil && sig.Commander == "" {
			sig.Commander = strings.TrimSpace(m[1])
			continue
		}
		if m := systemRe.FindStringSubmatch(seg); m != nil && sig.DestinationSystem == "" {
			sig.DestinationSystem, sig.Hint = extractSystem(m[1])
			continue
		}
		if m := languageRe.FindStringSubmatch(seg); m != nil && sig.Language == "" {
			sig.Language = strings.TrimSpace(m[1])
			continue
		}
		// Platform rides in the unlabeled head segment ("Case #3 PC ODY").
		if i == 0 {
			if m := platformRe.FindStringSubmatch(seg); m != nil {
				sig.Platform = m[1]
			}
		}
	}

	if sig.DestinationSystem == "" {
		sig.Incomplete = true
	}
	return sig
}

// extractSystem pulls the destination name out of the System field value.
// Quoted names are taken byte-for-byte between the quotes; unquoted names
// run to the end of the field, minus any trailing parenthesized clause.
// Names keep internal punctuation and unicode intact.
func extractSystem(val string) (string, *ProximityHint) {
	val = strings.TrimSpace(val)
	hint := parseHint(val)

	if m := quotedRe.FindStringSubmatch(val); m != nil {
		if m[1] != "" || strings.HasPrefix(strings.TrimSpace(val), `"`) {
			return m[1], hint
		}
		return m[2], hint
	}

	if i := strings.Index(val, "("); i >= 0 {
		val = val[:i]
	}
	return strings.TrimSpace(val), hint
}

// parseHint reads the "<star-type> <N> LY from <reference>" clause, if any.
func parseHint(val string) *ProximityHint {
	m := hintRe.FindStringSubmatch(val)
	if m == nil {
		return nil
	}
	dist, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return nil
	}
	return &ProximityHint{
		StarType:        strings.TrimSpace(m[1]),
		DistanceLY:      dist,
		Unit:            strings.ToUpper(m[3]),
		ReferenceSystem: strings.TrimSpace(m[4]),
	}
}
