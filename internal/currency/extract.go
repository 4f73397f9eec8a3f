package currency

import (
	"iter"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	dollarSign = '$'
	rielSign   = '៛'

	maxUSDFraction = 2
)

// Longer forms first so "dollars" wins over "dollar".
var (
	usdWords = []string{"dollars", "dollar", "usd"}
	khrWords = []string{"riels", "riel", "khr"}

	// Payment keywords that imply USD when a bare number follows them.
	paymentKeywords = []string{"transferred", "transfer", "received", "paid", "sent"}
)

// Extract yields every amount recognized in text, ordered by the position of
// the numeric token. The sequence is lazy and may be iterated any number of
// times; each iteration rescans text.
//
// Keyword inference is a whole-text fallback, not a per-token one: a single
// amount bound to a currency sign or word anywhere in text disables it, so
// "paid 25 and $5 tip" yields only $5. Keyword-inferred USD amounts ("paid
// 25") are reported only when nothing in the text is explicitly marked.
// A token touching both signs is USD. Malformed tokens are skipped.
func Extract(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		s := &scanner{text: text}
		marked := false
		for sp := range s.tokens() {
			m, c := s.classify(sp)
			if c != classMarked {
				continue
			}
			marked = true
			if !yield(m) {
				return
			}
		}
		if marked {
			return
		}

		for sp := range s.tokens() {
			m, c := s.classify(sp)
			if c != classKeyword {
				continue
			}
			if !yield(m) {
				return
			}
		}
	}
}

// ExtractAll collects Extract into a slice.
func ExtractAll(text string) []Match {
	return slices.Collect(Extract(text))
}

type class int

const (
	classNone class = iota
	classMalformed
	classMarked
	classKeyword
)

type span struct {
	start, end int
}

type scanner struct {
	text string
	// byte offsets of signs and words already bound to a token
	used map[int]bool
}

// tokens yields maximal runs of digits, allowing "," and "." only when a
// digit follows, so trailing sentence punctuation is left out.
func (s *scanner) tokens() iter.Seq[span] {
	return func(yield func(span) bool) {
		t := s.text
		i := 0
		for i < len(t) {
			if !isDigit(t[i]) {
				i++
				continue
			}
			start := i
			for i < len(t) {
				if isDigit(t[i]) {
					i++
					continue
				}
				if (t[i] == ',' || t[i] == '.') && i+1 < len(t) && isDigit(t[i+1]) {
					i++
					continue
				}
				break
			}
			if !yield(span{start: start, end: i}) {
				return
			}
		}
	}
}

func (s *scanner) classify(sp span) (Match, class) {
	raw := s.text[sp.start:sp.end]

	kind, pos, ok := s.symbolMarker(sp)
	marker := MarkerSymbol
	if !ok {
		kind, pos, ok = s.wordMarker(sp)
		marker = MarkerWord
	}
	if ok {
		amount, valid := parseAmount(raw, kind)
		if !valid {
			return Match{}, classMalformed
		}
		s.use(pos)
		return Match{Kind: kind, Amount: amount, Marker: marker, Start: sp.start, End: sp.end, Raw: raw}, classMarked
	}

	if s.keywordBefore(sp.start) {
		amount, valid := parseAmount(raw, USD)
		if !valid {
			return Match{}, classMalformed
		}
		return Match{Kind: USD, Amount: amount, Marker: MarkerKeyword, Start: sp.start, End: sp.end, Raw: raw}, classKeyword
	}
	return Match{}, classNone
}

func (s *scanner) use(pos int) {
	if s.used == nil {
		s.used = make(map[int]bool)
	}
	s.used[pos] = true
}

type candidate struct {
	kind Kind
	pos  int
}

func pick(cands []candidate) (Kind, int, bool) {
	for _, c := range cands {
		if c.kind == USD {
			return c.kind, c.pos, true
		}
	}
	if len(cands) > 0 {
		return cands[0].kind, cands[0].pos, true
	}
	return 0, 0, false
}

func symbolKind(r rune) (Kind, bool) {
	switch r {
	case dollarSign:
		return USD, true
	case rielSign:
		return KHR, true
	}
	return 0, false
}

// symbolMarker looks for a currency sign directly before or after the token.
func (s *scanner) symbolMarker(sp span) (Kind, int, bool) {
	var cands []candidate
	if r, size := utf8.DecodeLastRuneInString(s.text[:sp.start]); size > 0 {
		pos := sp.start - size
		if k, ok := symbolKind(r); ok && !s.used[pos] {
			cands = append(cands, candidate{kind: k, pos: pos})
		}
	}
	if r, size := utf8.DecodeRuneInString(s.text[sp.end:]); size > 0 {
		if k, ok := symbolKind(r); ok && !s.used[sp.end] {
			cands = append(cands, candidate{kind: k, pos: sp.end})
		}
	}
	return pick(cands)
}

// wordMarker looks for a currency word before or after the token, separated
// by optional blanks.
func (s *scanner) wordMarker(sp span) (Kind, int, bool) {
	var cands []candidate
	before := strings.TrimRight(s.text[:sp.start], " \t")
	after := strings.TrimLeft(s.text[sp.end:], " \t")
	afterPos := len(s.text) - len(after)

	for _, group := range []struct {
		kind  Kind
		words []string
	}{{USD, usdWords}, {KHR, khrWords}} {
		if pos, ok := wordEndingAt(before, group.words); ok && !s.used[pos] {
			cands = append(cands, candidate{kind: group.kind, pos: pos})
		}
		if wordStarting(after, group.words) && !s.used[afterPos] {
			cands = append(cands, candidate{kind: group.kind, pos: afterPos})
		}
	}
	return pick(cands)
}

func (s *scanner) keywordBefore(start int) bool {
	before := strings.TrimRight(s.text[:start], " \t:")
	_, ok := wordEndingAt(before, paymentKeywords)
	return ok
}

// wordEndingAt reports whether text ends with one of words (case-insensitive)
// on a word boundary, returning the byte offset where the word starts.
func wordEndingAt(text string, words []string) (int, bool) {
	for _, w := range words {
		if len(text) < len(w) {
			continue
		}
		pos := len(text) - len(w)
		if !strings.EqualFold(text[pos:], w) {
			continue
		}
		if r, size := utf8.DecodeLastRuneInString(text[:pos]); size > 0 && unicode.IsLetter(r) {
			continue
		}
		return pos, true
	}
	return 0, false
}

// wordStarting reports whether text starts with one of words
// (case-insensitive) on a word boundary.
func wordStarting(text string, words []string) bool {
	for _, w := range words {
		if len(text) < len(w) || !strings.EqualFold(text[:len(w)], w) {
			continue
		}
		if r, size := utf8.DecodeRuneInString(text[len(w):]); size > 0 && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			continue
		}
		return true
	}
	return false
}

// parseAmount validates thousands grouping and the fraction length allowed
// for kind, then parses the token with separators stripped.
func parseAmount(raw string, kind Kind) (decimal.Decimal, bool) {
	intPart, frac, hasFrac := strings.Cut(raw, ".")
	if strings.Contains(frac, ".") || strings.Contains(frac, ",") {
		return decimal.Decimal{}, false
	}
	if hasFrac && kind == USD && len(frac) > maxUSDFraction {
		return decimal.Decimal{}, false
	}
	if strings.Contains(intPart, ",") {
		groups := strings.Split(intPart, ",")
		if len(groups[0]) == 0 || len(groups[0]) > 3 {
			return decimal.Decimal{}, false
		}
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return decimal.Decimal{}, false
			}
		}
		intPart = strings.ReplaceAll(intPart, ",", "")
	}

	clean := intPart
	if hasFrac {
		clean += "." + frac
	}
	amount, err := decimal.NewFromString(clean)
	if err != nil || amount.IsNegative() {
		return decimal.Decimal{}, false
	}
	return amount, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
