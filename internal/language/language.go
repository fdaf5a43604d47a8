// Package language classifies extracted document text into one of the
// languages the summarization endpoints are provisioned for.
package language

// Language is the two-way classification result.
type Language string

const (
	Arabic  Language = "arabic"
	English Language = "english"
)

// Arabic classification requires the Arabic share of letters to strictly
// exceed arabicRatioNum/arabicRatioDen.
const (
	arabicRatioNum = 3
	arabicRatioDen = 10
)

// Counts holds the letter tallies used by Classify.
type Counts struct {
	Arabic int
	Latin  int
}

// Letters returns the total count of recognized letters.
func (c Counts) Letters() int {
	return c.Arabic + c.Latin
}

// Count tallies runes in the Arabic block (U+0600 to U+06FF) and ASCII Latin letters.
func Count(text string) Counts {
	var c Counts
	for _, r := range text {
		switch {
		case isArabic(r):
			c.Arabic++
		case isLatin(r):
			c.Latin++
		}
	}
	return c
}

// HasLetters reports whether text contains at least one Latin or Arabic letter.
func HasLetters(text string) bool {
	for _, r := range text {
		if isArabic(r) || isLatin(r) {
			return true
		}
	}
	return false
}

// Classify returns Arabic when more than 30% of the letters in text are Arabic,
// and English otherwise, including when text has no letters at all.
func Classify(text string) Language {
	c := Count(text)
	if c.Letters() == 0 {
		return English
	}
	if c.Arabic*arabicRatioDen > c.Letters()*arabicRatioNum {
		return Arabic
	}
	return English
}

// Valid reports whether l is a known language.
func (l Language) Valid() bool {
	return l == Arabic || l == English
}

func isArabic(r rune) bool {
	return r >= 0x0600 && r <= 0x06FF
}

func isLatin(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}
