package model

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names reported by DetectCharset
const (
	CharsetUTF8        = "UTF-8"
	CharsetUTF16LE     = "UTF-16LE"
	CharsetUTF16BE     = "UTF-16BE"
	CharsetWindows1252 = "windows-1252"
	CharsetISO88591    = "ISO-8859-1"
)

// MinCharsetConfidence is the confidence below which detection falls back to UTF-8
const MinCharsetConfidence = 0.5

// utf16ZeroRatio is the share of zero bytes on one parity that marks BOM-less UTF-16
const utf16ZeroRatio = 0.4

// Detection is the result of charset detection over a byte prefix.
type Detection struct {
	Charset    string
	Confidence float64
	BOMLength  int
	// Fallback is set when the detected charset was replaced by UTF-8 with replacement
	Fallback bool
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectCharset guesses the character encoding of a bounded byte prefix.
// A guess below MinCharsetConfidence is replaced by UTF-8 with Fallback set.
func DetectCharset(prefix []byte) Detection {
	switch {
	case bytes.HasPrefix(prefix, bomUTF8):
		return Detection{Charset: CharsetUTF8, Confidence: 1, BOMLength: len(bomUTF8)}
	case bytes.HasPrefix(prefix, bomUTF16LE):
		return Detection{Charset: CharsetUTF16LE, Confidence: 1, BOMLength: len(bomUTF16LE)}
	case bytes.HasPrefix(prefix, bomUTF16BE):
		return Detection{Charset: CharsetUTF16BE, Confidence: 1, BOMLength: len(bomUTF16BE)}
	}

	d := guessCharset(prefix)
	if d.Confidence < MinCharsetConfidence {
		return Detection{Charset: CharsetUTF8, Confidence: d.Confidence, Fallback: true}
	}
	return d
}

func guessCharset(prefix []byte) Detection {
	if len(prefix) == 0 {
		return Detection{Charset: CharsetUTF8, Confidence: 1}
	}
	if cs, conf, ok := guessUTF16(prefix); ok {
		return Detection{Charset: cs, Confidence: conf}
	}
	if bytes.IndexByte(prefix, 0) >= 0 {
		// NUL bytes outside UTF-16 mean binary data
		return Detection{Charset: CharsetUTF8, Confidence: 0.1}
	}
	if utf8.Valid(trimPartialRune(prefix)) {
		return Detection{Charset: CharsetUTF8, Confidence: 1}
	}

	var c1, undefined int
	for _, b := range prefix {
		if b < 0x80 || b > 0x9F {
			continue
		}
		c1++
		switch b {
		case 0x81, 0x8D, 0x8F, 0x90, 0x9D:
			undefined++
		}
	}
	switch {
	case undefined > 0:
		return Detection{Charset: CharsetISO88591, Confidence: 0.3}
	case c1 > 0:
		return Detection{Charset: CharsetWindows1252, Confidence: 0.8}
	default:
		return Detection{Charset: CharsetISO88591, Confidence: 0.8}
	}
}

// guessUTF16 looks for ASCII text stored in 16-bit units, where every other byte is zero.
func guessUTF16(prefix []byte) (string, float64, bool) {
	pairs := len(prefix) / 2
	if pairs < 2 {
		return "", 0, false
	}
	var evenZero, oddZero int
	for i := 0; i+1 < len(prefix); i += 2 {
		if prefix[i] == 0 {
			evenZero++
		}
		if prefix[i+1] == 0 {
			oddZero++
		}
	}
	even := float64(evenZero) / float64(pairs)
	odd := float64(oddZero) / float64(pairs)
	switch {
	case odd >= utf16ZeroRatio && even < odd/4:
		return CharsetUTF16LE, odd, true
	case even >= utf16ZeroRatio && odd < even/4:
		return CharsetUTF16BE, even, true
	}
	return "", 0, false
}

// trimPartialRune drops an incomplete UTF-8 sequence cut off at the end of a prefix
func trimPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if c < utf8.RuneSelf {
			return b
		}
		if utf8.RuneStart(c) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			return b
		}
	}
	return b
}

// lookupEncoding returns the x/text encoding for a charset name
func lookupEncoding(charset string) (encoding.Encoding, error) {
	switch charset {
	case "", CharsetUTF8:
		return unicode.UTF8BOM, nil
	case CharsetUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case CharsetUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case CharsetWindows1252:
		return charmap.Windows1252, nil
	case CharsetISO88591:
		return charmap.ISO8859_1, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCharset, charset)
	}
	return enc, nil
}

// NewDecodingReader wraps r so that it yields UTF-8 text decoded from charset.
// A leading byte-order mark is consumed. Invalid sequences become U+FFFD.
func NewDecodingReader(r io.Reader, charset string) (io.Reader, error) {
	enc, err := lookupEncoding(charset)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// DecodeBytes decodes a byte sample from charset into a UTF-8 string
func DecodeBytes(b []byte, charset string) (string, error) {
	enc, err := lookupEncoding(charset)
	if err != nil {
		return "", err
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s sample: %w", charset, err)
	}
	return string(out), nil
}
