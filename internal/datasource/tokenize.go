package datasource

import (
	"unicode"
	"unicode/utf16"
)

// Tokenize splits decoded text into maximal runs of alphanumeric
// characters, lowercased, with everything else treated as a
// separator. Grounded on original_source/tokenizer.h; the Go
// rendition works over runes instead of bytes so it degrades
// gracefully on any valid UTF-8 input, not just ASCII.
func Tokenize(text []rune) []string {
	var tokens []string
	var current []rune
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current = append(current, unicode.ToLower(r))
		} else if len(current) > 0 {
			tokens = append(tokens, string(current))
			current = current[:0]
		}
	}
	if len(current) > 0 {
		tokens = append(tokens, string(current))
	}
	return tokens
}

// DecodeBytes sniffs a UTF-16 byte-order mark and decodes accordingly
// (spec.md §6): "FF FE" -> UTF-16 little-endian, "FE FF" -> UTF-16
// big-endian, otherwise the bytes are treated as UTF-8/single-byte and
// decoded rune-by-rune. Grounded on
// original_source/prefixspan/corpus_miner.cpp's load_directory BOM
// handling.
func DecodeBytes(raw []byte) []rune {
	if len(raw) >= 2 && raw[0] == 0xFF && raw[1] == 0xFE {
		return decodeUTF16(raw[2:], false)
	}
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		return decodeUTF16(raw[2:], true)
	}
	return []rune(string(raw))
}

func decodeUTF16(raw []byte, bigEndian bool) []rune {
	n := len(raw) / 2
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		b0, b1 := raw[2*i], raw[2*i+1]
		if bigEndian {
			units[i] = uint16(b0)<<8 | uint16(b1)
		} else {
			units[i] = uint16(b1)<<8 | uint16(b0)
		}
	}
	return utf16.Decode(units)
}
