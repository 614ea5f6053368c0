package main

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// SPED exports come out of desktop accounting systems as cp1252 more often
// than not, so that is tried first. utf-8 comes next; latin-1 accepts any
// byte sequence and is the last resort.
var decodings = []struct {
	name   string
	decode func([]byte) (string, bool)
}{
	{"cp1252", decodeCP1252},
	{"utf-8", decodeUTF8},
	{"latin-1", decodeCharmap(charmap.ISO8859_1)},
}

// Bytes with no assignment in cp1252. A strict decoder rejects these.
var cp1252Undefined = map[byte]bool{
	0x81: true, 0x8d: true, 0x8f: true, 0x90: true, 0x9d: true,
}

func decodeCP1252(raw []byte) (string, bool) {
	for _, b := range raw {
		if cp1252Undefined[b] {
			return "", false
		}
	}
	return decodeCharmap(charmap.Windows1252)(raw)
}

func decodeUTF8(raw []byte) (string, bool) {
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

func decodeCharmap(cm *charmap.Charmap) func([]byte) (string, bool) {
	return func(raw []byte) (string, bool) {
		out, err := cm.NewDecoder().String(string(raw))
		if err != nil || strings.ContainsRune(out, utf8.RuneError) {
			return "", false
		}
		return out, true
	}
}

// readLines decodes a raw ledger export with the first encoding that accepts
// it and normalizes the text to trimmed, non-empty lines. A nil result means
// no encoding could decode the file.
func readLines(raw []byte) []string {
	for _, d := range decodings {
		text, ok := d.decode(raw)
		if !ok {
			continue
		}
		var lines []string
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimRight(line, " \t\r")
			if len(line) == 0 {
				continue
			}
			lines = append(lines, line)
		}
		return lines
	}
	return nil
}
