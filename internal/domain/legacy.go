package domain

import (
	"encoding/json"
	"regexp"
	"strings"
)

const maxEncodingDepth = 3

var posPrefix = regexp.MustCompile(`^(\w+\.)\s*(.+)$`)

// storedDefinition accepts the key spellings found in older rows.
type storedDefinition struct {
	Pos          string `json:"pos"`
	PartOfSpeech string `json:"partOfSpeech"`
	Meaning      string `json:"meaning"`
	Definition   string `json:"definition"`
}

func (s storedDefinition) toDefinition() Definition {
	d := Definition{PartOfSpeech: s.Pos, Meaning: s.Meaning}
	if d.PartOfSpeech == "" {
		d.PartOfSpeech = s.PartOfSpeech
	}
	if d.Meaning == "" {
		d.Meaning = s.Definition
	}
	return d
}

// DecodeStored turns the stored definitions and pronunciation columns into
// their strict form. Rows written before the schema was enforced may hold
// plain text, a single object or double-encoded JSON; those are normalized
// and degraded is set so the caller can log it.
func DecodeStored(rawDefinitions, rawPronunciation string) (defs []Definition, pron Pronunciation, degraded bool) {
	defs, d1 := decodeDefinitions(rawDefinitions, 0)
	pron, d2 := decodePronunciation(rawPronunciation, 0)
	return defs, pron, d1 || d2
}

// EncodeDefinitions serializes definitions for storage.
func EncodeDefinitions(defs []Definition) (string, error) {
	if defs == nil {
		defs = []Definition{}
	}
	b, err := json.Marshal(defs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodePronunciation serializes pronunciation for storage.
func EncodePronunciation(p Pronunciation) (string, error) {
	if p == nil {
		p = Pronunciation{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeDefinitions(raw string, depth int) ([]Definition, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return []Definition{}, false
	}
	if depth < maxEncodingDepth {
		switch s[0] {
		case '[':
			var list []storedDefinition
			if err := json.Unmarshal([]byte(s), &list); err == nil {
				defs := make([]Definition, 0, len(list))
				for _, item := range list {
					defs = append(defs, item.toDefinition())
				}
				return defs, depth > 0
			}
		case '{':
			var one storedDefinition
			if err := json.Unmarshal([]byte(s), &one); err == nil {
				return []Definition{one.toDefinition()}, true
			}
		case '"':
			var inner string
			if err := json.Unmarshal([]byte(s), &inner); err == nil {
				defs, _ := decodeDefinitions(inner, depth+1)
				return defs, true
			}
		}
	}
	return []Definition{plainDefinition(s)}, true
}

func plainDefinition(s string) Definition {
	if m := posPrefix.FindStringSubmatch(s); m != nil {
		return Definition{PartOfSpeech: m[1], Meaning: m[2]}
	}
	return Definition{PartOfSpeech: "n.", Meaning: s}
}

func decodePronunciation(raw string, depth int) (Pronunciation, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "null" {
		return Pronunciation{}, false
	}
	if depth < maxEncodingDepth {
		switch s[0] {
		case '{':
			var m map[string]any
			if err := json.Unmarshal([]byte(s), &m); err == nil {
				p := make(Pronunciation, len(m))
				clean := depth == 0
				for k, v := range m {
					str, ok := v.(string)
					if !ok {
						clean = false
						continue
					}
					p[k] = str
				}
				return p, !clean
			}
		case '"':
			var inner string
			if err := json.Unmarshal([]byte(s), &inner); err == nil {
				p, _ := decodePronunciation(inner, depth+1)
				return p, true
			}
		}
	}
	return Pronunciation{AccentAmerican: s}, true
}
