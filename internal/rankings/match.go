package rankings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Match is one validated candidate entry of a stored ranking.
type Match struct {
	Rank            string           `json:"rank"`
	FileName        string           `json:"file_name"`
	OverallMatch    string           `json:"overall_match"`
	Weights         MatchWeights     `json:"weights"`
	MatchingDetails *MatchingDetails `json:"matching_details,omitempty"`
}

// MatchWeights are percentage strings per category.
type MatchWeights struct {
	Experience     string `json:"experience_weight"`
	Skills         string `json:"skills_weight"`
	Education      string `json:"education_weight"`
	Certifications string `json:"certifications_weight"`
}

// MatchingDetails lists supporting evidence per category.
type MatchingDetails struct {
	Experience     []string `json:"experience,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Education      []string `json:"education,omitempty"`
	Certifications []string `json:"certifications,omitempty"`
}

const matchSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["rank", "file_name", "overall_match", "weights"],
  "properties": {
    "rank": {"type": "string"},
    "file_name": {"type": "string", "minLength": 1},
    "overall_match": {"type": "string"},
    "weights": {
      "type": "object",
      "required": ["experience_weight", "skills_weight", "education_weight", "certifications_weight"],
      "properties": {
        "experience_weight": {"type": "string"},
        "skills_weight": {"type": "string"},
        "education_weight": {"type": "string"},
        "certifications_weight": {"type": "string"}
      }
    },
    "matching_details": {
      "type": "object",
      "properties": {
        "experience": {"type": "array", "items": {"type": "string"}},
        "skills": {"type": "array", "items": {"type": "string"}},
        "education": {"type": "array", "items": {"type": "string"}},
        "certifications": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(matchSchema))
})

// InvalidElement describes a dropped ranking element.
type InvalidElement struct {
	Index    int
	Problems []string
}

// ParseMatches decodes a stored payload. A payload that is not a JSON array
// yields no matches; elements failing the schema are returned as invalid.
func ParseMatches(payload []byte) ([]Match, []InvalidElement, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []Match{}, nil, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return []Match{}, nil, nil
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, nil, fmt.Errorf("compile match schema: %w", err)
	}

	matches := make([]Match, 0, len(elems))
	var invalid []InvalidElement
	for i, raw := range elems {
		result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			invalid = append(invalid, InvalidElement{Index: i, Problems: []string{err.Error()}})
			continue
		}
		if !result.Valid() {
			problems := make([]string, 0, len(result.Errors()))
			for _, desc := range result.Errors() {
				problems = append(problems, desc.String())
			}
			invalid = append(invalid, InvalidElement{Index: i, Problems: problems})
			continue
		}
		var m Match
		if err := json.Unmarshal(raw, &m); err != nil {
			invalid = append(invalid, InvalidElement{Index: i, Problems: []string{err.Error()}})
			continue
		}
		matches = append(matches, m)
	}
	return matches, invalid, nil
}

// Percent parses strings such as "82%" or "82.5" into a number; bad input is 0.
func Percent(s string) float64 {
	var f float64
	if _, err := fmt.Sscanf(strings.TrimSuffix(strings.TrimSpace(s), "%"), "%g", &f); err != nil {
		return 0
	}
	return f
}
