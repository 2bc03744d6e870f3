package nutrition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MealAnalysis is a nutrition estimate produced by the AI for a photo, a text
// description or a recipe suggestion. It is reviewed before being logged.
type MealAnalysis struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Note     string  `json:"note"`
}

// Entry turns a reviewed analysis into a log entry for day.
func (a MealAnalysis) Entry(day string, source Source) MealLogEntry {
	return MealLogEntry{
		Name:     a.Name,
		Calories: a.Calories,
		Protein:  a.Protein,
		Carbs:    a.Carbs,
		Fat:      a.Fat,
		Note:     a.Note,
		Source:   source,
		Date:     day,
	}
}

const unnamedMeal = "Unnamed meal"

// Accepted key spellings for each field, in lookup order.
var (
	nameKeys     = []string{"name", "item_name", "nome"}
	caloriesKeys = []string{"calories", "kcal", "calorie"}
	proteinKeys  = []string{"protein", "protein_g", "proteins", "proteine"}
	carbsKeys    = []string{"carbs", "carbs_g", "carbohydrates", "carboidrati"}
	fatKeys      = []string{"fat", "fat_g", "fats", "grassi"}
	noteKeys     = []string{"note", "notes", "nota"}
)

var (
	leadingNumber = regexp.MustCompile(`^-?\d+(?:[.,]\d+)?`)
	// groupedNumber matches thousands grouping such as "1,250" or "12,000.5".
	groupedNumber = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})+(?:\.\d+)?`)
)

// DecodeMealAnalysis reads an AI meal estimate. Numeric fields that are
// missing, null, unparsable or negative become 0; numeric strings such as
// "350 kcal" are accepted. It fails with ErrMalformedResponse when raw is not
// a JSON object and with ErrUnrecognized when the model reported nothing
// recognizable.
func DecodeMealAnalysis(raw []byte) (MealAnalysis, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return MealAnalysis{}, err
	}
	if strings.EqualFold(stringField(fields, "error"), "unrecognized") {
		return MealAnalysis{}, ErrUnrecognized
	}

	a := MealAnalysis{
		Name:     stringField(fields, nameKeys...),
		Calories: numberField(fields, caloriesKeys...),
		Protein:  numberField(fields, proteinKeys...),
		Carbs:    numberField(fields, carbsKeys...),
		Fat:      numberField(fields, fatKeys...),
		Note:     stringField(fields, noteKeys...),
	}
	if a.Name == "" {
		if a.Calories == 0 {
			return MealAnalysis{}, ErrUnrecognized
		}
		a.Name = unnamedMeal
	}
	return a, nil
}

// stripFences removes a Markdown code fence some models wrap JSON in.
func stripFences(raw []byte) []byte {
	s := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(s, []byte("```")) {
		return s
	}
	s = bytes.TrimPrefix(s, []byte("```"))
	if nl := bytes.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = bytes.TrimSuffix(bytes.TrimSpace(s), []byte("```"))
	return bytes.TrimSpace(s)
}

// decodeObject parses raw as a JSON object with lower-cased keys.
func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(stripFences(raw), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedResponse)
	}
	fields := make(map[string]json.RawMessage, len(obj))
	for k, v := range obj {
		fields[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return fields, nil
}

func lookup(fields map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

// stringField returns the first present key as a trimmed string. Scalars of
// other types are rendered as their JSON text.
func stringField(fields map[string]json.RawMessage, keys ...string) string {
	v, ok := lookup(fields, keys...)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	switch v[0] {
	case '{', '[':
		return ""
	}
	return strings.TrimSpace(string(v))
}

// numberField returns the first present key as a non-negative number, or 0.
func numberField(fields map[string]json.RawMessage, keys ...string) float64 {
	v, ok := lookup(fields, keys...)
	if !ok {
		return 0
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return clampNumber(f)
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0
	}
	return clampNumber(parseLeadingNumber(strings.TrimSpace(s)))
}

// parseLeadingNumber reads the number s starts with. A comma followed by
// exactly three digits is a thousands separator; any other comma is a
// decimal comma ("98,5").
func parseLeadingNumber(s string) float64 {
	if m := groupedNumber.FindString(s); m != "" {
		rest := s[len(m):]
		if rest == "" || rest[0] < '0' || rest[0] > '9' {
			f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
			if err == nil {
				return f
			}
		}
	}
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	return f
}

func clampNumber(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
