package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/jobmatch/internal/jobboard"
)

//go:embed scores.schema.json
var scoresSchemaJSON string

var scoresSchema = mustLoadSchema(scoresSchemaJSON)

// scoreDocument mirrors the JSON object requested by the prompt.
type scoreDocument struct {
	Frontend          float64 `mapstructure:"frontend"`
	Backend           float64 `mapstructure:"backend"`
	Fullstack         float64 `mapstructure:"fullstack"`
	DataScience       float64 `mapstructure:"data-science"`
	DevOps            float64 `mapstructure:"devops"`
	ProductManagement float64 `mapstructure:"product-management"`
	Design            float64 `mapstructure:"design"`
	Marketing         float64 `mapstructure:"marketing"`
}

func mustLoadSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("load scores schema: %v", err))
	}
	return schema
}

// ParseScores turns a model response into a ScoreVector. Any response that is not a JSON object
// holding all eight numeric keys within [0,100] fails with ErrMalformedScoreJSON.
// Extra keys are ignored and fractional scores are rounded.
func ParseScores(raw string) (jobboard.ScoreVector, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return jobboard.ScoreVector{}, ErrEmptyResponse
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return jobboard.ScoreVector{}, fmt.Errorf("%w: %v", ErrMalformedScoreJSON, err)
	}
	if data == nil {
		return jobboard.ScoreVector{}, fmt.Errorf("%w: response is null", ErrMalformedScoreJSON)
	}

	result, err := scoresSchema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return jobboard.ScoreVector{}, fmt.Errorf("%w: %v", ErrMalformedScoreJSON, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return jobboard.ScoreVector{}, fmt.Errorf("%w: %s", ErrMalformedScoreJSON, strings.Join(problems, "; "))
	}

	var doc scoreDocument
	if err := mapstructure.Decode(data, &doc); err != nil {
		return jobboard.ScoreVector{}, fmt.Errorf("%w: %v", ErrMalformedScoreJSON, err)
	}

	return jobboard.ScoreVector{
		Frontend:          roundScore(doc.Frontend),
		Backend:           roundScore(doc.Backend),
		Fullstack:         roundScore(doc.Fullstack),
		DataScience:       roundScore(doc.DataScience),
		DevOps:            roundScore(doc.DevOps),
		ProductManagement: roundScore(doc.ProductManagement),
		Design:            roundScore(doc.Design),
		Marketing:         roundScore(doc.Marketing),
	}, nil
}

func roundScore(v float64) int {
	return int(math.Round(v))
}

// extractJSON strips markdown fences and any prose around the outermost object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		raw = raw[start : end+1]
	}
	return raw
}
