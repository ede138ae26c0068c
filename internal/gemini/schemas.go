package gemini

import "github.com/google/generative-ai-go/genai"

// Response schemas declared per structured call. The service is expected to
// honor these; ExtractJSON + strict unmarshal is the safety net when it
// decorates the payload anyway.

var profileSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"personality": {
			Type: genai.TypeString,
			Enum: []string{"ZEN", "BOLD", "PLAYFUL", "LUXE", "TECHY", "EARTHY", "RETRO"},
		},
		"interests": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"tone":      {Type: genai.TypeString},
		"pace":      {Type: genai.TypeInteger, Description: "1 (slow) to 5 (frantic)"},
	},
	Required: []string{"personality", "interests", "tone", "pace"},
}

var blueprintSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"strategy":       {Type: genai.TypeString},
		"visualMetaphor": {Type: genai.TypeString},
		"copyAngle":      {Type: genai.TypeString},
	},
	Required: []string{"strategy", "visualMetaphor", "copyAngle"},
}

var designSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"primaryColor":    {Type: genai.TypeString, Description: "CSS hex value"},
		"secondaryColor":  {Type: genai.TypeString},
		"accentColor":     {Type: genai.TypeString},
		"backgroundColor": {Type: genai.TypeString},
		"fontFamily":      {Type: genai.TypeString, Enum: []string{"sans", "serif", "mono"}},
		"borderRadius":    {Type: genai.TypeString},
		"spacing":         {Type: genai.TypeString, Enum: []string{"compact", "comfortable", "spacious"}},
	},
	Required: []string{"primaryColor", "secondaryColor", "accentColor", "backgroundColor", "fontFamily", "borderRadius", "spacing"},
}

var contentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"headline":    {Type: genai.TypeString},
		"subheadline": {Type: genai.TypeString},
		"ctaText":     {Type: genai.TypeString},
		"features": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":       {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
					"icon":        {Type: genai.TypeString, Description: "single emoji"},
				},
				Required: []string{"title", "description", "icon"},
			},
		},
		"concepts": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":      {Type: genai.TypeString},
					"function":  {Type: genai.TypeString},
					"aesthetic": {Type: genai.TypeString},
					"usp":       {Type: genai.TypeString},
				},
				Required: []string{"name", "function", "aesthetic", "usp"},
			},
		},
		"heroPrompt": {Type: genai.TypeString},
	},
	Required: []string{"headline", "subheadline", "ctaText", "features", "concepts", "heroPrompt"},
}

var experienceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"design":  designSchema,
		"content": contentSchema,
	},
	Required: []string{"design", "content"},
}

var verificationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"score":        {Type: genai.TypeInteger, Description: "0-100"},
		"aligned":      {Type: genai.TypeBoolean},
		"critique":     {Type: genai.TypeString},
		"suggestions":  {Type: genai.TypeString},
		"toneMismatch": {Type: genai.TypeBoolean},
		"visualClash":  {Type: genai.TypeBoolean},
		"paceFriction": {Type: genai.TypeBoolean},
	},
	Required: []string{"score", "aligned", "critique", "suggestions", "toneMismatch", "visualClash", "paceFriction"},
}

var driftSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"hasDrifted": {Type: genai.TypeBoolean},
		"newProfile": {
			Type:     genai.TypeObject,
			Nullable: true,
			Properties: map[string]*genai.Schema{
				"personality": {
					Type: genai.TypeString,
					Enum: []string{"ZEN", "BOLD", "PLAYFUL", "LUXE", "TECHY", "EARTHY", "RETRO"},
				},
				"interests": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"tone":      {Type: genai.TypeString},
				"pace":      {Type: genai.TypeInteger},
			},
		},
		"reasoning": {Type: genai.TypeString},
		"pattern":   {Type: genai.TypeString},
	},
	Required: []string{"hasDrifted", "reasoning", "pattern"},
}
