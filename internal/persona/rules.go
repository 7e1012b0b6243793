package persona

import "regexp"

// keywordRule maps a set of trigger keywords to a canonical label. A
// chunk whose lower-cased content contains any trigger contributes the
// label. Triggers are plain substrings, matching the corpus vocabulary
// loosely on purpose; occasional keyword coincidence is tolerated.
type keywordRule struct {
	triggers []string
	label    string
}

// metricPattern matches quantified impact statements such as
// "60k+ users" or "1,500 hours".
var metricPattern = regexp.MustCompile(`\d+[k+]?\s*(engineers?|users?|hours?|products?)`)

const metricLabel = "Uses specific metrics and quantifiable impacts"

var communicationRules = []keywordRule{
	{
		triggers: []string{"platform", "horizontal", "extensible", "api", "service"},
		label:    "Demonstrates platform thinking and architectural mindset",
	},
	{
		triggers: []string{"team", "led", "managed", "mentored", "collaboration"},
		label:    "Shows collaborative leadership and team development focus",
	},
	{
		triggers: []string{"ai", "rag", "azure", "openai", "agentic", "llm"},
		label:    "Demonstrates deep AI and technical expertise",
	},
}

var expertiseRules = []keywordRule{
	{
		triggers: []string{"ai", "rag", "llm", "openai", "azure", "agentic"},
		label:    "AI/ML and RAG platforms",
	},
	{
		triggers: []string{"platform", "api", "service", "architecture"},
		label:    "Platform engineering and architecture",
	},
	{
		triggers: []string{"microsoft", "azure", "teams", ".net"},
		label:    "Microsoft ecosystem and Azure",
	},
	{
		triggers: []string{"team", "engineer", "developer", "productivity"},
		label:    "Engineering team leadership",
	},
	{
		triggers: []string{"ci/cd", "deployment", "devops", "pipeline"},
		label:    "DevOps and continuous deployment",
	},
}

var decisionRules = []keywordRule{
	{
		triggers: []string{"metric", "data", "measure", "quantify"},
		label:    "Data-driven and metrics-focused decision making",
	},
	{
		triggers: []string{"collaborate", "partner", "stakeholder", "team"},
		label:    "Collaborative and stakeholder-inclusive approach",
	},
	{
		triggers: []string{"user", "customer", "experience", "productivity"},
		label:    "User-centric and experience-focused",
	},
	{
		triggers: []string{"strategy", "roadmap", "vision", "long-term"},
		label:    "Strategic and long-term thinking",
	},
}

// detailContentThreshold is the minimum content length for the
// detail-oriented trait; short chunks cannot demonstrate thoroughness
// however many trigger words they contain.
const detailContentThreshold = 200

var detailRule = keywordRule{
	triggers: []string{"specific", "detail", "example"},
	label:    "Detail-oriented and thorough",
}

var traitRules = []keywordRule{
	{
		triggers: []string{"mission", "purpose", "goal", "impact"},
		label:    "Mission-driven and impact-focused",
	},
	{
		triggers: []string{"mentor", "promote", "support", "inclusive"},
		label:    "Inclusive and development-focused leader",
	},
	{
		triggers: []string{"innovation", "new", "advance", "cutting-edge"},
		label:    "Innovation-minded and forward-thinking",
	},
}
