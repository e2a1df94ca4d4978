package gateway

// System prompts. The framework language (conflict types, germ layers,
// tracks) follows German New Medicine terminology because that is what the
// product's report and timeline vocabulary is built on.

const categorizeSystemPrompt = `You are an expert in German New Medicine (GNM).
Given a single biographical conflict event, classify it. Return:
- conflictType: the GNM conflict type (e.g. separation conflict, territorial loss, self-devaluation)
- germLayer: the embryonic germ layer involved (ectoderm, old mesoderm, new mesoderm, endoderm)
- healingSymptoms: the symptoms expected in the healing phase
- gnmExplanation: a short explanation connecting the event, the feelings and the body location to the biological program`

const tracksSystemPrompt = `You are an expert in German New Medicine. You are given
a person's full list of conflict events and the length of their repeating life
cycle in years. Identify "tracks": recurring themes connecting events, especially
events that share the same cycle age (position within the repeating cycle).
Every track must reference the exact ids of its related events.`

const predictSystemPrompt = `You are an expert in German New Medicine. Given the
identified tracks and the event list, write a concise forward-looking analysis:
which ages and situations are likely to re-trigger each track in the next cycle,
and what early signs to watch for. Write directly to the person as "you".`

const scanSystemPrompt = `You read scanned personal-history documents (journal
pages, questionnaires, typed notes) and extract a conflict timeline. Return the
anchor (the event when independent life began, with the age at that time) and
every distinct conflict event with age, date, description, involved people,
feelings and affected body location. Leave unknown text fields empty. When
existing timeline data is provided, return only events found in the document
that are not already in it; never repeat an existing event. Only return an
anchor when none is provided.`

const reportSystemPrompt = `You are an expert GNM practitioner writing a full
"Biological Code" analysis and resolution protocol from a person's conflict
timeline and track analysis. Be specific: reference actual events, ages and
tracks. Fill every section; use empty strings or empty arrays when a section
truly has no content.`

const insightSystemPrompt = `You are an interactive GNM diagnostician. You are
given a person's complete timeline data and track analysis as JSON. Answer
their question directly and concretely, referencing their actual events and
tracks. Keep answers under 300 words.`

const summarySystemPrompt = `Summarize the following mentoring conversation in
under 200 words, preserving: the person's current concerns, any active guided
protocol or treatment, commitments made, and emotional state. Write it as a
briefing for the mentor to continue the conversation seamlessly.`

const resetScriptSystemPrompt = `You write short guided "biological code reset"
scripts: a calm, second-person relaxation script (about 250 words) that walks
the person from the tracked symptom back to its originating conflict and
through a resolution visualization. Use their actual timeline context.`

const reframeSystemPrompt = `You write a short thought-reframing exercise for a
tracked symptom: name the automatic thought the symptom provokes, offer a GNM
understanding of what the body is doing, and give one concrete reframed
thought to practice. Under 150 words.`

const awarenessSystemPrompt = `You are generating a Self-Awareness Protocol from
a person's timeline, track analysis and full report. Identify the single
highest-leverage recurring pattern, quantify what it costs them, and build the
identity-shift protocol. End with a disclaimer that this is educational
content, not medical advice.`

const notebookInsightSystemPrompt = `You are reviewing a person's symptom
notebook: entries with initial and current severity ratings over time. Point
out genuine trends (improving, worsening, plateaued), connect them to the
tracks they tagged, and suggest what to log next. Under 200 words, plain text.`

// mentorSystemPrompt is assembled per request in operations.go because it
// embeds the personality preset, the report and the protocol state.

// Structured output schemas, in the provider wire format.

var categorizationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"conflictType":    map[string]any{"type": "string"},
		"germLayer":       map[string]any{"type": "string"},
		"healingSymptoms": map[string]any{"type": "string"},
		"gnmExplanation":  map[string]any{"type": "string"},
	},
	"required":             []string{"conflictType", "germLayer", "healingSymptoms", "gnmExplanation"},
	"additionalProperties": false,
}

var tracksSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"tracks": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"theme":           map[string]any{"type": "string"},
					"description":     map[string]any{"type": "string"},
					"relatedEventIds": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"affectedOrgans":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required":             []string{"theme", "description", "relatedEventIds", "affectedOrgans"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"tracks"},
	"additionalProperties": false,
}

var scannedTimelineSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"initialAnchor": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"age":         map[string]any{"type": "integer"},
				"date":        map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
			},
			"required":             []string{"age", "date", "description"},
			"additionalProperties": false,
		},
		"events": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"age":          map[string]any{"type": "integer"},
					"date":         map[string]any{"type": "string"},
					"description":  map[string]any{"type": "string"},
					"characters":   map[string]any{"type": "string"},
					"feelings":     map[string]any{"type": "string"},
					"bodyLocation": map[string]any{"type": "string"},
				},
				"required":             []string{"age", "date", "description", "characters", "feelings", "bodyLocation"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"initialAnchor", "events"},
	"additionalProperties": false,
}

var reportSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"caseSummary": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"caseDetails": map[string]any{"type": "string"},
				"symptoms":    map[string]any{"type": "string"},
			},
			"required":             []string{"caseDetails", "symptoms"},
			"additionalProperties": false,
		},
		"timelineAnalysis": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"ageEvent":          map[string]any{"type": "string"},
					"phase":             map[string]any{"type": "string"},
					"conflictType":      map[string]any{"type": "string"},
					"biologicalPurpose": map[string]any{"type": "string"},
					"trackIdentified":   map[string]any{"type": "string"},
				},
				"required":             []string{"ageEvent", "phase", "conflictType", "biologicalPurpose", "trackIdentified"},
				"additionalProperties": false,
			},
		},
		"conflictMapping": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"primaryConflicts":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"secondaryConflicts": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required":             []string{"primaryConflicts", "secondaryConflicts"},
			"additionalProperties": false,
		},
		"advancedTriggerReasoning": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"symptom":           map[string]any{"type": "string"},
					"biologicalPurpose": map[string]any{"type": "string"},
					"triggers":          map[string]any{"type": "string"},
				},
				"required":             []string{"symptom", "biologicalPurpose", "triggers"},
				"additionalProperties": false,
			},
		},
		"spiritualComponent": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"denial":      map[string]any{"type": "string"},
				"affirmation": map[string]any{"type": "string"},
			},
			"required":             []string{"denial", "affirmation"},
			"additionalProperties": false,
		},
		"actionProtocol": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"gnmCommands":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"trackNeutralization": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"nutritionalSupport":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required":             []string{"gnmCommands", "trackNeutralization", "nutritionalSupport"},
			"additionalProperties": false,
		},
		"expectedHealingPhase": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"finalAnchor":          map[string]any{"type": "string"},
		"nextSteps":            map[string]any{"type": "string"},
	},
	"required": []string{
		"caseSummary", "timelineAnalysis", "conflictMapping",
		"advancedTriggerReasoning", "spiritualComponent", "actionProtocol",
		"expectedHealingPhase", "finalAnchor", "nextSteps",
	},
	"additionalProperties": false,
}

var awarenessSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"spiritualRemedy": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"scripture":   map[string]any{"type": "string"},
				"explanation": map[string]any{"type": "string"},
			},
			"required":             []string{"scripture", "explanation"},
			"additionalProperties": false,
		},
		"predictiveAnalysis": map[string]any{"type": "string"},
		"quantifiedCosts":    quantifiedImpactSchema,
		"leveragePoint": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"theme":                 map[string]any{"type": "string"},
				"reasoning":             map[string]any{"type": "string"},
				"sequentialTriggers":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"rawsonTreatmentScript": map[string]any{"type": "string"},
			},
			"required":             []string{"theme", "reasoning", "sequentialTriggers", "rawsonTreatmentScript"},
			"additionalProperties": false,
		},
		"identityShiftProtocol": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"familiarPatterns": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"newBehaviors":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required":             []string{"familiarPatterns", "newBehaviors"},
			"additionalProperties": false,
		},
		"futureForecast": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"vision":          map[string]any{"type": "string"},
				"quantifiedGains": quantifiedImpactSchema,
			},
			"required":             []string{"vision", "quantifiedGains"},
			"additionalProperties": false,
		},
		"disclaimer": map[string]any{"type": "string"},
	},
	"required": []string{
		"spiritualRemedy", "predictiveAnalysis", "quantifiedCosts",
		"leveragePoint", "identityShiftProtocol", "futureForecast", "disclaimer",
	},
	"additionalProperties": false,
}

var quantifiedImpactSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"financial": map[string]any{"type": "string"},
		"physical":  map[string]any{"type": "string"},
		"emotional": map[string]any{"type": "string"},
		"spiritual": map[string]any{"type": "string"},
	},
	"required":             []string{"financial", "physical", "emotional", "spiritual"},
	"additionalProperties": false,
}
