package services

// JSON schemas for structured generation, one per hierarchy level.
// All properties required and additionalProperties false so strict
// json_schema mode accepts them.

func tocSchema() map[string]any {
	subtopic := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":              map[string]any{"type": "string"},
			"name":            map[string]any{"type": "string"},
			"description":     map[string]any{"type": "string"},
			"estimated_hours": map[string]any{"type": "number"},
			"difficulty":      map[string]any{"type": "string", "enum": []string{"beginner", "intermediate", "advanced"}},
			"prerequisites":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []string{"id", "name", "description", "estimated_hours", "difficulty", "prerequisites"},
		"additionalProperties": false,
	}

	topic := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":              map[string]any{"type": "string"},
			"name":            map[string]any{"type": "string"},
			"description":     map[string]any{"type": "string"},
			"estimated_hours": map[string]any{"type": "number"},
			"difficulty":      map[string]any{"type": "string", "enum": []string{"beginner", "intermediate", "advanced"}},
			"topic_type":      map[string]any{"type": "string", "enum": []string{"theoretical", "practical", "mixed"}},
			"subtopics":       map[string]any{"type": "array", "items": subtopic},
			"prerequisites":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"is_core":         map[string]any{"type": "boolean"},
		},
		"required":             []string{"id", "name", "description", "estimated_hours", "difficulty", "topic_type", "subtopics", "prerequisites", "is_core"},
		"additionalProperties": false,
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"domain":                    map[string]any{"type": "string"},
			"title":                     map[string]any{"type": "string"},
			"description":               map[string]any{"type": "string"},
			"total_estimated_hours":     map[string]any{"type": "number"},
			"topics":                    map[string]any{"type": "array", "items": topic},
			"learning_path_suggestions": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []string{"domain", "title", "description", "total_estimated_hours", "topics", "learning_path_suggestions"},
		"additionalProperties": false,
	}
}

func modulesSchema(evaluationTypes []string) map[string]any {
	module := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":                  map[string]any{"type": "string"},
			"topic_id":            map[string]any{"type": "string"},
			"name":                map[string]any{"type": "string"},
			"description":         map[string]any{"type": "string"},
			"estimated_hours":     map[string]any{"type": "number"},
			"learning_objectives": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"prerequisites":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"evaluation_type":     map[string]any{"type": "string", "enum": evaluationTypes},
			"order":               map[string]any{"type": "integer"},
		},
		"required":             []string{"id", "topic_id", "name", "description", "estimated_hours", "learning_objectives", "prerequisites", "evaluation_type", "order"},
		"additionalProperties": false,
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic_id":              map[string]any{"type": "string"},
			"topic_name":            map[string]any{"type": "string"},
			"topic_description":     map[string]any{"type": "string"},
			"modules":               map[string]any{"type": "array", "items": module},
			"total_estimated_hours": map[string]any{"type": "number"},
		},
		"required":             []string{"topic_id", "topic_name", "topic_description", "modules", "total_estimated_hours"},
		"additionalProperties": false,
	}
}

func conceptsSchema() map[string]any {
	concept := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":                  map[string]any{"type": "string"},
			"module_id":           map[string]any{"type": "string"},
			"name":                map[string]any{"type": "string"},
			"description":         map[string]any{"type": "string"},
			"estimated_minutes":   map[string]any{"type": "number"},
			"learning_objectives": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"order":               map[string]any{"type": "integer"},
		},
		"required":             []string{"id", "module_id", "name", "description", "estimated_minutes", "learning_objectives", "order"},
		"additionalProperties": false,
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"module_id":               map[string]any{"type": "string"},
			"module_name":             map[string]any{"type": "string"},
			"module_description":      map[string]any{"type": "string"},
			"topic_id":                map[string]any{"type": "string"},
			"concepts":                map[string]any{"type": "array", "items": concept},
			"total_estimated_minutes": map[string]any{"type": "number"},
		},
		"required":             []string{"module_id", "module_name", "module_description", "topic_id", "concepts", "total_estimated_minutes"},
		"additionalProperties": false,
	}
}
