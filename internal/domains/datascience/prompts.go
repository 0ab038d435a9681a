package datascience

import (
	"fmt"
	"sort"
	"strings"

	"github.com/learnloop/learnloop-backend/internal/types"
)

const tocPromptTemplate = `Create a comprehensive Data Science curriculum Table of Contents based on the user's specific preferences and background.

User's Complete Profile:
%s

Instructions:
1. Analyze the user's goals, experience level, learning style, time constraints, and technical background
2. Design a curriculum that EXACTLY matches their stated preferences
3. If they want career-focused content, emphasize job-ready skills
4. If they want hands-on learning, prioritize practical projects over theory
5. If they're a beginner, start with fundamentals; if advanced, focus on sophisticated topics
6. Respect their time constraints and daily commitment preferences
7. Build on their existing technical skills (programming, math, domain knowledge)

Generate topics that cover relevant areas of data science:
- Programming and tools
- Mathematics and statistics
- Data manipulation and analysis
- Machine learning
- Data visualization
- Specialized domains (NLP, computer vision, etc.)
- Industry applications
- Portfolio/project work

Structure the curriculum to:
- Have logical progression and clear prerequisites
- Include realistic time estimates based on their availability
- Mark essential vs optional topics based on their goals
- Provide detailed subtopics that show learning value
- Match the complexity to their experience level

Domain: data_science`

func (d *Domain) TOCPrompt(prefs map[string]any) string {
	return fmt.Sprintf(tocPromptTemplate, formatPreferences(prefs))
}

const modulePromptTemplate = `You are an expert Data Science curriculum designer. Break down the following topic into detailed learning modules.

Topic Information:
- Topic Name: %s
- Topic Description: %s
- Estimated Hours: %.1f
- Difficulty Level: %s
- Prerequisites: %s

User Context:
%s

Instructions:
1. Create 2-5 modules that logically break down this topic
2. Modules should build on each other with clear progression
3. Include practical coding exercises and theoretical understanding
4. Match the user's experience level and learning preferences
5. Ensure modules align with their stated goals

For each module, specify:
- Clear learning objectives (what they'll be able to do after completion)
- Appropriate evaluation method (coding exercises, quizzes, or mixed)
- Logical ordering and dependencies
- Realistic time estimates

Generate modules that create a coherent learning experience where each module prepares the learner for the next while building practical skills.`

func (d *Domain) ModulePrompt(topic types.Topic, prefs map[string]any) string {
	prereqs := "None"
	if len(topic.Prerequisites) > 0 {
		prereqs = strings.Join(topic.Prerequisites, ", ")
	}
	return fmt.Sprintf(modulePromptTemplate,
		topic.Name,
		topic.Description,
		topic.EstimatedHours,
		topic.Difficulty,
		prereqs,
		formatPreferences(prefs),
	)
}

const conceptPromptTemplate = `You are an expert Data Science instructor. Break down the following module into detailed learning concepts.

Module Information:
- Module Name: %s
- Module Description: %s
- Estimated Hours: %.1f
- Learning Objectives: %s
- Evaluation Type: %s

User Context:
%s

Instructions:
1. Break this module into 3-6 concepts, each taking 10-20 minutes to complete
2. Each concept should be focused on a single, digestible topic
3. Concepts should build on each other with clear progression
4. Match the user's experience level and learning preferences
5. Include practical examples relevant to their goals

For each concept, provide:
- Clear name and description
- Specific learning objectives
- Estimated time in minutes
- Logical ordering within the module

Focus on creating concepts that prepare learners for the module's evaluation type: %s`

func (d *Domain) ConceptPrompt(module types.Module, prefs map[string]any) string {
	objectives := "None specified"
	if len(module.LearningObjectives) > 0 {
		objectives = strings.Join(module.LearningObjectives, "; ")
	}
	return fmt.Sprintf(conceptPromptTemplate,
		module.Name,
		module.Description,
		module.EstimatedHours,
		objectives,
		module.EvaluationType,
		formatPreferences(prefs),
		module.EvaluationType,
	)
}

const contentPromptTemplate = `You are an expert Data Science instructor. Generate detailed learning content for the following concept.

Concept Information:
- Concept Name: %s
- Concept Description: %s
- Estimated Time: %.0f minutes
- Learning Objectives: %s
- Module Context: %s

User Context:
%s

Content Requirements:
1. Generate content as markdown that can be displayed on a web page
2. Break content into 3-5 content blocks, each taking 2-4 minutes to read
3. Include practical code examples using Python for data science
4. Use clear headings, bullet points, and code blocks for readability
5. Include "Try This" exercises within the content

Formatting Guidelines:
- Use ## for main headings, ### for subheadings
- Include code blocks fenced with python
- Use bullet points for key concepts
- Keep paragraphs concise (2-3 sentences max)`

func (d *Domain) ConceptContentPrompt(concept types.Concept, module types.ModuleSummary, prefs map[string]any) string {
	objectives := "None specified"
	if len(concept.LearningObjectives) > 0 {
		objectives = strings.Join(concept.LearningObjectives, "; ")
	}
	return fmt.Sprintf(contentPromptTemplate,
		concept.Name,
		concept.Description,
		concept.EstimatedMinutes,
		objectives,
		module.ModuleName,
		formatPreferences(prefs),
	)
}

const notesPromptTemplate = `You are an expert Data Science instructor. Generate concise, comprehensive study notes for the following concept.

Concept Information:
- Concept Name: %s
- Concept Description: %s
- Module Context: %s

User Context:
%s

Notes Requirements:
1. Serve as a quick reference and study aid
2. Include key concepts, formulas, examples, and memory aids
3. Format as clean markdown for easy reading and reference
4. Keep it focused - highlights only, not a retelling of the content`

func (d *Domain) ConceptNotesPrompt(concept types.Concept, module types.ModuleSummary, prefs map[string]any) string {
	return fmt.Sprintf(notesPromptTemplate,
		concept.Name,
		concept.Description,
		module.ModuleName,
		formatPreferences(prefs),
	)
}

// formatPreferences renders the free-form preference bag as readable
// bullet lines, stable across calls.
func formatPreferences(prefs map[string]any) string {
	if len(prefs) == 0 {
		return "- No preferences specified"
	}
	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		label := titleCase(strings.ReplaceAll(k, "_", " "))
		switch v := prefs[k].(type) {
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			joined := strings.Join(parts, ", ")
			if joined == "" {
				joined = "None specified"
			}
			fmt.Fprintf(&b, "- %s: %s\n", label, joined)
		default:
			fmt.Fprintf(&b, "- %s: %v\n", label, v)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
