package store

import (
	"sort"
	"strings"
	"time"

	"github.com/learnloop/learnloop-backend/internal/apperr"
	"github.com/learnloop/learnloop-backend/internal/types"
)

// validateSelection checks that every selected id names a topic in the
// TOC. The store must not be mutated when this fails.
func validateSelection(toc *types.TableOfContents, selected []string) error {
	known := make(map[string]struct{}, len(toc.Topics))
	for _, t := range toc.Topics {
		known[t.ID] = struct{}{}
	}
	var invalid []string
	for _, id := range selected {
		if _, ok := known[id]; !ok {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return apperr.Validation("invalid topic ids: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// selectionHours sums estimated hours over the selected topics.
func selectionHours(toc *types.TableOfContents, selected []string) float64 {
	want := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		want[id] = struct{}{}
	}
	var total float64
	for _, t := range toc.Topics {
		if _, ok := want[t.ID]; ok {
			total += t.EstimatedHours
		}
	}
	return total
}

// removedTopics returns ids in old that are absent from new.
func removedTopics(oldSel, newSel []string) []string {
	keep := make(map[string]struct{}, len(newSel))
	for _, id := range newSel {
		keep[id] = struct{}{}
	}
	var removed []string
	for _, id := range oldSel {
		if _, ok := keep[id]; !ok {
			removed = append(removed, id)
		}
	}
	return removed
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func newLearningPath(userID, sessionID, domain string, selected []string, totalHours float64, prefs map[string]any) *types.LearningPath {
	return &types.LearningPath{
		UserID:              userID,
		SessionID:           sessionID,
		Domain:              domain,
		SelectedTopics:      append([]string(nil), selected...),
		EstimatedTotalHours: totalHours,
		CreatedAt:           time.Now().UTC(),
		UserPreferences:     prefs,
	}
}

// resetCursorAfterUpdate recomputes the cursor after a re-selection: an
// unselected current topic falls back to the first remaining selection
// (or clears the cursor entirely), dropping module/concept positions.
func resetCursorAfterUpdate(cur types.Cursor, newSel []string) types.Cursor {
	if cur.TopicID != "" && containsID(newSel, cur.TopicID) {
		return cur
	}
	if len(newSel) > 0 {
		return types.Cursor{TopicID: newSel[0]}
	}
	return types.Cursor{}
}

func topicDetails(toc *types.TableOfContents, topicID string) *types.TopicDetails {
	topic, ok := toc.TopicByID(topicID)
	if !ok {
		return nil
	}
	details := &types.TopicDetails{Topic: topic}
	for _, prereqID := range topic.Prerequisites {
		if p, ok := toc.TopicByID(prereqID); ok {
			details.Prerequisites = append(details.Prerequisites, p)
		}
	}
	for _, t := range toc.Topics {
		if containsID(t.Prerequisites, topicID) {
			details.Dependents = append(details.Dependents, t)
		}
	}
	return details
}

func cloneTOC(toc *types.TableOfContents) *types.TableOfContents {
	if toc == nil {
		return nil
	}
	out := *toc
	out.Topics = append([]types.Topic(nil), toc.Topics...)
	out.LearningPathSuggestions = append([]string(nil), toc.LearningPathSuggestions...)
	return &out
}

func clonePath(p *types.LearningPath) *types.LearningPath {
	if p == nil {
		return nil
	}
	out := *p
	out.SelectedTopics = append([]string(nil), p.SelectedTopics...)
	return &out
}

func cloneModules(tm *types.TopicWithModules) *types.TopicWithModules {
	if tm == nil {
		return nil
	}
	out := *tm
	out.Modules = append([]types.Module(nil), tm.Modules...)
	return &out
}

func cloneConcepts(mc *types.ModuleWithConcepts) *types.ModuleWithConcepts {
	if mc == nil {
		return nil
	}
	out := *mc
	out.Concepts = append([]types.Concept(nil), mc.Concepts...)
	return &out
}

func moduleSummary(mc *types.ModuleWithConcepts) *types.ModuleSummary {
	return &types.ModuleSummary{
		ModuleID:          mc.ModuleID,
		ModuleName:        mc.ModuleName,
		ModuleDescription: mc.ModuleDescription,
		TopicID:           mc.TopicID,
	}
}
