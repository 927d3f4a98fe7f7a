package quiz

// maxDerivedPoints bounds the weak/strong label lists derived from a
// single attempt.
const maxDerivedPoints = 200

// AnswerIndex interprets a positional answer for an mcq question. A
// missing or non-integer entry means unanswered (-1).
func AnswerIndex(v any) int {
	if n, ok := asInt(v); ok {
		return n
	}
	return -1
}

// AnswerText interprets a positional answer for a short question.
func AnswerText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// BuildFeedbackPayload produces the per-question view handed to the
// oracle: authoritative indices for mcq, canonical answer plus the
// user's text for short.
func BuildFeedbackPayload(q *Quiz, answers []any) []feedbackPayloadItem {
	payload := make([]feedbackPayloadItem, 0, len(q.Questions))
	for i, question := range q.Questions {
		switch {
		case question.MCQ != nil:
			m := question.MCQ
			userIdx := AnswerIndex(answers[i])
			correctIdx := m.CorrectIndex
			payload = append(payload, feedbackPayloadItem{
				Type:       TypeMCQ,
				ID:         m.ID,
				Prompt:     m.Prompt,
				Options:    m.Options,
				CorrectIdx: &correctIdx,
				UserIdx:    &userIdx,
			})
		case question.Short != nil:
			s := question.Short
			userText := AnswerText(answers[i])
			payload = append(payload, feedbackPayloadItem{
				Type:       TypeShort,
				ID:         s.ID,
				Prompt:     s.Prompt,
				AnswerText: s.AnswerText,
				UserText:   &userText,
			})
		}
	}
	return payload
}

// InferItemTypes patches oracle feedback items that lack a "type" tag:
// userIndex+correctIndex implies mcq, userText implies short. The
// oracle's output is not always schema-compliant even when it is valid
// JSON.
func InferItemTypes(raw any) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return
	}
	items, ok := obj["items"].([]any)
	if !ok {
		return
	}
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if _, tagged := m["type"]; tagged {
			continue
		}
		_, hasUserIdx := m["userIndex"]
		_, hasCorrectIdx := m["correctIndex"]
		_, hasUserText := m["userText"]
		switch {
		case hasUserIdx && hasCorrectIdx:
			m["type"] = string(TypeMCQ)
		case hasUserText:
			m["type"] = string(TypeShort)
		}
	}
}

// ScoredFeedback is the reconciled, locally authoritative result of a
// quiz attempt.
type ScoredFeedback struct {
	Feedback     Feedback
	StrongPoints []string
	CorrectCount int
}

// Reconcile rebuilds a complete feedback item set from the untrusted
// oracle response plus the original quiz and answers. It produces
// exactly one item per question, in question order, no matter how
// incomplete, duplicated, or misattributed the oracle's items were.
//
// For mcq items the indices and correctness come from quiz/answers;
// an oracle claim to the contrary is discarded. For short items the
// oracle's boolean judgment is kept when present, since canonical
// answer matching cannot be computed locally.
func Reconcile(q *Quiz, answers []any, oracleFB *Feedback) *ScoredFeedback {
	// First oracle item per question id wins; extras are ignored.
	byID := make(map[string]FeedbackItem, len(oracleFB.Items))
	for _, it := range oracleFB.Items {
		id := it.QuestionID()
		if _, seen := byID[id]; !seen && id != "" {
			byID[id] = it
		}
	}

	items := make([]FeedbackItem, 0, len(q.Questions))
	var derivedWeak, derivedStrong []string
	correctCount := 0

	for i, question := range q.Questions {
		switch {
		case question.MCQ != nil:
			m := question.MCQ
			userIdx := AnswerIndex(answers[i])
			correct := userIdx == m.CorrectIndex
			text := ""
			if matched, ok := byID[m.ID]; ok {
				text = matched.feedbackText()
			}
			items = append(items, FeedbackItem{MCQ: &MCQFeedbackItem{
				QuestionID:   m.ID,
				CorrectIndex: m.CorrectIndex,
				UserIndex:    userIdx,
				Correct:      correct,
				Feedback:     text,
			}})
			if correct {
				correctCount++
				derivedStrong = append(derivedStrong, m.Prompt)
			} else {
				derivedWeak = append(derivedWeak, m.Prompt)
			}

		case question.Short != nil:
			s := question.Short
			item := &ShortFeedbackItem{
				QuestionID: s.ID,
				UserText:   AnswerText(answers[i]),
			}
			if matched, ok := byID[s.ID]; ok {
				item.Feedback = matched.feedbackText()
				if b, has := matched.CorrectBool(); has {
					item.Correct = &b
				}
			}
			items = append(items, FeedbackItem{Short: item})
			if item.Correct != nil {
				if *item.Correct {
					correctCount++
					derivedStrong = append(derivedStrong, s.Prompt)
				} else {
					derivedWeak = append(derivedWeak, s.Prompt)
				}
			}
		}
	}

	weak := dedupeCap(append(append([]string{}, oracleFB.WeakPoints...), derivedWeak...), maxDerivedPoints)
	strong := dedupeCap(derivedStrong, maxDerivedPoints)
	plan := dedupeCap(oracleFB.StudyPlan, maxDerivedPoints)

	return &ScoredFeedback{
		Feedback: Feedback{
			Items:      items,
			Overall:    oracleFB.Overall,
			WeakPoints: weak,
			StudyPlan:  plan,
		},
		StrongPoints: strong,
		CorrectCount: correctCount,
	}
}

func (it FeedbackItem) feedbackText() string {
	switch {
	case it.MCQ != nil:
		return it.MCQ.Feedback
	case it.Short != nil:
		return it.Short.Feedback
	}
	return ""
}

// dedupeCap removes duplicates preserving first-seen order and caps
// the result length.
func dedupeCap(in []string, max int) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}
