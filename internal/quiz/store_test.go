package quiz

import "testing"

func TestDecodeStoredQuiz_Defensive(t *testing.T) {
	q := decodeStoredQuiz(`{"questions":[{"type":"mcq","id":"q_1","prompt":"p","options":["a","b","c","d"],"correctIndex":0}]}`)
	if len(q.Questions) != 1 || q.Questions[0].MCQ == nil {
		t.Errorf("expected one mcq question, got %+v", q)
	}

	for _, raw := range []string{`{corrupt`, `"a string"`, `42`} {
		q := decodeStoredQuiz(raw)
		if q == nil || q.Questions == nil || len(q.Questions) != 0 {
			t.Errorf("raw %q: expected empty quiz fallback, got %+v", raw, q)
		}
	}
}

func TestDecodeStoredAnswers_Defensive(t *testing.T) {
	got := decodeStoredAnswers(`[1,"text",null]`)
	if len(got) != 3 {
		t.Errorf("expected 3 answers, got %v", got)
	}

	for _, raw := range []string{`{corrupt`, `{"a":1}`, `null`} {
		if got := decodeStoredAnswers(raw); got == nil || len(got) != 0 {
			t.Errorf("raw %q: expected empty answers fallback, got %v", raw, got)
		}
	}
}

func TestDecodeStoredFeedback_Defensive(t *testing.T) {
	fb := decodeStoredFeedback(`{"items":[{"type":"short","questionId":"q_1","userText":"x","feedback":"ok"}],"weakPoints":["w"],"studyPlan":[]}`)
	if len(fb.Items) != 1 || fb.Items[0].Short == nil {
		t.Errorf("expected one short item, got %+v", fb)
	}
	if len(fb.WeakPoints) != 1 {
		t.Errorf("expected weakPoints preserved, got %v", fb.WeakPoints)
	}

	fb = decodeStoredFeedback(`{corrupt`)
	if fb.Items == nil || fb.WeakPoints == nil || fb.StudyPlan == nil {
		t.Errorf("expected non-nil empty fallbacks, got %+v", fb)
	}
}
