package models

// FilterField names a scalar filter dimension.
type FilterField string

const (
	FieldSubject    FilterField = "materia_id"
	FieldExam       FilterField = "vestibular_id"
	FieldYear       FilterField = "ano"
	FieldDifficulty FilterField = "dificuldade"
)

// FieldTopic is the query key used for each selected topic.
const FieldTopic = "assunto_id"

// ScalarFields lists the scalar filter fields in query order.
var ScalarFields = []FilterField{FieldSubject, FieldExam, FieldYear, FieldDifficulty}

// Valid reports whether f is a known scalar field.
func (f FilterField) Valid() bool {
	switch f {
	case FieldSubject, FieldExam, FieldYear, FieldDifficulty:
		return true
	}
	return false
}

// FilterSnapshot is the committed set of filter values sent with a search.
// Nil pointers mean the field is absent; a snapshot with every field absent
// asks for an unfiltered result set.
type FilterSnapshot struct {
	SubjectID  *int        `json:"materia_id,omitempty"`
	ExamID     *int        `json:"vestibular_id,omitempty"`
	Year       *int        `json:"ano,omitempty"`
	TopicIDs   []int       `json:"assunto_id,omitempty"`
	Difficulty *Difficulty `json:"dificuldade,omitempty"`
}

// Clone returns a deep copy so callers can keep the snapshot after the
// originating state moves on.
func (s FilterSnapshot) Clone() FilterSnapshot {
	out := FilterSnapshot{
		SubjectID: cloneInt(s.SubjectID),
		ExamID:    cloneInt(s.ExamID),
		Year:      cloneInt(s.Year),
	}
	if s.TopicIDs != nil {
		out.TopicIDs = append([]int(nil), s.TopicIDs...)
	}
	if s.Difficulty != nil {
		d := *s.Difficulty
		out.Difficulty = &d
	}
	return out
}

// Empty reports whether no field is set.
func (s FilterSnapshot) Empty() bool {
	return s.SubjectID == nil && s.ExamID == nil && s.Year == nil && len(s.TopicIDs) == 0 && s.Difficulty == nil
}

// HasTopic reports whether id is part of the topic selection.
func (s FilterSnapshot) HasTopic(id int) bool {
	for _, t := range s.TopicIDs {
		if t == id {
			return true
		}
	}
	return false
}

// Value returns the scalar value of field, or 0 and false when absent.
func (s FilterSnapshot) Value(field FilterField) (int, bool) {
	var p *int
	switch field {
	case FieldSubject:
		p = s.SubjectID
	case FieldExam:
		p = s.ExamID
	case FieldYear:
		p = s.Year
	case FieldDifficulty:
		if s.Difficulty == nil {
			return 0, false
		}
		return int(*s.Difficulty), true
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
