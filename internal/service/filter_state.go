package service

import (
	"fmt"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	appErrors "github.com/noah-isme/banco-questoes-web/pkg/errors"
)

// FilterState is the filter controller's state for one session. It is built
// incrementally from user actions and committed by value on search.
type FilterState struct {
	snapshot models.FilterSnapshot
}

// NewFilterState starts from a previously committed snapshot.
func NewFilterState(initial models.FilterSnapshot) *FilterState {
	return &FilterState{snapshot: initial.Clone()}
}

// SetField assigns a scalar field. Assigning the selected difficulty again clears it.
func (f *FilterState) SetField(field models.FilterField, value int) error {
	switch field {
	case models.FieldSubject:
		f.snapshot.SubjectID = intPtr(value)
	case models.FieldExam:
		f.snapshot.ExamID = intPtr(value)
	case models.FieldYear:
		f.snapshot.Year = intPtr(value)
	case models.FieldDifficulty:
		d := models.Difficulty(value)
		if !d.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("dificuldade must be 1, 2 or 3, got %d", value))
		}
		if f.snapshot.Difficulty != nil && *f.snapshot.Difficulty == d {
			f.snapshot.Difficulty = nil
			return nil
		}
		f.snapshot.Difficulty = &d
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown filter field %q", field))
	}
	return nil
}

// ClearField unsets a scalar field.
func (f *FilterState) ClearField(field models.FilterField) error {
	switch field {
	case models.FieldSubject:
		f.snapshot.SubjectID = nil
	case models.FieldExam:
		f.snapshot.ExamID = nil
	case models.FieldYear:
		f.snapshot.Year = nil
	case models.FieldDifficulty:
		f.snapshot.Difficulty = nil
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown filter field %q", field))
	}
	return nil
}

// ToggleTopic removes id when selected and appends it otherwise.
func (f *FilterState) ToggleTopic(id int) {
	for i, existing := range f.snapshot.TopicIDs {
		if existing == id {
			next := make([]int, 0, len(f.snapshot.TopicIDs)-1)
			next = append(next, f.snapshot.TopicIDs[:i]...)
			f.snapshot.TopicIDs = append(next, f.snapshot.TopicIDs[i+1:]...)
			return
		}
	}
	f.snapshot.TopicIDs = append(f.snapshot.TopicIDs, id)
}

// Commit returns the current snapshot by value. The state is not reset.
func (f *FilterState) Commit() models.FilterSnapshot {
	return f.snapshot.Clone()
}

func intPtr(v int) *int {
	return &v
}
