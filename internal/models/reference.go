package models

// Subject represents an academic subject (matéria).
type Subject struct {
	ID   int    `json:"id"`
	Name string `json:"nome"`
}

// Exam represents an entrance exam (vestibular).
type Exam struct {
	ID   int    `json:"id"`
	Name string `json:"nome"`
}

// Topic represents a multi-selectable question topic (assunto).
type Topic struct {
	ID   int    `json:"id"`
	Name string `json:"nome"`
}

// ReferenceData groups the choices offered by the filter form. It is loaded
// once per session and never refreshed.
type ReferenceData struct {
	Subjects []Subject `json:"materias"`
	Exams    []Exam    `json:"vestibulares"`
	Topics   []Topic   `json:"assuntos"`
	Years    []int     `json:"anos"`
}
