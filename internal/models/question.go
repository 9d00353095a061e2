package models

// Question is a single exam question as returned by the question bank.
// Questions are immutable once fetched and compare by ID.
type Question struct {
	ID            int        `json:"id"`
	Statement     string     `json:"enunciado"`
	Options       []string   `json:"opcoes"`
	CorrectAnswer string     `json:"resposta_correta"`
	Difficulty    Difficulty `json:"dificuldade"`
	Resolution    string     `json:"resolucao"`
	VideoURL      string     `json:"video_resolucao,omitempty"`
	Subject       string     `json:"materia,omitempty"`
	Exam          string     `json:"vestibular,omitempty"`
	Year          int        `json:"ano,omitempty"`
	Topic         string     `json:"assunto,omitempty"`
}

// FindQuestion returns the question with the given id from list.
func FindQuestion(list []Question, id int) (Question, bool) {
	for _, q := range list {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
