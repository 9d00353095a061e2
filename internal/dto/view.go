package dto

import "github.com/noah-isme/banco-questoes-web/internal/models"

// GridState is one of the mutually exclusive result area states.
type GridState string

const (
	GridLoading GridState = "loading"
	GridPrompt  GridState = "prompt"
	GridEmpty   GridState = "empty"
	GridResults GridState = "results"
)

// OptionView is one answer option of a question card.
type OptionView struct {
	Label   string `json:"label,omitempty"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// QuestionDetail is the on-demand resolution view of a question.
type QuestionDetail struct {
	ID            int    `json:"id"`
	Statement     string `json:"enunciado"`
	CorrectAnswer string `json:"resposta_correta"`
	Resolution    string `json:"resolucao"`
	VideoEmbedURL string `json:"video_embed_url,omitempty"`
}

// HasVideo reports whether the detail view embeds a video frame.
func (d QuestionDetail) HasVideo() bool {
	return d.VideoEmbedURL != ""
}

// QuestionCard is the grid card for one question.
type QuestionCard struct {
	ID              int            `json:"id"`
	DifficultyLabel string         `json:"difficulty_label"`
	DifficultyStyle string         `json:"difficulty_style"`
	Subject         string         `json:"materia,omitempty"`
	Exam            string         `json:"vestibular,omitempty"`
	Year            int            `json:"ano,omitempty"`
	Topic           string         `json:"assunto,omitempty"`
	Statement       string         `json:"enunciado"`
	Options         []OptionView   `json:"opcoes,omitempty"`
	Detail          QuestionDetail `json:"detail"`
}

// GridView is the result area.
type GridView struct {
	State     GridState      `json:"state"`
	Title     string         `json:"title,omitempty"`
	Cards     []QuestionCard `json:"cards"`
	Skeletons int            `json:"skeletons,omitempty"`
}

// Choice is one entry of a select or topic list.
type Choice struct {
	Value    int    `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// DifficultyChoice is one difficulty toggle button.
type DifficultyChoice struct {
	Value    int    `json:"value"`
	Label    string `json:"label"`
	Style    string `json:"style"`
	Selected bool   `json:"selected"`
}

// FilterFormView is the filter panel.
type FilterFormView struct {
	Subjects     []Choice           `json:"materias"`
	Exams        []Choice           `json:"vestibulares"`
	Years        []Choice           `json:"anos"`
	Topics       []Choice           `json:"assuntos"`
	Difficulties []DifficultyChoice `json:"dificuldades"`
	Loading      bool               `json:"loading"`
}

// PageView is everything the index page renders.
type PageView struct {
	Filters              FilterFormView       `json:"filters"`
	Grid                 GridView             `json:"grid"`
	QuestionCount        int                  `json:"question_count"`
	Sequence             uint64               `json:"sequence"`
	Notification         *models.Notification `json:"notification,omitempty"`
	NotificationsEnabled bool                 `json:"notifications_enabled"`
	ExportsEnabled       bool                 `json:"exports_enabled"`
	APIPrefix            string               `json:"-"`
}
