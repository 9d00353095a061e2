package service

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/noah-isme/banco-questoes-web/internal/dto"
	"github.com/noah-isme/banco-questoes-web/internal/models"
)

// SkeletonCards is how many placeholder cards the loading state shows.
const SkeletonCards = 6

var optionLetters = []string{"A", "B", "C", "D", "E"}

// PresenterService turns search state and reference data into view models.
// It holds no state of its own.
type PresenterService struct {
	notificationsEnabled bool
	exportsEnabled       bool
}

// NewPresenterService creates a presenter.
func NewPresenterService(notificationsEnabled, exportsEnabled bool) *PresenterService {
	return &PresenterService{notificationsEnabled: notificationsEnabled, exportsEnabled: exportsEnabled}
}

// Page assembles the full index page.
func (p *PresenterService) Page(ref models.ReferenceData, filters models.FilterSnapshot, state models.SearchState, note *models.Notification) dto.PageView {
	form := p.Filters(ref, filters)
	form.Loading = state.Loading
	return dto.PageView{
		Filters:              form,
		Grid:                 p.Grid(state),
		QuestionCount:        len(state.Questions),
		Sequence:             state.Sequence,
		Notification:         note,
		NotificationsEnabled: p.notificationsEnabled,
		ExportsEnabled:       p.exportsEnabled,
	}
}

// GridState picks the result area state from loading, searched and result count.
func GridState(loading, searched bool, count int) dto.GridState {
	switch {
	case loading:
		return dto.GridLoading
	case !searched:
		return dto.GridPrompt
	case count == 0:
		return dto.GridEmpty
	default:
		return dto.GridResults
	}
}

// Grid renders the result area.
func (p *PresenterService) Grid(state models.SearchState) dto.GridView {
	view := dto.GridView{
		State: GridState(state.Loading, state.Searched, len(state.Questions)),
		Cards: []dto.QuestionCard{},
	}
	switch view.State {
	case dto.GridLoading:
		view.Skeletons = SkeletonCards
	case dto.GridResults:
		view.Title = CountLabel(len(state.Questions))
		view.Cards = make([]dto.QuestionCard, 0, len(state.Questions))
		for _, q := range state.Questions {
			view.Cards = append(view.Cards, p.Card(q))
		}
	}
	return view
}

// Card renders one question card.
func (p *PresenterService) Card(q models.Question) dto.QuestionCard {
	card := dto.QuestionCard{
		ID:              q.ID,
		DifficultyLabel: q.Difficulty.Label(),
		DifficultyStyle: q.Difficulty.Style(),
		Subject:         q.Subject,
		Exam:            q.Exam,
		Year:            q.Year,
		Topic:           q.Topic,
		Statement:       q.Statement,
		Detail:          p.Detail(q),
	}
	if len(q.Options) > 0 {
		card.Options = make([]dto.OptionView, 0, len(q.Options))
		for i, text := range q.Options {
			opt := dto.OptionView{Text: text, Correct: text == q.CorrectAnswer}
			if i < len(optionLetters) {
				opt.Label = optionLetters[i]
			}
			card.Options = append(card.Options, opt)
		}
	}
	return card
}

// Detail renders the resolution view of a question.
func (p *PresenterService) Detail(q models.Question) dto.QuestionDetail {
	return dto.QuestionDetail{
		ID:            q.ID,
		Statement:     q.Statement,
		CorrectAnswer: q.CorrectAnswer,
		Resolution:    q.Resolution,
		VideoEmbedURL: EmbedURL(q.VideoURL),
	}
}

// Filters renders the filter panel with the current selections marked.
func (p *PresenterService) Filters(ref models.ReferenceData, filters models.FilterSnapshot) dto.FilterFormView {
	subjectID, hasSubject := filters.Value(models.FieldSubject)
	examID, hasExam := filters.Value(models.FieldExam)
	year, hasYear := filters.Value(models.FieldYear)
	difficulty, hasDifficulty := filters.Value(models.FieldDifficulty)

	form := dto.FilterFormView{
		Subjects:     make([]dto.Choice, 0, len(ref.Subjects)),
		Exams:        make([]dto.Choice, 0, len(ref.Exams)),
		Years:        make([]dto.Choice, 0, len(ref.Years)),
		Topics:       make([]dto.Choice, 0, len(ref.Topics)),
		Difficulties: make([]dto.DifficultyChoice, 0, len(models.Difficulties)),
	}
	for _, s := range ref.Subjects {
		form.Subjects = append(form.Subjects, dto.Choice{Value: s.ID, Label: s.Name, Selected: hasSubject && s.ID == subjectID})
	}
	for _, e := range ref.Exams {
		form.Exams = append(form.Exams, dto.Choice{Value: e.ID, Label: e.Name, Selected: hasExam && e.ID == examID})
	}
	for _, y := range ref.Years {
		form.Years = append(form.Years, dto.Choice{Value: y, Label: strconv.Itoa(y), Selected: hasYear && y == year})
	}
	for _, t := range ref.Topics {
		form.Topics = append(form.Topics, dto.Choice{Value: t.ID, Label: t.Name, Selected: filters.HasTopic(t.ID)})
	}
	for _, d := range models.Difficulties {
		form.Difficulties = append(form.Difficulties, dto.DifficultyChoice{
			Value:    int(d),
			Label:    d.Label(),
			Style:    d.Style(),
			Selected: hasDifficulty && int(d) == difficulty,
		})
	}
	return form
}

// EmbedURL returns the iframe source for a resolution video. YouTube watch,
// short and share links become embed links. Protocol-relative URLs are
// resolved to https and paths on the current host are used unchanged.
// Empty input, text that is not a URL and schemes other than http(s)
// (javascript:, data:, ...) yield "".
func EmbedURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\r\n") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch {
	case u.Scheme == "" && u.Host == "":
		if u.Path == "" {
			return ""
		}
		return raw
	case u.Scheme == "":
		u.Scheme = "https"
	case u.Scheme != "http" && u.Scheme != "https":
		return ""
	case u.Host == "":
		return ""
	}

	abs := u.String()
	if !isYouTubeHost(u.Hostname()) {
		return abs
	}
	id, err := youtube.ExtractVideoID(abs)
	if err != nil {
		return abs
	}
	return "https://www.youtube.com/embed/" + id
}

func isYouTubeHost(host string) bool {
	host = strings.ToLower(host)
	return host == "youtu.be" ||
		host == "youtube.com" || strings.HasSuffix(host, ".youtube.com") ||
		host == "youtube-nocookie.com" || strings.HasSuffix(host, ".youtube-nocookie.com")
}
