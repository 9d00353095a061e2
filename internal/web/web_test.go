package web

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/banco-questoes-web/internal/dto"
	"github.com/noah-isme/banco-questoes-web/internal/models"
)

func render(t *testing.T, page dto.PageView) string {
	t.Helper()
	tmpl, err := Templates()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "index.tmpl", page))
	return buf.String()
}

func TestIndexRendersResults(t *testing.T) {
	page := dto.PageView{
		Filters: dto.FilterFormView{
			Subjects: []dto.Choice{{Value: 5, Label: "Física", Selected: true}},
			Topics:   []dto.Choice{{Value: 10, Label: "Óptica"}},
		},
		Grid: dto.GridView{
			State: dto.GridResults,
			Title: "1 questão encontrada",
			Cards: []dto.QuestionCard{{
				ID:              7,
				DifficultyLabel: "Médio",
				DifficultyStyle: "medium",
				Statement:       "Quanto é 2 + 2?",
				Options:         []dto.OptionView{{Label: "A", Text: "3"}, {Label: "B", Text: "4", Correct: true}},
				Detail:          dto.QuestionDetail{ID: 7, CorrectAnswer: "4", VideoEmbedURL: "https://www.youtube.com/embed/dQw4w9WgXcQ"},
			}},
		},
		QuestionCount:  1,
		ExportsEnabled: true,
		Notification:   &models.Notification{Kind: models.NotificationSuccess, Title: "Busca realizada", Description: "1 questão encontrada"},
	}

	html := render(t, page)
	assert.Contains(t, html, "1 questão encontrada")
	assert.Contains(t, html, `<option value="5" selected>Física</option>`)
	assert.Contains(t, html, `action="/filtros/assunto/10"`)
	assert.Contains(t, html, `class="correct"`)
	assert.Contains(t, html, `id="detail-7"`)
	assert.Contains(t, html, `src="https://www.youtube.com/embed/dQw4w9WgXcQ"`)
	assert.Contains(t, html, `href="/exportar.csv"`)
	assert.Contains(t, html, "toast-success")
}

func TestIndexRendersLoadingSkeletons(t *testing.T) {
	html := render(t, dto.PageView{
		Filters: dto.FilterFormView{Loading: true},
		Grid:    dto.GridView{State: dto.GridLoading, Skeletons: 3},
	})
	assert.Equal(t, 3, bytes.Count([]byte(html), []byte("card skeleton")))
	assert.Contains(t, html, "Buscando...")
	assert.Contains(t, html, `http-equiv="refresh"`)
}

func TestIndexRendersPromptAndEmpty(t *testing.T) {
	assert.Contains(t, render(t, dto.PageView{Grid: dto.GridView{State: dto.GridPrompt}, NotificationsEnabled: true}), "Selecione os filtros")
	empty := render(t, dto.PageView{Grid: dto.GridView{State: dto.GridEmpty}, NotificationsEnabled: true})
	assert.Contains(t, empty, "Nenhuma questão encontrada")
	assert.Contains(t, empty, `data-ws="/ws"`)
	assert.NotContains(t, empty, "/exportar.csv")
}

func TestStaticAssets(t *testing.T) {
	f, err := Static().Open("app.js")
	require.NoError(t, err)
	defer f.Close()
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(body), "search.completed")
}

func TestIndexCarriesAPIPrefixAndResetAction(t *testing.T) {
	html := render(t, dto.PageView{
		Grid:                 dto.GridView{State: dto.GridPrompt},
		APIPrefix:            "/bff/v2",
		NotificationsEnabled: true,
	})
	assert.Contains(t, html, `data-api="/bff/v2"`)
	assert.Contains(t, html, `data-ws="/ws"`)
	assert.Contains(t, html, `action="/filtros/redefinir"`)
}

func TestScriptReadsAPIPrefix(t *testing.T) {
	f, err := Static().Open("app.js")
	require.NoError(t, err)
	defer f.Close()
	src, err := io.ReadAll(f)
	require.NoError(t, err)

	assert.Contains(t, string(src), `getAttribute("data-api")`)
	assert.NotContains(t, string(src), `fetch("/api/v1`)
}
