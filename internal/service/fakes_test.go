package service

import (
	"context"
	"errors"
	"sync"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	"github.com/noah-isme/banco-questoes-web/pkg/jobs"
)

type catalogStub struct {
	mu          sync.Mutex
	subjects    []models.Subject
	exams       []models.Exam
	topics      []models.Topic
	subjectsErr error
	examsErr    error
	topicsErr   error
	calls       map[string]int

	questions    []models.Question
	questionsErr error
	queries      []string
	// gate, when set, blocks SearchQuestions for a query until a value is sent.
	gate map[string]chan struct{}
}

func (c *catalogStub) count(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[name]++
}

func (c *catalogStub) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	c.count("subjects")
	return c.subjects, c.subjectsErr
}

func (c *catalogStub) ListExams(ctx context.Context) ([]models.Exam, error) {
	c.count("exams")
	return c.exams, c.examsErr
}

func (c *catalogStub) ListTopics(ctx context.Context) ([]models.Topic, error) {
	c.count("topics")
	return c.topics, c.topicsErr
}

func (c *catalogStub) SearchQuestions(ctx context.Context, rawQuery string) ([]models.Question, error) {
	c.mu.Lock()
	c.queries = append(c.queries, rawQuery)
	gate := c.gate[rawQuery]
	c.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return c.questions, c.questionsErr
}

type notifierStub struct {
	mu     sync.Mutex
	events []models.SearchEvent
}

func (n *notifierStub) Publish(sessionID string, event models.SearchEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *notifierStub) types() []models.SearchEventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.SearchEventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type dispatcherStub struct {
	jobs []jobs.Job
	err  error
}

func (d *dispatcherStub) Enqueue(job jobs.Job) error {
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

var errBackendDown = errors.New("connection refused")

func sampleQuestions(n int) []models.Question {
	out := make([]models.Question, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.Question{
			ID:            i,
			Statement:     "Enunciado",
			Options:       []string{"a", "b"},
			CorrectAnswer: "b",
			Difficulty:    models.DifficultyEasy,
		})
	}
	return out
}
