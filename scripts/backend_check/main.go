package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	"github.com/noah-isme/banco-questoes-web/internal/repository"
	"github.com/noah-isme/banco-questoes-web/internal/service"
	"github.com/noah-isme/banco-questoes-web/pkg/config"
)

// probe is one question search run against the backend.
type probe struct {
	Name     string                `json:"name"`
	Filters  models.FilterSnapshot `json:"filters"`
	Critical bool                  `json:"critical"`
	MinCount int                   `json:"min_count"`
}

type probeFile struct {
	Probes []probe `json:"probes"`
}

type result struct {
	Name     string
	Query    string
	Count    int
	Duration time.Duration
	Err      error
	Critical bool
}

func main() {
	var (
		baseURL    string
		probesPath string
		timeout    time.Duration
	)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	flag.StringVar(&baseURL, "base", cfg.Backend.BaseURL, "Question bank backend base URL")
	flag.StringVar(&probesPath, "probes", filepath.Join("scripts", "backend_check", "probes.json"), "Path to JSON probes file")
	flag.DurationVar(&timeout, "timeout", cfg.Backend.Timeout, "HTTP client timeout")
	flag.Parse()

	probes, err := loadProbes(probesPath)
	if err != nil {
		log.Fatalf("failed to load probes: %v", err)
	}

	catalog := repository.NewCatalogRepository(strings.TrimRight(baseURL, "/"), timeout, zap.NewNop())
	ctx := context.Background()

	results := checkReference(ctx, catalog)
	for _, p := range probes {
		results = append(results, runProbe(ctx, catalog, p))
	}

	printReport(results)

	breaking := 0
	for _, r := range results {
		if r.Err != nil && r.Critical {
			breaking++
		}
	}
	fmt.Printf("Breaking failures: %d\n", breaking)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadProbes(path string) ([]probe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file probeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Probes) == 0 {
		return nil, fmt.Errorf("no probes defined in %s", path)
	}
	return file.Probes, nil
}

func checkReference(ctx context.Context, catalog *repository.CatalogRepository) []result {
	timed := func(name string, fn func() (int, error)) result {
		start := time.Now()
		n, err := fn()
		return result{Name: name, Count: n, Duration: time.Since(start), Err: err, Critical: true}
	}
	return []result{
		timed(repository.PathSubjects, func() (int, error) {
			list, err := catalog.ListSubjects(ctx)
			return len(list), err
		}),
		timed(repository.PathExams, func() (int, error) {
			list, err := catalog.ListExams(ctx)
			return len(list), err
		}),
		timed(repository.PathTopics, func() (int, error) {
			list, err := catalog.ListTopics(ctx)
			return len(list), err
		}),
	}
}

func runProbe(ctx context.Context, catalog *repository.CatalogRepository, p probe) result {
	query := service.EncodeQuery(p.Filters)
	start := time.Now()
	questions, err := catalog.SearchQuestions(ctx, query)
	res := result{Name: p.Name, Query: query, Count: len(questions), Duration: time.Since(start), Err: err, Critical: p.Critical}
	if err == nil && len(questions) < p.MinCount {
		res.Err = fmt.Errorf("expected at least %d questions, got %d", p.MinCount, len(questions))
	}
	return res
}

func printReport(results []result) {
	fmt.Println("Backend contract check")
	fmt.Println(strings.Repeat("=", 72))
	for _, r := range results {
		status := "OK"
		if r.Err != nil {
			status = "FAIL"
			if !r.Critical {
				status = "WARN"
			}
		}
		fmt.Printf("%-5s %-28s count=%-5d %8s", status, r.Name, r.Count, r.Duration.Round(time.Millisecond))
		if r.Query != "" {
			fmt.Printf("  ?%s", r.Query)
		}
		fmt.Println()
		if r.Err != nil {
			fmt.Printf("      %v\n", r.Err)
		}
	}
	fmt.Println(strings.Repeat("=", 72))
}
