package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Ciriera/capstone-planner/internal/dto"
	"github.com/Ciriera/capstone-planner/internal/importer"
	"github.com/Ciriera/capstone-planner/internal/service"
	"github.com/Ciriera/capstone-planner/pkg/config"
	"github.com/Ciriera/capstone-planner/pkg/export"
	"github.com/Ciriera/capstone-planner/pkg/logger"
)

func main() {
	var (
		algorithm   = flag.String("algorithm", "", "optimization algorithm: genetic, simplex or swarm (default from config)")
		projects    = flag.String("projects", "projects.csv", "projects CSV file")
		instructors = flag.String("instructors", "instructors.csv", "instructors CSV file")
		classrooms  = flag.String("classrooms", "classrooms.csv", "classrooms CSV file")
		timeslots   = flag.String("timeslots", "timeslots.csv", "timeslots CSV file")
		output      = flag.String("output", "schedule.csv", "output schedule CSV file")
		seed        = flag.Int64("seed", 0, "random seed (0 = time-based)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	problem, err := importer.LoadProblem(importer.Files{
		Projects:    *projects,
		Instructors: *instructors,
		Classrooms:  *classrooms,
		Timeslots:   *timeslots,
	})
	if err != nil {
		logr.Sugar().Fatalw("failed to load problem instance", "error", err)
	}

	planner := service.NewPlannerService(cfg, nil, logr, service.NewMetricsService())
	if err := planner.Initialize(problem); err != nil {
		logr.Sugar().Fatalw("failed to initialize planner", "error", err)
	}

	result := planner.Optimize(context.Background(), dto.OptimizeRequest{
		Algorithm: *algorithm,
		Seed:      *seed,
	})

	breakdown, _ := json.MarshalIndent(result.Metrics, "", "  ")
	fmt.Printf("run %s (%s) finished with status %s in %.3fs\n", result.RunID, result.Algorithm, result.Status, result.ExecutionTime)
	fmt.Println(string(breakdown))
	if result.Message != "" {
		fmt.Println(result.Message)
	}

	if result.Status != dto.StatusCompleted {
		return
	}

	data, err := export.NewCSVExporter().Render(export.ScheduleDataset(result.Schedule))
	if err != nil {
		logr.Sugar().Fatalw("failed to render schedule", "error", err)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		logr.Sugar().Fatalw("failed to write schedule", "error", err, "path", *output)
	}
	logr.Sugar().Infow("schedule written", "path", *output, "assignments", len(result.Schedule))
}
