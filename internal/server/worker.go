package server

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/hweitzel/mixdesign/internal/design"
	"github.com/hweitzel/mixdesign/internal/opt"
	"github.com/hweitzel/mixdesign/internal/store"
)

// runJob executes a design generation job in the background
func (s *Server) runJob(jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		slog.Error("job disappeared before start", "id", jobID)
		return
	}
	config := job.Config

	s.jobManager.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})

	slog.Info("starting design generation", "id", jobID,
		"algorithm", config.Algorithm, "seed", config.Seed)

	tw, err := store.NewTraceWriter(s.dataDir, jobID)
	if err != nil {
		slog.Warn("trace disabled", "id", jobID, "error", err)
		tw = nil
	}

	tracker := design.NewTracker(0.01)

	progress := func(stage, iteration int, x *mat.Dense) {
		dmax, derr := design.Dmax(x)
		if derr != nil {
			return
		}
		minDist := design.MinDistance(x)

		s.jobManager.UpdateJob(jobID, func(j *Job) {
			j.Stage = stage
			j.Iteration = iteration
			j.Dmax = dmax
			j.MinDistance = minDist
		})

		if tracker.Update(dmax) {
			slog.Debug("design improved", "id", jobID,
				"stage", stage, "iteration", iteration, "dmax", dmax)
		}

		if tw != nil {
			tw.Write(store.TraceEntry{
				Stage:       stage,
				Iteration:   iteration,
				Dmax:        dmax,
				MinDistance: minDist,
				Timestamp:   time.Now().UnixMilli(),
			})
		}

		s.jobManager.broadcaster.Broadcast(ProgressEvent{
			JobID:       jobID,
			State:       StateRunning,
			Stage:       stage,
			Iteration:   iteration,
			Dmax:        dmax,
			MinDistance: minDist,
			Timestamp:   time.Now().UnixMilli(),
		})
	}

	result, err := s.generateDesign(config, progress)

	if tw != nil {
		if cerr := tw.Close(); cerr != nil {
			slog.Warn("failed to close trace", "id", jobID, "error", cerr)
		}
	}

	if err != nil {
		s.markJobFailed(jobID, err)
		return
	}

	saved := store.NewSavedDesign(jobID, config, result)
	if err := s.store.SaveDesign(jobID, saved); err != nil {
		s.markJobFailed(jobID, fmt.Errorf("saving design: %w", err))
		return
	}

	now := time.Now()
	s.jobManager.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Dmax = result.Report.Dmax
		j.MinDistance = result.Report.MinDistance
		j.Report = &result.Report
		j.EndTime = &now
	})

	s.jobManager.broadcaster.Broadcast(ProgressEvent{
		JobID:       jobID,
		State:       StateCompleted,
		Dmax:        result.Report.Dmax,
		MinDistance: result.Report.MinDistance,
		Timestamp:   now.UnixMilli(),
	})
	s.jobManager.broadcaster.CleanupJob(jobID)

	slog.Info("design generation completed", "id", jobID,
		"dmax", result.Report.Dmax,
		"minDistance", result.Report.MinDistance,
		"maxAbsCorrelation", result.Report.MaxAbsCorrelation,
		"duration", time.Since(job.StartTime))
}

func (s *Server) generateDesign(config JobConfig, progress design.StageProgressFunc) (*design.Design, error) {
	genCfg := config.GenerateConfig()

	switch config.Algorithm {
	case "mayfly":
		return opt.GenerateDesign(opt.NewMayfly(config.MaxIter, config.PopSize, config.Seed), genCfg)
	case "", "adaptive":
		genCfg.Progress = progress
		rng := rand.New(rand.NewSource(config.Seed))
		return design.Generate(rng, genCfg)
	default:
		return nil, fmt.Errorf("unknown algorithm: %s", config.Algorithm)
	}
}

func (s *Server) markJobFailed(jobID string, err error) {
	slog.Error("design generation failed", "id", jobID, "error", err)

	now := time.Now()
	s.jobManager.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &now
	})

	s.jobManager.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateFailed,
		Timestamp: now.UnixMilli(),
	})
	s.jobManager.broadcaster.CleanupJob(jobID)
}
