// Command engine runs the wallwars search engine as a line-framed stdio
// service: each line read from stdin is one JSON BGS request, each line
// written to stdout is that request's JSON response. Intentionally thin —
// flag parsing, logging setup, and model loading, then delegation to
// internal/protocol/internal/session for everything that matters.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wallwars/internal/batch"
	"wallwars/internal/evalcache"
	"wallwars/internal/evaluator"
	"wallwars/internal/protocol"
	"wallwars/internal/session"
)

const evalCacheCapacity = 4096

func main() {
	modelPath := flag.String("model", "", "path to an ONNX model file; empty runs the heuristic evaluator")
	libPath := flag.String("lib", "", "path to the onnxruntime shared library")
	instances := flag.Int("instances", 2, "number of pre-warmed ONNX Runtime sessions")
	batchSize := flag.Int("batch-size", 64, "maximum requests coalesced into one dispatched batch")
	queueSize := flag.Int("queue-size", 4096, "inference request queue capacity")
	baseSeed := flag.Uint("base-seed", 42, "base seed XORed with each session's bgsId hash")
	samples := flag.Int("samples", 1000, "MCTS samples spent per evaluate_position call")
	modelColumns := flag.Int("model-columns", 8, "model's padded board width")
	modelRows := flag.Int("model-rows", 8, "model's padded board height")
	maxParallel := flag.Int("max-parallel-samples", 4, "concurrent selection/expansion tasks per session")
	maxSessions := flag.Int("max-sessions", 256, "hard cap on concurrently live sessions")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	eval, err := buildEvaluator(*modelPath, *libPath, *instances, *batchSize, *queueSize, *modelColumns, *modelRows)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize evaluator")
	}

	mgr := session.NewManager(eval, session.ManagerConfig{
		SamplesPerMove:     *samples,
		MaxParallelSamples: *maxParallel,
		BaseSeed:           uint32(*baseSeed),
		ModelColumns:       *modelColumns,
		ModelRows:          *modelRows,
		MaxSessions:        *maxSessions,
	})

	log.Info().Str("model", *modelPath).Int("instances", *instances).Int("samples", *samples).
		Msg("engine ready, reading requests from stdin")

	if err := protocol.Serve(context.Background(), os.Stdin, os.Stdout, mgr); err != nil {
		log.Error().Err(err).Msg("protocol loop exited with an error")
		os.Exit(1)
	}
}

// buildEvaluator wires a NN-backed evaluator over a freshly spawned
// batching pool when modelPath is given, or falls back to the
// distance-heuristic evaluator otherwise — either way wrapped in an
// evalcache.Cache so repeated positions across a session's search don't
// re-pay evaluation cost.
func buildEvaluator(modelPath, libPath string, instances, batchSize, queueSize, columns, rows int) (evaluator.Evaluator, error) {
	if modelPath == "" {
		log.Warn().Msg("no -model given; falling back to the heuristic evaluator")
		return evalcache.New(evaluator.NewHeuristic(), evalCacheCapacity), nil
	}

	onnxCfg := batch.OnnxConfig{
		InputFeatures: 9 * columns * rows,
		PolicySize:    2*columns*rows + 8,
		SharedLibPath: libPath,
	}

	models := make([]batch.Model, instances)
	for i := 0; i < instances; i++ {
		inst, err := batch.NewOnnxInstance(modelPath, onnxCfg)
		if err != nil {
			return nil, fmt.Errorf("cmd/engine: initialize onnx instance %d: %w", i, err)
		}
		models[i] = inst
	}

	pool, err := batch.New(models, batch.Config{BatchSize: batchSize, QueueCapacity: queueSize})
	if err != nil {
		return nil, fmt.Errorf("cmd/engine: construct batched model: %w", err)
	}

	nn := evaluator.NewBatched(pool, columns, rows)
	return evalcache.New(nn, evalCacheCapacity), nil
}
