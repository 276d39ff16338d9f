// Package ucisvc runs a UCI chess engine as a supervised, long-lived
// subprocess and answers best-move queries against it.
//
// A Supervisor owns one engine process. It performs the UCI handshake, runs
// one analysis at a time in arrival order, bounds every search with a
// deadline derived from its parameters, and restarts the engine once it has
// died. Callers never see protocol output from a previous request.
//
// # Basic Usage
//
// For a single query, use Analyze:
//
//	result, err := ucisvc.Analyze(ctx, ucisvc.Request{
//	    Position: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
//	    Depth:    12,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if result.Success() {
//	    fmt.Println(result.Move)
//	}
//
// # Long-lived Supervisors
//
// Services keep one Supervisor for their lifetime:
//
//	err := ucisvc.WithSupervisor(ctx, func(s *ucisvc.Supervisor) error {
//	    result := s.Analyze(ctx, ucisvc.Request{Position: fen, TimeBudget: 2 * time.Second})
//	    if !result.Success() {
//	        return fmt.Errorf("analysis failed (%s): %w", result.Failure, result.Err)
//	    }
//	    fmt.Println(result.Move)
//	    return nil
//	},
//	    ucisvc.WithLogger(slog.Default()),
//	    ucisvc.WithThreads(2),
//	)
//
// Analysis failures are reported in Result.Failure rather than as errors:
// timeout, no_legal_move, process_death, protocol_error, spawn_failure,
// not_ready and canceled.
//
// # Engine Location
//
// Without WithEnginePath the engine is located by name ("stockfish"): first
// in the working directory, then on $PATH, then in common install
// directories.
package ucisvc
