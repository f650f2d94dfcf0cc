package pipeline

import "fmt"

// Stage names a pipeline step in errors and logs.
type Stage string

const (
	StageConfig    Stage = "config"
	StageExtract   Stage = "extract"
	StageRates     Stage = "rates"
	StageTransform Stage = "transform"
	StageLoadFile  Stage = "load-file"
	StageConnect   Stage = "connect"
	StageLoadTable Stage = "load-table"
	StageQuery     Stage = "query"
	StageClose     Stage = "close"
)

// StageError reports which stage aborted the run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func fail(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
