package review

import (
	"errors"
	"fmt"
)

// Result returns these while the job has not reached a terminal state.
var (
	ErrJobPending    = errors.New("job is pending")
	ErrJobProcessing = errors.New("job is still processing")
)

// JobFailedError reports that a job finished in the failed state.
type JobFailedError struct {
	Message string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("job failed: %s", e.Message)
}
