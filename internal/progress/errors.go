package progress

import (
	"fmt"
	"strings"
)

// ErrIneligibleForFinal indicates the learner has not completed every
// lesson. The final attempt is rejected without touching any state.
type ErrIneligibleForFinal struct {
	// Missing lists the lesson ids not yet completed.
	Missing []string
}

func (e *ErrIneligibleForFinal) Error() string {
	if len(e.Missing) == 0 {
		return "not eligible for the final assessment"
	}
	return fmt.Sprintf("not eligible for the final assessment: %d lesson(s) incomplete (%s)",
		len(e.Missing), strings.Join(e.Missing, ", "))
}
