package workflow

// AggregateLines computes a batch order's status from its order lines.
// The result is a pure function of the line statuses:
//
//   - every line cancelled            -> cancelled
//   - every active line completed     -> completed
//   - every active line still pending -> pending
//   - anything else                   -> in_progress
//
// Cancelled lines are excluded from the completion requirement but must
// not be the only lines for the batch to count as completed.
func AggregateLines(lines []LineStatus) BatchStatus {
	if len(lines) == 0 {
		return BatchPending
	}

	var active, completed, pending int
	for _, s := range lines {
		if s == LineCancelled {
			continue
		}
		active++
		switch s {
		case LineCompleted:
			completed++
		case LinePending:
			pending++
		}
	}

	switch {
	case active == 0:
		return BatchCancelled
	case completed == active:
		return BatchCompleted
	case pending == active:
		return BatchPending
	default:
		return BatchInProgress
	}
}
