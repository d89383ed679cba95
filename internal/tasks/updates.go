package tasks

import "fmt"

// ProgressUpdate represents a progress event during task execution.
type ProgressUpdate struct {
	Phase   Phase   // Operation phase
	Step    int     // Current step number within phase
	Total   int     // Total steps in this phase
	Percent float64 // Server-reported progress for poller phases, exactly as sent
	Message string  // Human-readable message for display
	Data    any     // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Submit Phase = iota
	Poll
	Complete
	Fail
	DeviceAction
)

func (p Phase) String() string {
	switch p {
	case Submit:
		return "submit"
	case Poll:
		return "poll"
	case Complete:
		return "complete"
	case Fail:
		return "fail"
	case DeviceAction:
		return "device_action"
	default:
		return ""
	}
}

// sendProgress never blocks: when the consumer is behind the update is dropped.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func submittedUpdate(url string) ProgressUpdate {
	return ProgressUpdate{Phase: Submit, Message: fmt.Sprintf("Submitting %s...", url)}
}

func pollUpdate(s Snapshot) ProgressUpdate {
	return ProgressUpdate{Phase: Poll, Percent: s.Progress, Message: s.Message, Data: s}
}

func completedUpdate(s Snapshot) ProgressUpdate {
	return ProgressUpdate{Phase: Complete, Percent: s.Progress, Message: s.Message, Data: s}
}

func failedUpdate(s Snapshot) ProgressUpdate {
	msg := s.Message
	if s.Err != nil {
		msg = s.Err.Error()
	}
	return ProgressUpdate{Phase: Fail, Percent: s.Progress, Message: msg, Data: s}
}

func deviceActionUpdate(step, total int, r ActionResult) ProgressUpdate {
	mark := "✓"
	detail := r.Action
	if r.Err != nil {
		mark = "✗"
		detail = r.Err.Error()
	}
	return ProgressUpdate{
		Phase:   DeviceAction,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s: %s", step, total, mark, r.DeviceID, detail),
		Data:    r,
	}
}
