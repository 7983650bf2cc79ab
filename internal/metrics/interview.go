package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the domain counters.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultTimeout  = "timeout"
	ResultReplayed = "replayed"
	ResultPartial  = "partial"
)

var (
	interviewsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interviews_started_total",
		Help:      "Interviews started",
	})

	interviewsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interviews_completed_total",
		Help:      "Interviews that reached the completed phase",
	})

	interviewMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interview_messages_total",
		Help:      "Candidate messages handled, by result",
	}, []string{"result"})

	phaseTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interview_phase_transitions_total",
		Help:      "Phase transitions applied to interviews",
	}, []string{"from", "to"})

	collaboratorCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collaborator_calls_total",
		Help:      "Calls to interviewer and judge collaborators, by result",
	}, []string{"collaborator", "result"})

	collaboratorLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "collaborator_call_duration_seconds",
		Help:      "Duration of collaborator calls in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 20, 30},
	}, []string{"collaborator"})

	scoringRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scoring_runs_total",
		Help:      "Score computations, by result",
	}, []string{"result"})

	resumeAnalyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resume_analyses_total",
		Help:      "Resume analyses, by result",
	}, []string{"result"})
)

func RecordInterviewStarted() {
	interviewsStarted.Inc()
}

func RecordInterviewCompleted() {
	interviewsCompleted.Inc()
}

func RecordMessage(result string) {
	interviewMessages.WithLabelValues(result).Inc()
}

func RecordPhaseTransition(from, to string) {
	phaseTransitions.WithLabelValues(from, to).Inc()
}

// RecordCollaboratorCall tracks one interviewer or judge call.
func RecordCollaboratorCall(collaborator, result string, elapsed time.Duration) {
	collaboratorCalls.WithLabelValues(collaborator, result).Inc()
	collaboratorLatency.WithLabelValues(collaborator).Observe(elapsed.Seconds())
}

func RecordScoring(result string) {
	scoringRuns.WithLabelValues(result).Inc()
}

func RecordResumeAnalysis(result string) {
	resumeAnalyses.WithLabelValues(result).Inc()
}
