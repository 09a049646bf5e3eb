package automod

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventProcessCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_event_processed",
	Help: "Number of events processed, by kind",
}, []string{"kind"})

var eventProcessDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "automod_event_duration_sec",
	Help:    "Time to process an event through all rules",
	Buckets: prometheus.ExponentialBucketsRange(0.0001, 2.0, 15),
}, []string{"kind"})

var ruleErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_rule_errors",
	Help: "Number of rule executions that returned an error",
}, []string{"kind"})

var verdictCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_verdicts",
	Help: "Number of verdicts raised by detectors",
}, []string{"source", "category"})

var actionExecutedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_actions_executed",
	Help: "Number of moderation actions handed to the action sink",
}, []string{"kind"})

var actionErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_action_errors",
	Help: "Number of action executions that failed",
}, []string{"kind"})

var notificationSentCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_notifications_sent",
	Help: "Number of moderator alerts sent after throttling",
})

var notificationSuppressedCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_notifications_suppressed",
	Help: "Number of moderator alerts suppressed by the cooldown",
})

var janitorEvictionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_janitor_evictions",
	Help: "Number of counter entries removed by the janitor, by series",
}, []string{"series"})
