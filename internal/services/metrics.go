package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// subscriptionsTotal counts subscribe attempts by outcome
	// (created|invalid|conflict|error).
	subscriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchmate",
			Name:      "subscriptions_total",
			Help:      "Subscription attempts by result.",
		},
		[]string{"result"},
	)

	// welcomeEmailsTotal counts welcome email deliveries (sent|failed).
	welcomeEmailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchmate",
			Name:      "welcome_emails_total",
			Help:      "Welcome email delivery attempts by result.",
		},
		[]string{"result"},
	)

	// assistantRepliesTotal counts assistant replies by source
	// (rule|external|generic|apology|unconfigured).
	assistantRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchmate",
			Name:      "assistant_replies_total",
			Help:      "Assistant replies by source.",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(subscriptionsTotal, welcomeEmailsTotal, assistantRepliesTotal)
}
