package domain

// BroadcastTarget addresses a shadow message to every module that runs
// after the source in the current orchestration pass.
const BroadcastTarget = "*"

// Metric names a shadow message may adjust. Shadows touch metrics only,
// never the decision path a module takes.
const (
	MetricConfidence   = "confidence"
	MetricValidity     = "validity"
	MetricVerification = "verification"
)

// ShadowMessage is a bounded, hop-limited metric nudge from one module
// toward another. TTL counts remaining module observations.
type ShadowMessage struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Metric string  `json:"metric"`
	Delta  float64 `json:"delta"`
	TTL    int     `json:"ttl"`
	Seq    int     `json:"seq"`
}

// ShadowView is the cross-module channel surface a reasoning module sees
// during its run. It lives for one adjudication call only.
type ShadowView interface {
	// Emit enqueues a metric nudge for modules that run later in the pass.
	Emit(source, target, metric string, delta float64, ttl int) error
	// DrainFor returns the live messages addressed to target, consuming
	// one TTL hop per message.
	DrainFor(target string) []ShadowMessage
}
