package domain

// Tier identifies which resolution stage produced an answer.
type Tier string

const (
	TierFAQ    Tier = "faq"
	TierRule   Tier = "rule"
	TierRemote Tier = "remote"
)

// Answer is the resolved reply to a Question.
type Answer struct {
	Text string
	Tier Tier
	// MatchedKey is the FAQ phrase or rule trigger that fired; empty for the
	// remote tier.
	MatchedKey string
	// Outcome is only set for TierRemote.
	Outcome *RemoteOutcome
}

// Failed reports whether the answer carries a remote or configuration failure.
func (a Answer) Failed() bool {
	return a.Outcome != nil && !a.Outcome.OK()
}
