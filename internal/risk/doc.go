// Package risk scores content for behavioral and reputational risk. A score
// combines a deterministic keyword ruleset with an optional probabilistic
// toxicity classifier, and is always bounded to [0,1].
package risk
