package risk

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/linnemanlabs/go-core/log"
)

const (
	defaultToxicThreshold  = 0.7
	defaultSevereThreshold = 0.5
	defaultToxicWeight     = 1.0
	defaultSevereWeight    = 1.5
	defaultTruncateChars   = 512
)

// Prediction is one per-label probability from a toxicity classifier.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier produces per-label toxicity probabilities for a piece of text.
// Implementations may be slow or unavailable; the scorer treats any error as
// "no classifier signal" and degrades to keyword-only scoring.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Prediction, error)
}

// Assessment is the outcome of scoring one piece of content.
type Assessment struct {
	Score float64
	Flags []string
}

// Options tunes scoring behavior. Zero values fall back to defaults; the
// increments themselves (+0.3 per keyword, p and weighted p for ML labels)
// are the contract inherited from the rule set and are not configurable.
type Options struct {
	// ToxicThreshold gates the "toxic" label contribution (default 0.7).
	ToxicThreshold float64
	// SevereThreshold gates the "severe_toxic" label contribution (default 0.5).
	SevereThreshold float64
	// ToxicWeight multiplies the "toxic" probability (default 1.0).
	ToxicWeight float64
	// SevereWeight multiplies the "severe_toxic" probability (default 1.5).
	SevereWeight float64
	// TruncateChars caps the characters sent to the classifier (default 512).
	// A rough stand-in for a token budget, not an exact cut.
	TruncateChars int
	// ClassifierTimeout bounds each classifier call; 0 means no timeout.
	ClassifierTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.ToxicThreshold == 0 {
		o.ToxicThreshold = defaultToxicThreshold
	}
	if o.SevereThreshold == 0 {
		o.SevereThreshold = defaultSevereThreshold
	}
	if o.ToxicWeight == 0 {
		o.ToxicWeight = defaultToxicWeight
	}
	if o.SevereWeight == 0 {
		o.SevereWeight = defaultSevereWeight
	}
	if o.TruncateChars == 0 {
		o.TruncateChars = defaultTruncateChars
	}
	return o
}

// Scorer computes risk assessments. Safe for concurrent use.
type Scorer struct {
	keywords   []string // lowercased, in configured order
	classifier Classifier
	opts       Options
	logger     log.Logger
}

// New creates a Scorer over the given keyword list. classifier may be nil,
// in which case scoring is keyword-only.
func New(keywords []string, classifier Classifier, logger log.Logger, opts Options) *Scorer {
	if logger == nil {
		logger = log.Nop()
	}
	return &Scorer{
		keywords:   NormalizeKeywords(keywords),
		classifier: classifier,
		opts:       opts.withDefaults(),
		logger:     logger,
	}
}

// Score assesses one piece of content. It never fails: empty content scores
// zero, and classifier errors or timeouts silently degrade to keyword-only.
func (s *Scorer) Score(ctx context.Context, text string) Assessment {
	var a Assessment
	if text == "" {
		return a
	}

	lowered := strings.ToLower(text)
	for _, kw := range s.keywords {
		// each distinct keyword contributes once regardless of repetition
		if containsWholeWord(lowered, kw) {
			a.Score += 0.3
			a.Flags = append(a.Flags, "Keyword: "+kw)
		}
	}

	if s.classifier != nil {
		s.applyClassifier(ctx, truncateChars(text, s.opts.TruncateChars), &a)
	}

	if a.Score > 1.0 {
		a.Score = 1.0
	}
	if a.Score < 0 {
		a.Score = 0
	}
	return a
}

func (s *Scorer) applyClassifier(ctx context.Context, text string, a *Assessment) {
	if s.opts.ClassifierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ClassifierTimeout)
		defer cancel()
	}

	preds, err := s.classifier.Classify(ctx, text)
	if err != nil {
		// Soft degradation: the keyword pass already ran, this item just
		// loses its ML signal.
		s.logger.Warn(ctx, "classifier unavailable, keyword-only scoring", "error", err.Error())
		return
	}

	for _, p := range preds {
		switch p.Label {
		case "toxic":
			if p.Score > s.opts.ToxicThreshold {
				a.Score += p.Score * s.opts.ToxicWeight
				a.Flags = append(a.Flags, "ML: Toxic")
			}
		case "severe_toxic":
			if p.Score > s.opts.SevereThreshold {
				a.Score += p.Score * s.opts.SevereWeight
				a.Flags = append(a.Flags, "ML: Severe Toxic")
			}
		}
	}
}

// containsWholeWord reports whether term occurs in s with word-boundary
// semantics on both sides ("class" must not match inside "classic").
func containsWholeWord(s, term string) bool {
	if term == "" {
		return false
	}
	for i := 0; i+len(term) <= len(s); {
		j := strings.Index(s[i:], term)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(term)
		if boundaryOK(s, start, end) {
			return true
		}
		i = start + 1
	}
	return false
}

func boundaryOK(s string, start, end int) bool {
	var prev, next rune
	if start > 0 {
		prev, _ = utf8.DecodeLastRuneInString(s[:start])
	}
	if end < len(s) {
		next, _ = utf8.DecodeRuneInString(s[end:])
	}
	return !isWordRune(prev) && !isWordRune(next)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// truncateChars cuts s to at most n runes without splitting a rune.
func truncateChars(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
