package quality

import (
	"fmt"
	"regexp"
	"strings"
)

// Thresholds are the lower score bounds of each category
type Thresholds struct {
	Excellent  float64 `yaml:"excellent" json:"excellent"`
	Good       float64 `yaml:"good" json:"good"`
	Acceptable float64 `yaml:"acceptable" json:"acceptable"`
}

// Validate checks the thresholds are ordered and inside [0,1]
func (t Thresholds) Validate() error {
	if t.Acceptable < 0 || t.Excellent > 1 {
		return fmt.Errorf("thresholds must lie in [0,1]")
	}
	if !(t.Excellent >= t.Good && t.Good >= t.Acceptable) {
		return fmt.Errorf("thresholds must satisfy excellent >= good >= acceptable")
	}
	return nil
}

// Options is the serializable form of a ScoringConfig
type Options struct {
	Thresholds     Thresholds `yaml:"thresholds"`
	FakePatterns   []string   `yaml:"fake_patterns"`
	ReleaseGroups  []string   `yaml:"release_groups"`
	VideoTokens    []string   `yaml:"video_tokens"`
	AudioTokens    []string   `yaml:"audio_tokens"`
	SourceTokens   []string   `yaml:"source_tokens"`
	QualityFlags   []string   `yaml:"quality_flags"`
	SourceFlags    []string   `yaml:"source_flags"`
	KnownUploaders []string   `yaml:"known_uploaders"`
}

// DefaultOptions returns the stock tables used by the predictor
func DefaultOptions() Options {
	return Options{
		Thresholds: Thresholds{
			Excellent:  0.85,
			Good:       0.70,
			Acceptable: 0.55,
		},
		FakePatterns: []string{
			`\b(fake|scam|virus|malware)\b`,
			`\b(password|survey|download\.rar)\b`,
			`\b(click here|visit site)\b`,
			`\.(exe|bat|scr|vbs)$`,
			`\b(codecs?\s+required)\b`,
		},
		ReleaseGroups:  []string{"RARBG", "YTS", "ETRG", "x264", "BluRay", "WEB-DL", "BRRip"},
		VideoTokens:    []string{"1080p", "720p", "4K", "UHD", "HDR"},
		AudioTokens:    []string{"DTS", "AC3", "AAC", "FLAC", "Atmos"},
		SourceTokens:   []string{"BluRay", "WEB-DL", "WEBRip", "DVDRip"},
		QualityFlags:   []string{"1080p", "720p", "4k", "uhd"},
		SourceFlags:    []string{"bluray", "web-dl", "webrip"},
		KnownUploaders: []string{"rarbg", "yts", "ettv", "eztv", "tgx"},
	}
}

// ScoringConfig is the compiled, read-only configuration of the grading pipeline.
// Build it with NewScoringConfig; it must not be modified afterwards.
type ScoringConfig struct {
	thresholds     Thresholds
	fakePatterns   []*regexp.Regexp
	releaseGroups  []string
	videoTokens    []string
	audioTokens    []string
	sourceTokens   []string
	qualityFlags   []string
	sourceFlags    []string
	knownUploaders []string
	classifier     Classifier
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// NewScoringConfig compiles opts into a ScoringConfig
func NewScoringConfig(opts Options) (*ScoringConfig, error) {
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, err
	}

	cfg := &ScoringConfig{
		thresholds:     opts.Thresholds,
		releaseGroups:  lowerAll(opts.ReleaseGroups),
		videoTokens:    lowerAll(opts.VideoTokens),
		audioTokens:    lowerAll(opts.AudioTokens),
		sourceTokens:   lowerAll(opts.SourceTokens),
		qualityFlags:   lowerAll(opts.QualityFlags),
		sourceFlags:    lowerAll(opts.SourceFlags),
		knownUploaders: lowerAll(opts.KnownUploaders),
	}

	for _, p := range opts.FakePatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid fake pattern %q: %w", p, err)
		}
		cfg.fakePatterns = append(cfg.fakePatterns, re)
	}

	return cfg, nil
}

// MustDefault returns a ScoringConfig built from DefaultOptions
func MustDefault() *ScoringConfig {
	cfg, err := NewScoringConfig(DefaultOptions())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Thresholds returns the category thresholds
func (c *ScoringConfig) Thresholds() Thresholds {
	return c.thresholds
}

// Classifier returns the configured classifier, or nil
func (c *ScoringConfig) Classifier() Classifier {
	return c.classifier
}

// WithClassifier returns a copy of c that scores with the given classifier.
// Passing nil yields a rule-only config.
func (c *ScoringConfig) WithClassifier(cl Classifier) *ScoringConfig {
	next := *c
	next.classifier = cl
	return &next
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
