package quality

import (
	"strings"
	"unicode/utf8"
)

const bytesPerMB = 1024 * 1024

const (
	knownUploaderReputation   = 0.8
	neutralUploaderReputation = 0.5
)

// separatorReplacer turns release-name separators into spaces so that
// word-boundary patterns see "free_download_password" as separate words.
var separatorReplacer = strings.NewReplacer("_", " ", ".", " ")

// Extract derives the feature vector for a candidate. It never fails.
func Extract(rec CandidateRecord, cfg *ScoringConfig) FeatureVector {
	rec = rec.Normalized()

	title := strings.ToLower(rec.Title)
	description := strings.ToLower(rec.Description)
	uploader := strings.ToLower(rec.Uploader)

	fv := FeatureVector{
		Seeders:     float64(rec.Seeders),
		Leechers:    float64(rec.Leechers),
		TitleLength: float64(utf8.RuneCountInString(title)),
	}

	if rec.SizeBytes > 0 {
		fv.SizeMB = float64(rec.SizeBytes) / bytesPerMB
	}
	fv.SeedLeechRatio = float64(rec.Seeders) / float64(max(rec.Leechers, 1))

	if yearPattern.MatchString(title) {
		fv.HasYear = 1
	}
	if containsAny(title, cfg.qualityFlags) {
		fv.HasQuality = 1
	}
	if containsAny(title, cfg.sourceFlags) {
		fv.HasSource = 1
	}

	fv.KnownReleaseGroups = float64(countContained(title, cfg.releaseGroups))
	fv.VideoQualityScore = float64(countContained(title, cfg.videoTokens))
	fv.AudioQualityScore = float64(countContained(title, cfg.audioTokens))
	fv.SourceQualityScore = float64(countContained(title, cfg.sourceTokens))
	fv.FakeIndicators = float64(countFakeIndicators(cfg, title, description))

	fv.UploaderReputation = uploaderReputation(uploader, cfg.knownUploaders)

	return fv
}

// countFakeIndicators counts the fake patterns matching any of texts, raw or
// with separators normalised. Each pattern counts at most once.
func countFakeIndicators(cfg *ScoringConfig, texts ...string) int {
	var candidates []string
	for _, t := range texts {
		if t == "" {
			continue
		}
		candidates = append(candidates, t, separatorReplacer.Replace(t))
	}

	n := 0
	for _, re := range cfg.fakePatterns {
		for _, text := range candidates {
			if re.MatchString(text) {
				n++
				break
			}
		}
	}
	return n
}

func uploaderReputation(uploader string, known []string) float64 {
	if uploader != "" && containsAny(uploader, known) {
		return knownUploaderReputation
	}
	return neutralUploaderReputation
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func countContained(s string, tokens []string) int {
	n := 0
	for _, t := range tokens {
		if strings.Contains(s, t) {
			n++
		}
	}
	return n
}
