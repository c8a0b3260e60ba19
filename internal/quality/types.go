package quality

// Category is the coarse quality bucket a score falls into
type Category string

const (
	CategoryExcellent  Category = "excellent"
	CategoryGood       Category = "good"
	CategoryAcceptable Category = "acceptable"
	CategoryPoor       Category = "poor"
)

// Categories lists every category from best to worst
var Categories = []Category{CategoryExcellent, CategoryGood, CategoryAcceptable, CategoryPoor}

// ParseCategory returns the category named by s
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Recommendation is the actionable decision for a candidate
type Recommendation string

const (
	RecommendRejectFake        Recommendation = "reject_fake"
	RecommendDownloadNow       Recommendation = "download_immediately"
	RecommendDownload          Recommendation = "download_recommended"
	RecommendDownloadIfNothing Recommendation = "download_if_no_better_option"
	RecommendRejectPoor        Recommendation = "reject_poor_quality"
)

// CandidateRecord is a single search result to be graded
type CandidateRecord struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	SizeBytes   int64  `json:"size"`
	Seeders     int64  `json:"seeders"`
	Leechers    int64  `json:"leechers"`
	Uploader    string `json:"uploader,omitempty"`
}

// Normalized returns a copy with negative counters floored to zero
func (r CandidateRecord) Normalized() CandidateRecord {
	if r.SizeBytes < 0 {
		r.SizeBytes = 0
	}
	if r.Seeders < 0 {
		r.Seeders = 0
	}
	if r.Leechers < 0 {
		r.Leechers = 0
	}
	return r
}

// FeatureVector is the fixed set of numeric features derived from a candidate.
// Field order matches Values and FeatureNames.
type FeatureVector struct {
	SizeMB             float64 `json:"size_mb"`
	Seeders            float64 `json:"seeders"`
	Leechers           float64 `json:"leechers"`
	SeedLeechRatio     float64 `json:"seed_leech_ratio"`
	TitleLength        float64 `json:"title_length"`
	HasYear            float64 `json:"has_year"`
	HasQuality         float64 `json:"has_quality"`
	HasSource          float64 `json:"has_source"`
	KnownReleaseGroups float64 `json:"known_release_groups"`
	FakeIndicators     float64 `json:"fake_indicators"`
	VideoQualityScore  float64 `json:"video_quality_score"`
	AudioQualityScore  float64 `json:"audio_quality_score"`
	SourceQualityScore float64 `json:"source_quality_score"`
	UploaderReputation float64 `json:"uploader_reputation"`
}

// FeatureNames lists feature columns in classifier order
var FeatureNames = []string{
	"size_mb", "seeders", "leechers", "seed_leech_ratio",
	"title_length", "has_year", "has_quality", "has_source",
	"known_release_groups", "fake_indicators", "video_quality_score",
	"audio_quality_score", "source_quality_score", "uploader_reputation",
}

// NumFeatures is the length of Values()
const NumFeatures = 14

// Values returns the features as a slice in FeatureNames order
func (f FeatureVector) Values() []float64 {
	return []float64{
		f.SizeMB, f.Seeders, f.Leechers, f.SeedLeechRatio,
		f.TitleLength, f.HasYear, f.HasQuality, f.HasSource,
		f.KnownReleaseGroups, f.FakeIndicators, f.VideoQualityScore,
		f.AudioQualityScore, f.SourceQualityScore, f.UploaderReputation,
	}
}

// QualityVerdict is the graded result for one candidate
type QualityVerdict struct {
	QualityScore    float64        `json:"quality_score"`
	QualityCategory Category       `json:"quality_category"`
	IsFake          bool           `json:"is_fake"`
	FakeProbability float64        `json:"fake_probability"`
	Recommendation  Recommendation `json:"recommendation"`
	Features        FeatureVector  `json:"features"`
	Scorer          string         `json:"scorer"`
	// Fallback is set when a configured classifier failed and the rule scorer was used
	Fallback bool `json:"fallback,omitempty"`
}
