package quality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractReleaseTitle(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fv := Extract(CandidateRecord{
		Title:     "Movie.2023.1080p.BluRay.x264-RARBG",
		SizeBytes: 8_000_000_000,
		Seeders:   200,
		Leechers:  10,
	}, MustDefault())

	require.InDelta(8_000_000_000.0/(1024*1024), fv.SizeMB, 1e-9)
	require.Equal(200.0, fv.Seeders)
	require.Equal(10.0, fv.Leechers)
	require.Equal(20.0, fv.SeedLeechRatio)
	require.Equal(float64(len("Movie.2023.1080p.BluRay.x264-RARBG")), fv.TitleLength)
	require.Equal(1.0, fv.HasYear)
	require.Equal(1.0, fv.HasQuality)
	require.Equal(1.0, fv.HasSource)
	// rarbg, x264 and bluray are all listed release groups
	require.Equal(3.0, fv.KnownReleaseGroups)
	require.Equal(0.0, fv.FakeIndicators)
	require.Equal(1.0, fv.VideoQualityScore)
	require.Equal(0.0, fv.AudioQualityScore)
	require.Equal(1.0, fv.SourceQualityScore)
	require.Equal(0.5, fv.UploaderReputation)
}

func TestExtractZeroLeechers(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cfg := MustDefault()
	for _, seeders := range []int64{0, 1, 7, 5000} {
		fv := Extract(CandidateRecord{Title: "x", Seeders: seeders}, cfg)
		require.Equal(float64(seeders), fv.SeedLeechRatio, "seeders=%d", seeders)
	}
}

func TestExtractEmptyRecord(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fv := Extract(CandidateRecord{}, MustDefault())
	for i, v := range fv.Values() {
		require.False(math.IsNaN(v), "feature %s is NaN", FeatureNames[i])
	}
	require.Equal(0.0, fv.SizeMB)
	require.Equal(0.0, fv.SeedLeechRatio)
	require.Equal(0.0, fv.FakeIndicators)
	require.Equal(0.5, fv.UploaderReputation)
}

func TestExtractNegativeCountersFloored(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fv := Extract(CandidateRecord{Title: "x", SizeBytes: -5, Seeders: -3, Leechers: -9}, MustDefault())
	require.Equal(0.0, fv.SizeMB)
	require.Equal(0.0, fv.Seeders)
	require.Equal(0.0, fv.Leechers)
	require.Equal(0.0, fv.SeedLeechRatio)
}

func TestExtractFakeIndicators(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	tests := []struct {
		name        string
		title       string
		description string
		want        float64
	}{
		{"clean release", "Show.S01E01.720p.WEB-DL", "", 0},
		{"executable with password bait", "FREE_DOWNLOAD_password_required.exe", "", 2},
		{"executable only", "movie.scr", "", 1},
		{"scam words in description", "Movie 2020", "this is a FAKE, click here", 2},
		{"codec bait", "Movie 2020 codec required", "", 1},
		{"same pattern twice counts once", "virus scam malware", "fake", 1},
		{"extension in description", "Movie", "setup.exe", 1},
	}

	cfg := MustDefault()
	for _, tc := range tests {
		fv := Extract(CandidateRecord{Title: tc.title, Description: tc.description}, cfg)
		require.Equal(tc.want, fv.FakeIndicators, tc.name)
	}
}

func TestExtractUploaderReputation(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cfg := MustDefault()
	require.Equal(0.8, Extract(CandidateRecord{Uploader: "TGxGoodies"}, cfg).UploaderReputation)
	require.Equal(0.8, Extract(CandidateRecord{Uploader: "eztv"}, cfg).UploaderReputation)
	require.Equal(0.5, Extract(CandidateRecord{Uploader: "someone"}, cfg).UploaderReputation)
	require.Equal(0.5, Extract(CandidateRecord{}, cfg).UploaderReputation)
}

func TestExtractQualityTokens(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	fv := Extract(CandidateRecord{Title: "Film 4K UHD HDR DTS Atmos WEBRip"}, MustDefault())
	require.Equal(3.0, fv.VideoQualityScore)
	require.Equal(2.0, fv.AudioQualityScore)
	require.Equal(1.0, fv.SourceQualityScore)
	require.Equal(1.0, fv.HasQuality)
	require.Equal(1.0, fv.HasSource)
	require.Equal(0.0, fv.HasYear)
}

func TestNewScoringConfigRejectsBadInput(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	opts := DefaultOptions()
	opts.FakePatterns = append(opts.FakePatterns, "(unclosed")
	_, err := NewScoringConfig(opts)
	require.Error(err)

	opts = DefaultOptions()
	opts.Thresholds = Thresholds{Excellent: 0.5, Good: 0.7, Acceptable: 0.1}
	_, err = NewScoringConfig(opts)
	require.Error(err)
}

func TestExtractTitleLengthCountsCharacters(t *testing.T) {
	t.Parallel()

	fv := Extract(CandidateRecord{Title: "Amélie.2001.1080p"}, MustDefault())
	require.Equal(t, 17.0, fv.TitleLength)
}
