package engagement

import (
	"fmt"

	"social-insights/internal/models"
)

// Content categories. The first three partition a batch; the rest are independent tags.
const (
	CategoryText     = "text_only"
	CategoryMedia    = "with_media"
	CategoryLinks    = "with_links"
	CategoryHashtags = "with_hashtags"
	CategoryReplies  = "replies"
	CategoryQuotes   = "quotes"
)

var primaryCategories = []string{CategoryText, CategoryMedia, CategoryLinks}

// ContentAnalysis holds per-category engagement and recommendations.
type ContentAnalysis struct {
	Categories      map[string]models.BucketStats `json:"categories"`
	BestPerforming  string                        `json:"bestPerforming,omitempty"`
	Recommendations []string                      `json:"recommendations"`
}

func primaryCategory(it models.Interaction) string {
	switch {
	case it.HasMedia:
		return CategoryMedia
	case it.HasLinks():
		return CategoryLinks
	default:
		return CategoryText
	}
}

// AnalyzeContentTypes compares engagement across content categories.
func AnalyzeContentTypes(batch []models.Interaction) ContentAnalysis {
	result := ContentAnalysis{
		Categories:      map[string]models.BucketStats{},
		Recommendations: []string{},
	}
	if len(batch) == 0 {
		return result
	}

	buckets := map[string][]float64{}
	all := make([]float64, 0, len(batch))
	for _, it := range batch {
		v := float64(it.TotalEngagement())
		all = append(all, v)

		buckets[primaryCategory(it)] = append(buckets[primaryCategory(it)], v)
		if len(models.UniqueStrings(it.Hashtags)) > 0 {
			buckets[CategoryHashtags] = append(buckets[CategoryHashtags], v)
		}
		if it.IsReply() {
			buckets[CategoryReplies] = append(buckets[CategoryReplies], v)
		}
		if it.IsQuote {
			buckets[CategoryQuotes] = append(buckets[CategoryQuotes], v)
		}
	}
	for name, values := range buckets {
		result.Categories[name] = bucketStats(values)
	}

	bestMean := -1.0
	for _, name := range primaryCategories {
		s, ok := result.Categories[name]
		if !ok {
			continue
		}
		if s.Mean > bestMean {
			result.BestPerforming, bestMean = name, s.Mean
		}
	}

	media, hasMedia := result.Categories[CategoryMedia]
	text, hasText := result.Categories[CategoryText]
	if hasMedia && hasText {
		switch {
		case media.Mean > 0 && media.Mean >= text.Mean*1.5:
			result.Recommendations = append(result.Recommendations,
				fmt.Sprintf("Posts with media outperform text-only posts (%.1f vs %.1f avg engagement); include images or video", media.Mean, text.Mean))
		case text.Mean > 0 && text.Mean >= media.Mean*1.5:
			result.Recommendations = append(result.Recommendations,
				fmt.Sprintf("Text-only posts outperform posts with media (%.1f vs %.1f avg engagement)", text.Mean, media.Mean))
		}
	}

	overall := bucketStats(all)
	if tags, ok := result.Categories[CategoryHashtags]; ok && overall.Mean > 0 && tags.Mean >= overall.Mean*1.2 {
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("Posts with hashtags beat the overall average by %.0f%%; keep using relevant hashtags",
				(tags.Mean/overall.Mean-1)*100))
	}

	return result
}
