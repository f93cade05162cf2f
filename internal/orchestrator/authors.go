package orchestrator

import (
	"context"

	apperrors "social-insights/internal/common/errors"
	"social-insights/internal/models"
)

// mergeMentions appends mentions whose IDs are not already in own and reports
// how many were added.
func mergeMentions(own, mentions []models.Interaction) ([]models.Interaction, int) {
	seen := make(map[string]struct{}, len(own)+len(mentions))
	out := make([]models.Interaction, 0, len(own)+len(mentions))
	for _, it := range own {
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	added := 0
	for _, m := range mentions {
		if _, dup := seen[m.ID]; dup && m.ID != "" {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
		added++
	}
	return out, added
}

// DeriveAuthors builds one profile per author in first-appearance order from
// the batch alone. Followers is the highest count seen on the author's posts.
func DeriveAuthors(batch []models.Interaction) []models.AuthorProfile {
	index := make(map[string]int)
	var out []models.AuthorProfile
	for _, it := range batch {
		if it.Author == "" {
			continue
		}
		i, ok := index[it.Author]
		if !ok {
			i = len(out)
			index[it.Author] = i
			out = append(out, models.AuthorProfile{Username: it.Author})
		}
		a := &out[i]
		a.Tweets = append(a.Tweets, it)
		a.TotalTweets++
		if it.AuthorFollowers > a.Followers {
			a.Followers = it.AuthorFollowers
		}
	}
	return out
}

// resolveAuthors prefers directory profiles and falls back to derived ones for
// handles the directory does not know. Tweets always come from the batch.
func (o *Orchestrator) resolveAuthors(ctx context.Context, batch []models.Interaction) ([]models.AuthorProfile, error) {
	derived := DeriveAuthors(batch)
	if o.deps.Authors == nil || len(derived) == 0 {
		return derived, nil
	}

	handles := make([]string, len(derived))
	for i, a := range derived {
		handles[i] = a.Username
	}
	profiles, err := o.deps.Authors.FetchAuthors(ctx, handles)
	if err != nil {
		return nil, apperrors.NewAuthorLookupFailedError(err)
	}

	known := make(map[string]models.AuthorProfile, len(profiles))
	for _, p := range profiles {
		known[p.Username] = p
	}
	out := make([]models.AuthorProfile, 0, len(derived))
	for _, d := range derived {
		p, ok := known[d.Username]
		if !ok {
			out = append(out, d)
			continue
		}
		p.Tweets = d.Tweets
		out = append(out, p)
	}
	return out, nil
}

func withFollowers(authors []models.AuthorProfile) []models.AuthorProfile {
	out := make([]models.AuthorProfile, 0, len(authors))
	for _, a := range authors {
		if a.Followers > 0 {
			out = append(out, a)
		}
	}
	return out
}
