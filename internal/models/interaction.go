// internal/models/interaction.go
package models

import "time"

// Interaction is one post or mention. It is immutable once fetched.
type Interaction struct {
	ID              string    `json:"id"`
	Author          string    `json:"author"`
	Text            string    `json:"text"`
	CreatedAt       time.Time `json:"createdAt"`
	LikeCount       int       `json:"likeCount"`
	RetweetCount    int       `json:"retweetCount"`
	ReplyCount      int       `json:"replyCount"`
	QuoteCount      int       `json:"quoteCount"`
	HasMedia        bool      `json:"hasMedia"`
	Hashtags        []string  `json:"hashtags,omitempty"`
	MentionedUsers  []string  `json:"mentionedUsers,omitempty"`
	InReplyToUser   *string   `json:"inReplyToUser,omitempty"`
	RetweetedAuthor *string   `json:"retweetedAuthor,omitempty"`
	IsQuote         bool      `json:"isQuote"`
	URLs            []string  `json:"urls,omitempty"`
	AuthorFollowers int       `json:"authorFollowers"`
	Impressions     *int      `json:"impressions,omitempty"`
}

// TotalEngagement is the unweighted sum of the four engagement counters.
func (i Interaction) TotalEngagement() int {
	return i.LikeCount + i.RetweetCount + i.ReplyCount + i.QuoteCount
}

func (i Interaction) IsReply() bool {
	return i.InReplyToUser != nil && *i.InReplyToUser != ""
}

func (i Interaction) HasLinks() bool {
	return len(i.URLs) > 0
}

// AuthorProfile is the account-level view used for KOL scoring.
type AuthorProfile struct {
	Username         string        `json:"username"`
	DisplayName      string        `json:"displayName,omitempty"`
	Bio              string        `json:"bio,omitempty"`
	Location         string        `json:"location,omitempty"`
	Website          string        `json:"website,omitempty"`
	Followers        int           `json:"followers"`
	Following        int           `json:"following"`
	TotalTweets      int           `json:"totalTweets"`
	Verified         bool          `json:"verified"`
	AccountCreatedAt time.Time     `json:"accountCreatedAt"`
	Tweets           []Interaction `json:"-"`
}

// UniqueStrings returns values with duplicates and empty strings removed, keeping first-seen order.
func UniqueStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// StringPtr is a helper for optional string fields.
func StringPtr(s string) *string {
	return &s
}
