// Package followers loads a read-only followers list through an injected
// fetch function and exposes it as observable view state.
package followers

import (
	"context"
	"strings"
)

// FetchFunc supplies the remote people data. Any function with this shape
// can back a View, which is how tests substitute canned responses.
type FetchFunc func(ctx context.Context) (Response, error)

// Response mirrors the people API payload consumed by the followers list.
type Response struct {
	Results []Result `json:"results" yaml:"results"`
}

type Result struct {
	Name    Name    `json:"name" yaml:"name"`
	Picture Picture `json:"picture" yaml:"picture"`
	Login   Login   `json:"login" yaml:"login"`
}

type Name struct {
	First string `json:"first" yaml:"first"`
	Last  string `json:"last" yaml:"last"`
}

type Picture struct {
	Large string `json:"large" yaml:"large"`
}

type Login struct {
	Username string `json:"username" yaml:"username"`
}

type FollowerSummary struct {
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	Username    string `json:"username"`
}

// Summarize projects a response into summaries, one per result, in response
// order.
func Summarize(resp Response) []FollowerSummary {
	out := make([]FollowerSummary, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, FollowerSummary{
			DisplayName: strings.TrimSpace(r.Name.First + " " + r.Name.Last),
			AvatarURL:   r.Picture.Large,
			Username:    r.Login.Username,
		})
	}
	return out
}
