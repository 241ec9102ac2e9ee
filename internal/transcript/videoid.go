package transcript

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{6,20}$`)

// ParseVideoID extracts the video ID from the YouTube URL shapes we accept:
// watch?v=, youtu.be/<id>, /shorts/<id>, /embed/<id> and /live/<id>.
// The second return is false for anything else.
func ParseVideoID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "youtube-nocookie.com":
		if u.Path == "/watch" {
			return validVideoID(u.Query().Get("v"))
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				return validVideoID(strings.TrimPrefix(u.Path, prefix))
			}
		}
	case "youtu.be":
		return validVideoID(strings.TrimPrefix(u.Path, "/"))
	}
	return "", false
}

func validVideoID(id string) (string, bool) {
	id = strings.TrimSuffix(id, "/")
	if videoIDRe.MatchString(id) {
		return id, true
	}
	return "", false
}
