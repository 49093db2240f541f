package domain

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{6,32}$`)

// ParseVideoID extracts a YouTube video id from a pasted link or bare id.
// Accepted forms: youtu.be/<id>, youtube.com/shorts/<id>, youtube.com/watch?v=<id>, youtube.com/embed/<id>.
func ParseVideoID(input string) (string, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return "", ErrInvalidVideoLink
	}
	if videoIDRe.MatchString(raw) {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return "", ErrInvalidVideoLink
		}
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	parts := pathParts(u.Path)

	switch {
	case host == "youtu.be":
		if len(parts) > 0 && videoIDRe.MatchString(parts[0]) {
			return parts[0], nil
		}
	case strings.HasSuffix(host, "youtube.com"):
		if len(parts) >= 2 && (parts[0] == "shorts" || parts[0] == "embed") && videoIDRe.MatchString(parts[1]) {
			return parts[1], nil
		}
		if len(parts) >= 1 && parts[0] == "watch" {
			if v := u.Query().Get("v"); videoIDRe.MatchString(v) {
				return v, nil
			}
		}
	}
	return "", ErrInvalidVideoLink
}

func pathParts(p string) []string {
	out := make([]string, 0, 2)
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// StoredEmbedURL is the embed URL persisted with a post. Runtime params are added by PlayerURL.
func StoredEmbedURL(videoID string) string {
	return "https://www.youtube.com/embed/" + videoID + "?playsinline=1&controls=0&modestbranding=1&rel=0&enablejsapi=1"
}

// PlayerOptions are the runtime params appended to a stored embed URL.
type PlayerOptions struct {
	Autoplay bool
	Muted    bool
	Origin   string
}

// PlayerURL appends runtime params to a stored embed URL.
func PlayerURL(stored string, opts PlayerOptions) (string, error) {
	u, err := url.Parse(stored)
	if err != nil {
		return "", err
	}
	q := u.Query()
	if opts.Autoplay {
		q.Set("autoplay", "1")
	}
	if opts.Muted {
		q.Set("mute", "1")
	}
	if opts.Origin != "" {
		q.Set("origin", opts.Origin)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ThumbnailURL is the static preview image for a video id.
func ThumbnailURL(videoID string) string {
	return "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg"
}

var hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_]{1,64})`)

// ExtractHashtags returns the unique, lowercased hashtags in caption, in order of appearance.
func ExtractHashtags(caption string) []string {
	matches := hashtagRe.FindAllStringSubmatch(caption, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// NormalizeTag strips a leading '#' and lowercases.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}
