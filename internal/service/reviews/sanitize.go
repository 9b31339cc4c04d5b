package reviews

import "regexp"

var (
	htmlTag      = regexp.MustCompile(`<[^>]*>`)
	jsProtocol   = regexp.MustCompile(`(?i)javascript:`)
	eventHandler = regexp.MustCompile(`(?i)on\w+=`)
)

func sanitize(s string) string {
	s = htmlTag.ReplaceAllString(s, "")
	s = jsProtocol.ReplaceAllString(s, "")
	return eventHandler.ReplaceAllString(s, "")
}

func (p Payload) sanitized() Payload {
	p.Restaurant = sanitize(p.Restaurant)
	p.Review = sanitize(p.Review)
	p.UserId = sanitize(p.UserId)
	p.UserName = sanitize(p.UserName)
	return p
}
