package pagination

import "strings"

// NextLink extracts the URL with rel="next" from an RFC 8288 Link header.
// Returns empty string if no next link is present.
//
// Format: <https://api.github.com/...?page=2>; rel="next", <...>; rel="last"
//
// Commas may appear inside the bracketed URL, so link values are split on
// commas outside brackets only.
func NextLink(header string) string {
	for _, link := range splitLinks(header) {
		target, params, _ := strings.Cut(link, ">")
		target = strings.TrimPrefix(target, "<")

		for _, param := range strings.Split(params, ";") {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
				continue
			}
			// rel may hold several space separated relation types
			for _, rel := range strings.Fields(strings.Trim(strings.TrimSpace(value), `"`)) {
				if strings.EqualFold(rel, "next") {
					return target
				}
			}
		}
	}

	return ""
}

// splitLinks returns each link value of header, starting at its "<". Text
// that does not start with a bracketed target is skipped.
func splitLinks(header string) []string {
	var links []string
	rest := header
	for {
		rest = strings.TrimLeft(rest, " \t,")
		if rest == "" {
			return links
		}
		if rest[0] != '<' {
			// malformed value: drop it up to the next comma outside brackets
			next := strings.IndexAny(rest, ",<")
			if next < 0 {
				return links
			}
			if rest[next] == ',' {
				next++
			}
			rest = rest[next:]
			continue
		}

		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return links
		}
		// params run to the next comma after the closing bracket
		params := rest[end+1:]
		stop := strings.IndexByte(params, ',')
		if stop < 0 {
			links = append(links, rest)
			return links
		}
		links = append(links, rest[:end+1+stop])
		rest = params[stop+1:]
	}
}
