package eilog

import (
	"regexp"

	"github.com/pkg/errors"
)

var (
	ErrInvalidPermalink = errors.New("invalid dps.report permalink")

	permalinkRegex = regexp.MustCompile(`https://(?:[ab]\.)?dps\.report/[\w-]+`)
)

// ExtractPermalinks returns every dps.report link in text, deduplicated, in order of appearance.
func ExtractPermalinks(text string) []string {
	found := permalinkRegex.FindAllString(text, -1)

	seen := make(map[string]struct{}, len(found))
	res := make([]string, 0, len(found))
	for _, link := range found {
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		res = append(res, link)
	}
	return res
}

func ValidatePermalink(link string) error {
	if loc := permalinkRegex.FindStringIndex(link); loc == nil || loc[0] != 0 || loc[1] != len(link) {
		return errors.Wrap(ErrInvalidPermalink, link)
	}
	return nil
}
