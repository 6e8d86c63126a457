package chat

import "regexp"

var wordPattern = regexp.MustCompile(`\w+`)

// hasRepeatedWords flags content where any single word token shows up
// spamRepeatThreshold or more times, contiguous or not. Matching is
// case-sensitive, so "Spam" and "spam" count separately.
func hasRepeatedWords(content string) bool {
	counts := map[string]int{}
	for _, w := range wordPattern.FindAllString(content, -1) {
		counts[w]++
		if counts[w] >= spamRepeatThreshold {
			return true
		}
	}
	return false
}
