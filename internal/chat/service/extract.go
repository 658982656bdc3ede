package service

import (
	"regexp"
	"strings"
)

const fence = "```"

var sqlFence = regexp.MustCompile("(?s)```(?i:sql)[ \\t]*\\r?\\n(.*?)```")

// ExtractSQL pulls the statement out of a model reply. A fenced sql block
// wins; otherwise every fence marker is stripped and the rest is used as is.
func ExtractSQL(reply string) string {
	if match := sqlFence.FindStringSubmatch(reply); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(strings.ReplaceAll(reply, fence, ""))
}
