// Package leadinfo pulls contact signals out of chat transcripts.
package leadinfo

import (
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
)

var (
	emailRe   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	nameRe    = regexp.MustCompile(`(?i)nombre:`)
	taxIDRe   = regexp.MustCompile(`(?i)(nit|ci):`)
	projectRe = regexp.MustCompile(`(?i)proyecto:`)
	nonDigit  = regexp.MustCompile(`[^0-9]`)
)

// chatArtifact marks addresses generated by the chat platform itself.
const chatArtifact = "w.app"

// Extract scans every message in order. For each field the last message that
// yields a non-empty value wins. A marker followed by nothing, such as
// "nombre: ,", leaves an earlier captured value in place instead of clearing it.
func Extract(msgs []conversation.Message) conversation.LeadInfo {
	var info conversation.LeadInfo
	for _, m := range msgs {
		info = reduce(info, m.Content)
	}
	return info
}

func reduce(info conversation.LeadInfo, content string) conversation.LeadInfo {
	if email := findEmail(content); email != "" {
		info.Email = email
	}
	if name := afterFirst(nameRe, content); name != "" {
		info.CapturedName = name
	}
	if nit := nonDigit.ReplaceAllString(afterLast(taxIDRe, content), ""); nit != "" {
		info.NIT = nit
	}
	if project := afterFirst(projectRe, content); project != "" {
		info.ProjectType = project
	}
	return info
}

func findEmail(content string) string {
	for _, match := range emailRe.FindAllString(content, -1) {
		if !strings.Contains(match, chatArtifact) {
			return match
		}
	}
	return ""
}

// afterFirst returns the field value following the first marker match.
func afterFirst(marker *regexp.Regexp, content string) string {
	loc := marker.FindStringIndex(content)
	if loc == nil {
		return ""
	}
	return fieldValue(content[loc[1]:])
}

// afterLast returns the field value following the last marker match.
func afterLast(marker *regexp.Regexp, content string) string {
	locs := marker.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return ""
	}
	return fieldValue(content[locs[len(locs)-1][1]:])
}

// fieldValue cuts s at the first comma or newline.
func fieldValue(s string) string {
	if i := strings.IndexAny(s, ",\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
