package graph

import (
	"fmt"
	"strings"
)

// RenderASCII draws one line per node, newest first. "*" marks the node's
// column and "|" a lane that is still open toward an older parent.
func RenderASCII(l *Layout) string {
	if len(l.Nodes) == 0 {
		return ""
	}

	width := l.MaxColumn + 1
	var b strings.Builder
	for _, node := range l.Nodes {
		lanes := make([]byte, width)
		for i := range lanes {
			lanes[i] = ' '
		}
		for _, link := range l.Links {
			if link.ChildY < node.YIndex && node.YIndex < link.ParentY {
				lanes[link.ChildColumn] = '|'
			}
		}
		lanes[node.Column] = '*'

		e := node.Event
		line := fmt.Sprintf("%s  v%d %s %s", strings.Join(strings.Split(string(lanes), ""), " "), e.Version, shortID(e.ID), e.Type)
		if e.Summary != "" {
			line += "  " + e.Summary
		}
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
