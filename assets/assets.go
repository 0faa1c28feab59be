// Package assets embeds the default static data: the verse corpus and the
// knowledge table.
package assets

import "embed"

//go:embed data/quran.json data/knowledge.yaml
var Data embed.FS

const (
	QuranFile     = "data/quran.json"
	KnowledgeFile = "data/knowledge.yaml"
)
