// Package docs holds the user documentation of arr, embedded in the binary
// and printed by `arr topic`.
package docs

import (
	"bytes"
	"embed"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

//go:embed *.md
var docs embed.FS

// GetTopic returns the content of a documentation topic. The topic "*"
// returns all of them.
func GetTopic(topic string) (string, error) {
	if topic == "*" {
		topics, err := GetAllTopics()
		if err != nil {
			return "", err
		}
		return GetTopics(topics...)
	}

	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", eris.Wrapf(err, "topic %q not found", topic)
	}
	return string(content), nil
}

// GetTopics returns the content of multiple documentation topics concatenated together.
func GetTopics(topics ...string) (string, error) {
	var b bytes.Buffer
	for _, topic := range topics {
		content, err := GetTopic(topic)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// GetAllTopics returns a list of all available documentation topics.
func GetAllTopics() ([]string, error) {
	var topics []string
	err := fs.WalkDir(docs, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if base == "readme" {
			return nil
		}
		topics = append(topics, base)
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "listing topics")
	}
	sort.Strings(topics)
	return topics, nil
}
