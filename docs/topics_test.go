package docs

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/etnz/arr"
	"github.com/etnz/arr/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	jsonlLedger = "jsonl ledger"
	yamlConfig  = "yaml config"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md can be loaded, and every .md file is
	// listed in readme.md.
	file, err := os.Open("readme.md")
	require.NoError(t, err)
	defer file.Close()

	var topicsInReadme []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			topicsInReadme = append(topicsInReadme, strings.TrimSpace(matches[1]))
		}
	}
	require.NoError(t, scanner.Err())

	for _, topic := range topicsInReadme {
		t.Run("load_"+topic, func(t *testing.T) {
			_, err := GetTopic(topic)
			assert.NoError(t, err)
		})
	}

	all, err := GetAllTopics()
	require.NoError(t, err)
	assert.ElementsMatch(t, all, topicsInReadme, "readme.md must list every topic")
}

func TestGetTopic_Unknown(t *testing.T) {
	_, err := GetTopic("nope")
	assert.Error(t, err)
}

func TestGetTopic_All(t *testing.T) {
	content, err := GetTopic("*")
	require.NoError(t, err)
	assert.Contains(t, content, "# Ledger")
	assert.Contains(t, content, "# HTTP API")
	assert.NotContains(t, content, "Available topics", "readme is not a topic")
}

// codeBlock is a fenced code block with its info string.
type codeBlock struct {
	info    string
	content string
}

// parse returns the level 1 headings and the fenced code blocks of a markdown document.
func parse(source []byte) (titles []string, blocks []codeBlock) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			if n.Level == 1 {
				titles = append(titles, string(n.Lines().Value(source)))
			}
		case *ast.FencedCodeBlock:
			var b strings.Builder
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				b.Write(line.Value(source))
			}
			var info string
			if n.Info != nil {
				info = string(n.Info.Segment.Value(source))
			}
			blocks = append(blocks, codeBlock{info: info, content: b.String()})
		}
		return ast.WalkContinue, nil
	})
	return titles, blocks
}

func TestTopicsHaveTitle(t *testing.T) {
	files, err := filepath.Glob("*.md")
	require.NoError(t, err)
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			source, err := os.ReadFile(file)
			require.NoError(t, err)
			titles, _ := parse(source)
			assert.Len(t, titles, 1, "exactly one level 1 title")
		})
	}
}

// TestCodeBlocks checks that documented ledgers and configurations are
// accepted by the code.
func TestCodeBlocks(t *testing.T) {
	files, err := filepath.Glob("*.md")
	require.NoError(t, err)
	seen := map[string]int{}
	for _, file := range files {
		source, err := os.ReadFile(file)
		require.NoError(t, err)
		_, blocks := parse(source)
		for _, block := range blocks {
			seen[block.info]++
			switch block.info {
			case jsonlLedger:
				t.Run(file+"/ledger", func(t *testing.T) {
					ledger, err := arr.DecodeLedger(strings.NewReader(block.content))
					require.NoError(t, err)
					res, err := arr.Compute(context.Background(), ledger, arr.DefaultOptions())
					require.NoError(t, err)
					assert.True(t, res.Authoritative, "documented ledger reconciles: %v", res.Findings)
				})
			case yamlConfig:
				t.Run(file+"/config", func(t *testing.T) {
					path := filepath.Join(t.TempDir(), "arr.yaml")
					require.NoError(t, os.WriteFile(path, []byte(block.content), 0o644))
					cfg, err := config.Load(path)
					require.NoError(t, err)
					_, err = cfg.EngineOptions(nil)
					assert.NoError(t, err)
				})
			}
		}
	}
	assert.NotZero(t, seen[jsonlLedger], "no documented ledger")
	assert.NotZero(t, seen[yamlConfig], "no documented configuration")
}
