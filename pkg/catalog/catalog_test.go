package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/buffer"
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/engine"
)

const (
	bodyPlaceholder = "  // editor body"
	bodyLinePrefix  = "  // editor body line "
)

// editorFixture loads the block editor fixture and grows the editor class
// so the block widget state starts past line 600, like the real file
func editorFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "generic_block_editor.dart"))
	require.NoError(t, err)

	body := make([]string, 600)
	for i := range body {
		body[i] = fmt.Sprintf("%s%d", bodyLinePrefix, i)
	}
	return strings.Replace(string(data), bodyPlaceholder+"\n", strings.Join(body, "\n")+"\n", 1)
}

func collapseBody(text string) string {
	var out []string
	collapsed := false
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, bodyLinePrefix) {
			if !collapsed {
				out = append(out, bodyPlaceholder)
				collapsed = true
			}
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"careful-migration",
		"complete-migration",
		"final-migration",
		"fix-did-update-regex",
		"fix-did-update",
		"fix-generic-block-webview",
		"migrate-to-webview",
	}, Names())
}

func TestRuleSets_AreBuiltinAndValid(t *testing.T) {
	sets, err := RuleSets()
	require.NoError(t, err)

	cfg := config.Default(sets)
	require.NoError(t, cfg.Validate())

	for _, rs := range sets {
		assert.True(t, rs.Builtin(), "%s should be marked builtin", rs.Name)
		assert.NotEmpty(t, rs.Description, "%s should be described", rs.Name)
	}
}

func TestRuleSets_MigrateEditor(t *testing.T) {
	fixture := editorFixture(t)
	cfg := config.Default(MustRuleSets())
	eng := engine.New(engine.Options{StrictAmbiguity: true})

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			rules, err := cfg.Rules(name)
			require.NoError(t, err)

			buf := buffer.New(fixture)
			first, err := eng.Apply(context.Background(), buf, rules)
			require.NoError(t, err)
			assert.Equal(t, len(rules), first.Count(engine.StatusApplied), "every rule should fire on the original file")

			golden, err := os.ReadFile(filepath.Join("testdata", name+".golden.dart"))
			require.NoError(t, err)
			assert.Equal(t, string(golden), collapseBody(buf.Text()))

			second, err := eng.Apply(context.Background(), buf, rules)
			require.NoError(t, err)
			assert.False(t, second.WasModified, "a second run should not change the file")
			assert.Zero(t, second.Count(engine.StatusApplied))
		})
	}
}
