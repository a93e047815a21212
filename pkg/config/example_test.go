package config_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/walteh/patchrc/pkg/buffer"
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/engine"
)

func ExampleLoad() {
	dir, err := os.MkdirTemp("", "patchrc-example")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, ".patchrc.yaml")
	content := `
rulesets:
  - name: rename
    rules:
      - name: b-to-x
        find: B
        replace: X
        required: true
targets:
  - path: "*.txt"
    rulesets: [rename]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	cfg, err := config.Load(context.Background(), path, nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	rules, err := cfg.Rules(cfg.Targets[0].RuleSets...)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	buf := buffer.New("A-B-C")
	result, err := engine.New(engine.Options{}).Apply(context.Background(), buf, rules)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Rules: %d\n", len(rules))
	fmt.Printf("Modified: %s\n", result.ModifiedContent)
	fmt.Printf("Fired: %v\n", result.Fired())

	// Output:
	// Rules: 1
	// Modified: A-X-C
	// Fired: [rename/b-to-x]
}

func ExampleConfig_Hash() {
	cfg := config.Default([]config.RuleSet{{
		Name:  "rename",
		Rules: []config.RuleDef{{Name: "r", Find: "a", Replace: "b"}},
	}})

	hash1 := cfg.Hash()
	cfg.RuleSets[0].Rules[0].Replace = "c"
	hash2 := cfg.Hash()

	fmt.Printf("Hash length: %d\n", len(hash1))
	fmt.Printf("Hashes are different: %v\n", hash1 != hash2)

	// Output:
	// Hash length: 64
	// Hashes are different: true
}
