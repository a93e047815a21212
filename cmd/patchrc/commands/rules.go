package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/config"
)

// NewRulesCmd creates a new rules command
func NewRulesCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules [ruleset]",
		Short: "List rule sets, or the rules of one rule set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data pterm.TableData
				err  error
			)
			if len(args) == 1 {
				data, err = ruleTable(opts.Config, args[0])
			} else {
				data = ruleSetTable(opts.Config)
			}
			if err != nil {
				return err
			}

			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	return cmd
}

func ruleSetTable(cfg *config.Config) pterm.TableData {
	data := pterm.TableData{{"ruleset", "source", "rules", "description"}}
	for _, rs := range cfg.RuleSets {
		source := "config"
		if rs.Builtin() {
			source = "builtin"
		}
		data = append(data, []string{rs.Name, source, fmt.Sprint(len(rs.Rules)), rs.Description})
	}
	return data
}

func ruleTable(cfg *config.Config, name string) (pterm.TableData, error) {
	rs, err := cfg.RuleSet(name)
	if err != nil {
		return nil, err
	}

	data := pterm.TableData{{"#", "rule", "kind", "flags"}}
	for i, r := range rs.Rules {
		kind := r.Kind
		if kind == "" {
			kind = "literal"
		}
		data = append(data, []string{fmt.Sprint(i + 1), r.Name, kind, ruleFlags(r)})
	}
	return data, nil
}

func ruleFlags(r config.RuleDef) string {
	var flags []string
	if r.Required {
		flags = append(flags, "required")
	}
	if r.Unique {
		flags = append(flags, "unique")
	}
	if r.Tolerant {
		flags = append(flags, "tolerant")
	}
	if r.Expand {
		flags = append(flags, "expand")
	}
	if r.Flavor != "" {
		flags = append(flags, r.Flavor)
	}
	return strings.Join(flags, ", ")
}
