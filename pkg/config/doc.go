/*
Package config loads patchrc rule sets and targets.

	                 +-------------+
	                 |   Config    |
	                 | rulesets    |
	                 | targets     |
	                 +------+------+
	                        |
	    +---------+---------+---------+---------+
	    |         |                   |         |
	+---+---+ +---+---+           +---+---+ +---+---+
	|  HCL  | | YAML  |           | JSON  | | TOML  |
	+-------+ +-------+           +-------+ +-------+

🎯 Purpose:
- Decodes .patchrc.{hcl,yaml,yml,json,toml} through a parser registry
- Merges the built-in rule sets under the user's own
- Compiles declarative rule definitions into rule.Rule values
- Hashes the config so a lock file can tell when it changed

🔄 Flow:
1. Discover finds the config file in a directory
2. The parser registered for the extension decodes it
3. Built-in rule sets are merged in, user definitions win
4. Validate compiles every rule and checks target references

📝 Rule kinds:
- literal: exact text, optionally whitespace tolerant
- regex: RE2 by default, "backtrack" flavor for lookaround
- structural: a marker line through the matching closing delimiter
- line: the first line containing some text
- tail: from a marker to the end of the file

🔍 Example:

	ruleset "webview" {
	  rule "controller" {
	    find     = "late TextEditingController _controller;"
	    replace  = "late WebViewController _controller;"
	    required = true
	  }
	}

	target {
	  path     = "lib/ui/editors/*.dart"
	  rulesets = ["webview"]
	}

HCL interpolates "${...}", so template references in replacement text are
written "$${name}".
*/
package config
