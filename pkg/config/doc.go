// Package config loads and validates casemod configuration.
//
//	                +-------------+
//	                |   Config    |
//	                | (Settings)  |
//	                +------+------+
//	                       |
//	      +----------------+----------------+
//	      |                |                |
//	+-----+-----+    +-----+-----+    +-----+-----+
//	|   YAML    |    |   JSON    |    |   HCL     |
//	|  Parser   |    |  Parser   |    |  Parser   |
//	+-----------+    +-----------+    +-----------+
//
// 🎯 Purpose:
// - Reads .casemod.yaml, .casemod.yml, .casemod.json or .casemod.hcl
// - Fills defaults (kebab policy, JS/TS extensions, common build directories excluded)
// - Validates every field before a run starts
// - Converts the result into engine.Options
//
// 🔄 Flow:
//  1. Discover finds a config file next to the tree
//  2. Load picks a Parser by extension and decodes strictly (unknown keys fail)
//  3. Relative root and plan_out paths are resolved against the file's directory
//  4. Defaults and Validate run; errors name the offending field or rule index
//
// 🔍 Example (HCL):
//
//	root   = "src"
//	policy = "kebab"
//
//	exclude = ["node_modules", "**/__generated__/**"]
//
//	rule {
//	  match       = "@old/ui/"
//	  replacement = "@new/ui/"
//	  kind        = "prefix"
//	  scope       = "app/**"
//	}
//
//	plan_out = "${config_dir}/.casemod-plan.json"
package config
