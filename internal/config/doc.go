// Package config loads gridedit's settings and datasets.
//
// # Settings
//
// Settings are merged from three layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← GRIDEDIT_LOG_LEVEL, ...
//	├─────────────────────────────┤
//	│  2. Settings File           │  ← --config settings.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// The settings file is TOML or YAML, chosen by extension:
//
//	[keymap]
//	commit = ["Enter", "Ctrl+S"]
//	columns = "C"
//
//	[theme]
//	"badge.active" = "fg=#00aa00 bold"
//
//	[menu]
//	closeDelay = "200ms"
//
//	[grid]
//	maxColumnWidth = 32
//
//	[log]
//	level = "debug"
//	file = "/tmp/gridedit.log"
//
// # Datasets
//
// A dataset file lists the columns and the records of a grid:
//
//	columns:
//	  - {key: id, header: ID, minWidth: 80}
//	  - {key: role, header: Role, editable: true, enum: [Admin, Editor, Viewer]}
//	  - {key: status, header: Status, badge: badge}
//	records:
//	  - {id: 1, role: Admin, status: Active}
//
// Columns reference formatters and stylers by name (see
// column.DefaultFormatters) and may carry validator specs and a Lua
// validation script. DefaultDataset returns the embedded sample.
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment variable loading into maps
//   - watcher: fsnotify based change notification for live reload
package config
