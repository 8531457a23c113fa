// Package plan loads declarative routines from YAML.
//
// A plan names the default behavior and the commands, each built from the
// behavior registry. Command conditions are expressions over the scheduler
// state:
//
//	name: left-side
//	budget: 15s
//	period: 20ms
//	default:
//	  behavior: counter
//	commands:
//	  - name: score
//	    behavior: log
//	    params: {message: scoring}
//	    when: ["elapsed >= 2", "elapsed < 3"]
//	    mode: edge_true
//	    tags: [pause_default]
//
// Expressions see elapsed and default_elapsed (seconds), tick, paused,
// pause_depth and the function active(name).
package plan
