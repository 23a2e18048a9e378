// Package plugins registers all built-in plugins via side effects.
package plugins

import (
	_ "github.com/John-sanpe/suricata/plugins/parser/dcerpc"
)
