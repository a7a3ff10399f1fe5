package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/pretty"
)

// jsonLayout keeps short keyword and path lists on one line.
var jsonLayout = &pretty.Options{Width: 100, Indent: "  ", SortKeys: true}

// writeJSON prints v for scripting. Keys are sorted so output diffs cleanly
// between runs; terminals get colour.
func writeJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	data = pretty.PrettyOptions(data, jsonLayout)
	if isTerminal(w) {
		data = pretty.Color(data, pretty.TerminalStyle)
	}
	_, err = w.Write(data)
	return err
}
